package ui

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"InkBoard/internal/camera"
	"InkBoard/internal/geom"
	"InkBoard/internal/input"
	"InkBoard/internal/render"
	"InkBoard/internal/session"
)

// BoardWidget is the drawing surface. It forwards pointer input to the
// session and shows the session's retained scene.
type BoardWidget struct {
	widget.BaseWidget

	sess  *session.Session
	scene *render.Scene

	mu      sync.Mutex
	pressed bool
	button  desktop.MouseButton

	// OnSelect receives the ids picked by the selection tool.
	OnSelect func(ids []string)
	// OnOutcome is called after every completed gesture.
	OnOutcome func(session.Outcome)
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ fyne.Scrollable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)

// NewBoardWidget binds a session whose renderer is scene.
func NewBoardWidget(sess *session.Session, scene *render.Scene) *BoardWidget {
	b := &BoardWidget{sess: sess, scene: scene}
	b.ExtendBaseWidget(b)
	scene.OnChange = b.Refresh
	return b
}

// Session returns the bound session.
func (b *BoardWidget) Session() *session.Session { return b.sess }

// MouseDown starts a gesture. Further buttons pressed while one is held
// do not start another.
func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	b.mu.Lock()
	if b.pressed {
		b.mu.Unlock()
		return
	}
	b.pressed, b.button = true, e.Button
	b.mu.Unlock()
	b.sess.OnPointerDown(input.FromMouseEvent(e, b.sess.Now()))
}

// MouseUp ends the gesture when the button that started it is released.
func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	b.mu.Lock()
	if !b.pressed || e.Button != b.button {
		b.mu.Unlock()
		return
	}
	b.pressed = false
	b.mu.Unlock()
	out := b.sess.OnPointerUp(input.FromMouseEvent(e, b.sess.Now()))
	if len(out.Selected) > 0 && b.OnSelect != nil {
		b.OnSelect(out.Selected)
	}
	if b.OnOutcome != nil {
		b.OnOutcome(out)
	}
}

// Dragged carries primary-button motion.
func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	b.sess.OnPointerMove(input.FromDragEvent(e, b.sess.Now()))
}

func (b *BoardWidget) DragEnd() {}

// MouseMoved carries motion for the buttons fyne does not report as drags.
func (b *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	b.mu.Lock()
	pressed := b.pressed
	b.mu.Unlock()
	if pressed && e.Button&desktop.MouseButtonPrimary == 0 {
		b.sess.OnPointerMove(input.FromMouseEvent(e, b.sess.Now()))
	}
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent) {}
func (b *BoardWidget) MouseOut()                   {}

// Scrolled zooms around the cursor.
func (b *BoardWidget) Scrolled(e *fyne.ScrollEvent) {
	b.sess.OnWheel(geom.Pt(float64(e.Position.X), float64(e.Position.Y)), float64(e.Scrolled.DY))
}

func (b *BoardWidget) Resize(size fyne.Size) {
	b.BaseWidget.Resize(size)
	b.sess.SetViewport(camera.Size{Width: float64(size.Width), Height: float64(size.Height)})
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return &boardWidgetRenderer{board: b, background: canvas.NewRectangle(color.White)}
}

type boardWidgetRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	scene := r.board.scene.Objects()
	objects := make([]fyne.CanvasObject, 0, len(scene)+1)
	objects = append(objects, r.background)
	return append(objects, scene...)
}

func (r *boardWidgetRenderer) Refresh() {
	canvas.Refresh(r.board)
}

func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
}

func (r *boardWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *boardWidgetRenderer) Destroy() {}
