package ui

import (
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InkBoard/internal/aid"
	"InkBoard/internal/render"
	"InkBoard/internal/session"
	"InkBoard/internal/tool"
)

func newBoard(t *testing.T) (*BoardWidget, *aid.ManualScheduler) {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)
	sched := aid.NewManualScheduler(0)
	opts := session.DefaultOptions()
	opts.Aid.Enabled = false
	scene := render.NewScene()
	b := NewBoardWidget(session.New(opts, sched, nil, scene), scene)
	b.Resize(fyne.NewSize(400, 300))
	return b, sched
}

func press(x, y float32) *desktop.MouseEvent {
	return &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     desktop.MouseButtonPrimary,
	}
}

func TestBoardWidgetDrawsStroke(t *testing.T) {
	b, sched := newBoard(t)
	var outcomes []session.Outcome
	b.OnOutcome = func(o session.Outcome) { outcomes = append(outcomes, o) }
	r := test.WidgetRenderer(b)
	background := len(r.Objects())

	b.MouseDown(press(10, 10))
	for i := 1; i <= 10; i++ {
		sched.Advance(16 * time.Millisecond)
		b.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(10+float32(i)*8, 10)}})
	}
	b.MouseUp(press(90, 10))

	assert.Equal(t, 1, b.Session().Board().Count())
	require.Len(t, outcomes, 1)
	require.NotNil(t, outcomes[0].Stroke)
	assert.Greater(t, len(r.Objects()), background)
}

func TestBoardWidgetIgnoresStrayRelease(t *testing.T) {
	b, _ := newBoard(t)
	called := false
	b.OnOutcome = func(session.Outcome) { called = true }

	b.MouseMoved(press(40, 40))
	b.MouseUp(press(40, 40))

	assert.False(t, called)
	assert.Zero(t, b.Session().Board().Count())
}

func TestBoardWidgetScrollZooms(t *testing.T) {
	b, _ := newBoard(t)
	before := b.Session().Camera().Scale()
	b.Scrolled(&fyne.ScrollEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(200, 150)},
		Scrolled:   fyne.NewDelta(0, 1),
	})
	assert.Greater(t, b.Session().Camera().Scale(), before)
}

func TestBoardWidgetResizeSetsViewport(t *testing.T) {
	b, _ := newBoard(t)
	b.Resize(fyne.NewSize(640, 480))
	vp := b.Session().Camera().State().Viewport
	assert.Equal(t, 640.0, vp.Width)
	assert.Equal(t, 480.0, vp.Height)
}

func TestToolbarSwatchSetsColor(t *testing.T) {
	b, _ := newBoard(t)
	win := test.NewWindow(b)
	defer win.Close()
	status := widget.NewLabel("")
	bar := NewToolbar(b, tool.DefaultRegistry().IDs(), win, status)
	require.NotNil(t, bar)

	sw := newColorSwatch("#e03131", b.Session().SetColor)
	test.Tap(sw)
	assert.Equal(t, "#e03131", b.Session().Color())
}

func TestBoardWidgetChordKeepsGesture(t *testing.T) {
	b, sched := newBoard(t)
	var outcomes []session.Outcome
	b.OnOutcome = func(o session.Outcome) { outcomes = append(outcomes, o) }

	b.MouseDown(press(10, 10))
	for i := 1; i <= 5; i++ {
		sched.Advance(16 * time.Millisecond)
		b.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(10+float32(i)*8, 10)}})
	}
	middle := press(50, 10)
	middle.Button = desktop.MouseButtonTertiary
	b.MouseDown(middle)
	b.MouseUp(middle)
	assert.Empty(t, outcomes)

	sched.Advance(16 * time.Millisecond)
	b.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(60, 10)}})
	b.MouseUp(press(60, 10))

	require.Len(t, outcomes, 1)
	require.NotNil(t, outcomes[0].Stroke)
	assert.Equal(t, 10.0, outcomes[0].Stroke.Points[0].X)
	assert.Equal(t, 1, b.Session().Board().Count())
}
