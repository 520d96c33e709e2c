package render

import (
	"image/color"
	"math"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"InkBoard/internal/ink"
	"InkBoard/internal/shape"
	"InkBoard/internal/state"
)

// node is the retained canvas objects of one stroke. Objects are created
// once and only repositioned when the transform changes.
type node struct {
	stroke *state.Stroke
	points []ink.Point
	style  ink.Style
	fill   fyne.CanvasObject
	lines  []*canvas.Line
	dot    *canvas.Circle
}

func newNode(points []ink.Point, style ink.Style, meta *state.ShapeMetadata) *node {
	n := &node{points: points, style: style}
	c := strokeColor(style.Color, style.Opacity)
	if meta != nil && meta.HasFill {
		n.fill = fillObject(meta, withOpacity(c, meta.FillOpacity))
	}
	if len(points) == 1 {
		n.dot = canvas.NewCircle(c)
		return n
	}
	for i := 1; i < len(points); i++ {
		n.lines = append(n.lines, canvas.NewLine(c))
	}
	return n
}

// fillObject returns a canvas primitive covering the shape interior, or nil
// for shapes the canvas has no primitive for.
func fillObject(meta *state.ShapeMetadata, c color.Color) fyne.CanvasObject {
	switch s := meta.Descriptor.Shape.(type) {
	case shape.Circle:
		return canvas.NewCircle(c)
	case shape.Ellipse:
		if math.Abs(math.Sin(2*s.Rotation)) < 1e-3 {
			return canvas.NewCircle(c)
		}
	case shape.Rectangle, shape.Square:
		return canvas.NewRectangle(c)
	}
	return nil
}

func (n *node) layout(t Transform, meta *state.ShapeMetadata) {
	pts := project(n.points, t)
	if n.fill != nil {
		b := meta.Descriptor.Shape.Bounds()
		tl := t.Apply(b.Min())
		br := t.Apply(b.Max())
		switch f := n.fill.(type) {
		case *canvas.Circle:
			f.Position1 = fyne.NewPos(float32(tl.X), float32(tl.Y))
			f.Position2 = fyne.NewPos(float32(br.X), float32(br.Y))
		default:
			f.Move(fyne.NewPos(float32(tl.X), float32(tl.Y)))
			f.Resize(fyne.NewSize(float32(br.X-tl.X), float32(br.Y-tl.Y)))
		}
	}
	if n.dot != nil {
		r := float32(strokeWidth(n.points[0], n.points[0], n.style.Width, t.Scale) / 2)
		p := fyne.NewPos(float32(pts[0].X), float32(pts[0].Y))
		n.dot.Position1 = p.SubtractXY(r, r)
		n.dot.Position2 = p.AddXY(r, r)
		return
	}
	for i, l := range n.lines {
		l.StrokeWidth = float32(strokeWidth(n.points[i], n.points[i+1], n.style.Width, t.Scale))
		l.Position1 = fyne.NewPos(float32(pts[i].X), float32(pts[i].Y))
		l.Position2 = fyne.NewPos(float32(pts[i+1].X), float32(pts[i+1].Y))
	}
}

func (n *node) objects(dst []fyne.CanvasObject) []fyne.CanvasObject {
	if n.fill != nil {
		dst = append(dst, n.fill)
	}
	if n.dot != nil {
		return append(dst, n.dot)
	}
	for _, l := range n.lines {
		dst = append(dst, l)
	}
	return dst
}

// Scene is a retained scene graph of fyne canvas objects. A widget
// renderer returns Objects and refreshes when OnChange fires.
type Scene struct {
	mu      sync.Mutex
	t       Transform
	nodes   map[string]*node
	order   []*node
	active  *node
	objects []fyne.CanvasObject

	// OnChange is called after the object list changed.
	OnChange func()
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{t: Identity, nodes: make(map[string]*node)}
}

func (s *Scene) Name() string { return "scene" }

func (s *Scene) ApplyTransform(t Transform) {
	s.mu.Lock()
	s.t = t
	for _, n := range s.order {
		n.layout(t, n.stroke.Shape)
	}
	if s.active != nil {
		s.active.layout(t, nil)
	}
	s.rebuild()
	s.mu.Unlock()
	s.changed()
}

// RenderStrokes reconciles the scene with strokes, reusing the objects of
// strokes that were already shown.
func (s *Scene) RenderStrokes(strokes []*state.Stroke) {
	s.mu.Lock()
	next := make(map[string]*node, len(strokes))
	s.order = s.order[:0]
	for _, st := range strokes {
		n, ok := s.nodes[st.ID]
		if !ok || n.stroke != st {
			n = newNode(st.Points, st.Style, st.Shape)
			n.stroke = st
			n.layout(s.t, st.Shape)
		}
		next[st.ID] = n
		s.order = append(s.order, n)
	}
	s.nodes = next
	s.rebuild()
	s.mu.Unlock()
	s.changed()
}

func (s *Scene) SetActiveStroke(points []ink.Point, style ink.Style) {
	s.mu.Lock()
	s.active = nil
	if len(points) > 0 {
		s.active = newNode(points, style, nil)
		s.active.layout(s.t, nil)
	}
	s.rebuild()
	s.mu.Unlock()
	s.changed()
}

// Objects returns the canvas objects in draw order.
func (s *Scene) Objects() []fyne.CanvasObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects
}

func (s *Scene) rebuild() {
	objs := make([]fyne.CanvasObject, 0, len(s.objects))
	for _, n := range s.order {
		objs = n.objects(objs)
	}
	if s.active != nil {
		objs = s.active.objects(objs)
	}
	s.objects = objs
}

func (s *Scene) changed() {
	if s.OnChange != nil {
		s.OnChange()
	}
}
