// Package session wires pointer input, inking, shape assistance, the
// camera and the board into one interactive surface.
//
// A Session serves a single pointer stream. All methods, and the callbacks
// of its scheduler, must run on one goroutine.
package session

import (
	"context"
	"io"
	"math"
	"sort"
	"time"

	"InkBoard/internal/aid"
	"InkBoard/internal/camera"
	"InkBoard/internal/geom"
	"InkBoard/internal/gesture"
	"InkBoard/internal/ink"
	"InkBoard/internal/input"
	"InkBoard/internal/logging"
	"InkBoard/internal/render"
	"InkBoard/internal/shape"
	"InkBoard/internal/state"
	"InkBoard/internal/tool"
)

const defaultEraserRadius = 8

// Outcome describes a gesture that just ended.
type Outcome struct {
	Gesture  gesture.Kind
	Stroke   *state.Stroke
	Erased   []string
	Selected []string
}

type Session struct {
	opts     Options
	cam      *camera.Camera
	machine  *gesture.Machine
	board    *state.Board
	ids      *state.IDSource
	sched    aid.Scheduler
	detector *aid.Detector
	store    Persistence
	renderer render.Renderer

	engines map[tool.ID]*ink.Engine
	engine  *ink.Engine
	spec    tool.Spec
	color   string

	erasing   map[string]bool
	lastErase *geom.Point

	lastFrame time.Duration
	visible   int
}

// New builds a session. A nil store keeps the board local.
func New(opts Options, sched aid.Scheduler, store Persistence, r render.Renderer) *Session {
	if opts.Tools == nil {
		opts.Tools = tool.DefaultRegistry()
	}
	if store == nil {
		store = offline{}
	}
	cam := camera.New(opts.Viewport)
	cam.SetScaleLimits(opts.MinScale, opts.MaxScale)
	s := &Session{
		opts:     opts,
		cam:      cam,
		machine:  gesture.NewMachine(opts.Tools, opts.Tool),
		board:    state.NewBoard(opts.BoardID),
		ids:      state.NewIDSource(),
		sched:    sched,
		detector: aid.NewDetector(opts.Aid, sched, shape.NewRecognizer(opts.Recognizer)),
		store:    store,
		renderer: r,
		engines:  make(map[tool.ID]*ink.Engine),
		color:    opts.Color,
	}
	s.detector.OnDetect = func(shape.Match) { s.showActive() }
	r.ApplyTransform(render.FromCamera(cam.State()))
	return s
}

func (s *Session) Board() *state.Board       { return s.board }
func (s *Session) Camera() *camera.Camera    { return s.cam }
func (s *Session) Renderer() render.Renderer { return s.renderer }
func (s *Session) Tool() tool.ID             { return s.machine.Tool() }
func (s *Session) Gesture() gesture.Kind     { return s.machine.State().Kind() }

// Now is the clock pointer events must be stamped with.
func (s *Session) Now() float64 { return s.sched.Now() }

// SetColor changes the color of future strokes.
func (s *Session) SetColor(c string) { s.color = c }

// Color returns the current stroke color.
func (s *Session) Color() string { return s.color }

// SetAidEnabled toggles hold-and-snap.
func (s *Session) SetAidEnabled(on bool) { s.detector.SetEnabled(on) }

// AidEnabled reports whether hold-and-snap is on.
func (s *Session) AidEnabled() bool { return s.detector.Config().Enabled }

// SetTool switches tools. An active gesture is discarded without writing
// anything to the board.
func (s *Session) SetTool(id tool.ID) {
	s.discard()
	s.machine.SetTool(id)
}

// Cancel abandons the active gesture.
func (s *Session) Cancel() {
	s.discard()
	s.machine.Cancel()
}

func (s *Session) discard() {
	switch s.machine.State().(type) {
	case *gesture.Drawing:
		s.detector.Cancel()
		if s.engine != nil {
			s.engine.Reset()
		}
		s.renderer.SetActiveStroke(nil, ink.Style{})
	case *gesture.Erasing:
		s.erasing, s.lastErase = nil, nil
		s.refresh()
	}
}

func (s *Session) pointer(sample input.Sample) gesture.Pointer {
	screen := sample.Pos()
	b := s.cam.ScreenToBoard(screen)
	sample.X, sample.Y = b.X, b.Y
	return gesture.Pointer{Sample: sample, Screen: screen}
}

// OnPointerDown starts a gesture for the selected tool, or a pan when the
// event carries a pan button. A press while a gesture is active is ignored.
func (s *Session) OnPointerDown(ev input.Event) {
	if _, idle := s.machine.State().(gesture.Idle); !idle {
		return
	}
	p := s.pointer(input.Single(ev))
	s.machine.OnPointerDown(p, ev.Button.IsPan())
	switch s.machine.State().(type) {
	case *gesture.Drawing:
		s.beginStroke(p.Sample)
	case *gesture.Erasing:
		s.erasing = make(map[string]bool)
		s.lastErase = nil
		s.eraseAt(p.Sample.Pos())
	}
}

// OnPointerMove routes every sample the event carries, oldest first.
func (s *Session) OnPointerMove(ev input.Event) {
	for _, sample := range input.Normalize(ev) {
		s.move(s.pointer(sample))
	}
}

// OnPointerUp routes the event's samples and finishes the gesture. The
// machine records the final sample itself as it completes.
func (s *Session) OnPointerUp(ev input.Event) Outcome {
	samples := input.Normalize(ev)
	for _, sample := range samples[:len(samples)-1] {
		s.move(s.pointer(sample))
	}
	last := s.pointer(samples[len(samples)-1])

	prev := s.panLast()
	done := s.machine.OnPointerUp(last)
	s.route(done, last, prev)
	out := Outcome{Gesture: done.Kind()}
	switch g := done.(type) {
	case *gesture.Drawing:
		out.Stroke = s.finishStroke()
	case *gesture.Erasing:
		out.Erased = s.finishErase()
	case *gesture.Selecting:
		out.Selected = s.selectIn(g.Marquee())
	}
	return out
}

func (s *Session) move(p gesture.Pointer) {
	prev := s.panLast()
	s.machine.OnPointerMove(p)
	s.route(s.machine.State(), p, prev)
}

func (s *Session) panLast() geom.Point {
	if pan, ok := s.machine.State().(*gesture.Panning); ok {
		return pan.Last
	}
	return geom.Point{}
}

// route hands a sample the machine has recorded to the component that
// consumes it for the gesture.
func (s *Session) route(st gesture.State, p gesture.Pointer, prev geom.Point) {
	switch g := st.(type) {
	case *gesture.Drawing:
		s.addInk(p.Sample)
	case *gesture.Erasing:
		s.eraseAt(p.Sample.Pos())
	case *gesture.Panning:
		d := g.Last.Sub(prev)
		if d.X != 0 || d.Y != 0 {
			s.Pan(d.X, d.Y)
		}
	}
}

// Pan moves the view by a screen-space delta.
func (s *Session) Pan(dx, dy float64) {
	s.cam.Pan(dx, dy)
	s.transformChanged()
}

// OnWheel zooms around a screen point. Positive delta zooms in.
func (s *Session) OnWheel(at geom.Point, delta float64) {
	if delta == 0 {
		return
	}
	f := s.opts.WheelFactor
	if f <= 1 {
		f = 1.1
	}
	if delta < 0 {
		f = 1 / f
	}
	s.cam.ZoomAt(at, f)
	s.transformChanged()
}

// SetViewport resizes the visible area.
func (s *Session) SetViewport(size camera.Size) {
	s.cam.SetViewport(size)
	s.refresh()
}

// ResetView returns the camera to the origin.
func (s *Session) ResetView() {
	s.cam.Reset()
	s.transformChanged()
}

func (s *Session) transformChanged() {
	s.renderer.ApplyTransform(render.FromCamera(s.cam.State()))
	s.refresh()
}

// Sync replaces the board contents with the authoritative feed.
func (s *Session) Sync(feed []*state.Stroke) {
	s.board.Sync(feed)
	s.refresh()
}

// Refresh redraws the visible strokes.
func (s *Session) Refresh() { s.refresh() }

func (s *Session) refresh() {
	start := time.Now()
	visible := s.board.VisibleObjects(s.cam)
	if len(s.erasing) > 0 {
		kept := visible[:0]
		for _, st := range visible {
			if !s.erasing[st.ID] {
				kept = append(kept, st)
			}
		}
		visible = kept
	}
	s.renderer.RenderStrokes(visible)
	s.visible = len(visible)
	s.lastFrame = time.Since(start)
}

// ExportPDF writes every stroke on the board as a PDF page.
func (s *Session) ExportPDF(w io.Writer) error {
	return render.ExportPDF(w, s.board.All())
}

func (s *Session) beginStroke(first input.Sample) {
	spec, err := s.opts.Tools.Lookup(s.machine.Tool())
	if err != nil {
		logging.For("session").Warn("drawing with unknown tool", "tool", s.machine.Tool(), "err", err)
		spec = tool.Spec{ID: s.machine.Tool(), Kind: tool.KindInking, Ink: ink.DefaultBehavior(), Width: 2, Opacity: 1}
	}
	s.spec = spec
	s.engine = s.engineFor(spec)
	s.engine.Start(first)

	var allowed shape.Kinds
	if spec.AidByDef {
		allowed = spec.Shapes
	}
	s.detector.Begin(allowed, spec.Width, s.engine.Points, first)
	s.showActive()
}

func (s *Session) engineFor(spec tool.Spec) *ink.Engine {
	e, ok := s.engines[spec.ID]
	if !ok {
		e = ink.NewEngine(spec.Ink, spec.Width)
		s.engines[spec.ID] = e
	}
	return e
}

func (s *Session) style() ink.Style {
	return ink.Style{Color: s.color, Width: s.spec.Width, Opacity: s.spec.Opacity, ToolID: string(s.spec.ID)}
}

func (s *Session) addInk(sample input.Sample) {
	if s.detector.Observe(sample) {
		s.showActive()
		return
	}
	s.engine.AddSample(sample)
	s.showActive()
}

// showActive pushes the in-progress stroke: the adjusted shape while
// snapping, otherwise the committed points plus the live point.
func (s *Session) showActive() {
	if pts := s.detector.Preview(); pts != nil {
		s.renderer.SetActiveStroke(pts, s.style())
		return
	}
	pts := s.engine.Points()
	if live, ok := s.engine.Live(); ok && len(pts) > 0 && live.Pos() != pts[len(pts)-1].Pos() {
		pts = append(pts, live)
	}
	s.renderer.SetActiveStroke(pts, s.style())
}

func (s *Session) finishStroke() *state.Stroke {
	log := logging.For("session")
	var (
		points []ink.Point
		meta   *state.ShapeMetadata
	)
	if res, snapped := s.detector.End(); snapped {
		points = res.Points
		meta = state.Metadata(res.Shape, res.HasFill, res.FillOpacity)
		s.engine.Reset()
	} else {
		points = s.engine.Finalize()
	}
	s.renderer.SetActiveStroke(nil, ink.Style{})
	if len(points) == 0 {
		return nil
	}

	st := state.NewStroke(s.ids.Next(), s.board.ID(), points, s.style(), meta)
	s.board.Commit(st)
	s.refresh()
	if err := s.store.CreateStroke(context.Background(), st); err != nil {
		log.Warn("persist stroke", "id", st.ID, "err", err)
	}
	kind := "freehand"
	if meta != nil {
		kind = string(meta.ShapeType)
	}
	log.Info("stroke committed", "id", st.ID, "tool", st.Style.ToolID, "points", len(points), "kind", kind)
	return st
}

func (s *Session) selectIn(marquee geom.Rect) []string {
	var ids []string
	for _, st := range s.board.QueryRegion(marquee) {
		if marquee.ContainsRect(st.BoundingBox) {
			ids = append(ids, st.ID)
		}
	}
	return ids
}

// eraseRadius is the eraser reach in board units; it stays constant on
// screen as the camera zooms.
func (s *Session) eraseRadius() float64 {
	r := s.opts.EraserRadius
	if r <= 0 {
		r = defaultEraserRadius
	}
	return r / s.cam.Scale()
}

// eraseAt hides every stroke the eraser touches between the previous
// eraser position and p.
func (s *Session) eraseAt(p geom.Point) {
	r := s.eraseRadius()
	from := p
	if s.lastErase != nil {
		from = *s.lastErase
	}
	s.lastErase = &p

	steps := int(math.Ceil(from.Distance(p) / r))
	hit := false
	for i := 0; i <= steps; i++ {
		t := 1.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		c := from.Lerp(p, t)
		box := geom.Rect{X: c.X, Y: c.Y}.Inset(r)
		for _, st := range s.board.QueryRegion(box) {
			if !s.erasing[st.ID] && touches(st, c, r) {
				s.erasing[st.ID] = true
				hit = true
			}
		}
	}
	if hit {
		s.refresh()
	}
}

// touches reports whether a circle of radius r at c overlaps the painted
// stroke.
func touches(st *state.Stroke, c geom.Point, r float64) bool {
	reach := r + st.Style.Width/2
	pts := st.Points
	if len(pts) == 1 {
		return pts[0].Pos().Distance(c) <= reach
	}
	for i := 1; i < len(pts); i++ {
		if geom.SegmentDistance(c, pts[i-1].Pos(), pts[i].Pos()) <= reach {
			return true
		}
	}
	return false
}

func (s *Session) finishErase() []string {
	hidden := make([]string, 0, len(s.erasing))
	for id := range s.erasing {
		hidden = append(hidden, id)
	}
	sort.Strings(hidden)
	s.erasing, s.lastErase = nil, nil
	removed := s.board.Erase(hidden...)
	s.refresh()
	if len(removed) == 0 {
		return nil
	}
	if err := s.store.DeleteStrokes(context.Background(), s.board.ID(), removed); err != nil {
		logging.For("session").Warn("persist erase", "count", len(removed), "err", err)
	}
	logging.For("session").Info("strokes erased", "count", len(removed))
	return removed
}
