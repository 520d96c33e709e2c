package session

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InkBoard/internal/aid"
	"InkBoard/internal/camera"
	"InkBoard/internal/geom"
	"InkBoard/internal/gesture"
	"InkBoard/internal/ink"
	"InkBoard/internal/input"
	"InkBoard/internal/render"
	"InkBoard/internal/shape"
	"InkBoard/internal/state"
	"InkBoard/internal/tool"
)

const frame = 16 * time.Millisecond

type fakeRenderer struct {
	t       render.Transform
	strokes []*state.Stroke
	active  []ink.Point
}

func (f *fakeRenderer) Name() string                               { return "fake" }
func (f *fakeRenderer) ApplyTransform(t render.Transform)          { f.t = t }
func (f *fakeRenderer) RenderStrokes(s []*state.Stroke)            { f.strokes = s }
func (f *fakeRenderer) SetActiveStroke(p []ink.Point, _ ink.Style) { f.active = p }

func (f *fakeRenderer) ids() []string {
	out := make([]string, len(f.strokes))
	for i, s := range f.strokes {
		out[i] = s.ID
	}
	return out
}

type fakeStore struct {
	created []*state.Stroke
	deleted [][]string
	err     error
}

func (f *fakeStore) CreateStroke(_ context.Context, s *state.Stroke) error {
	f.created = append(f.created, s)
	return f.err
}

func (f *fakeStore) DeleteStrokes(_ context.Context, _ string, ids []string) error {
	f.deleted = append(f.deleted, ids)
	return f.err
}

type rig struct {
	s     *Session
	sched *aid.ManualScheduler
	r     *fakeRenderer
	store *fakeStore
}

func newRig(t *testing.T) *rig {
	t.Helper()
	reg := tool.DefaultRegistry()
	pen, err := reg.Lookup(tool.Pen)
	require.NoError(t, err)
	pen.Ink.Smoothing = ink.Smoothing{Algorithm: ink.SmoothingNone}
	reg.Register(pen)

	opts := DefaultOptions()
	opts.Tools = reg
	opts.Viewport = camera.Size{Width: 800, Height: 600}
	r := &rig{sched: aid.NewManualScheduler(0), r: &fakeRenderer{}, store: &fakeStore{}}
	r.s = New(opts, r.sched, r.store, r.r)
	return r
}

func (r *rig) ev(x, y float64) input.Event {
	return input.Event{X: x, Y: y, Pressure: 0.5, Timestamp: r.s.Now(), Button: input.ButtonPrimary}
}

func (r *rig) down(x, y float64) { r.s.OnPointerDown(r.ev(x, y)) }

func (r *rig) move(x, y float64) {
	r.sched.Advance(frame)
	r.s.OnPointerMove(r.ev(x, y))
}

func (r *rig) up(x, y float64) Outcome { return r.s.OnPointerUp(r.ev(x, y)) }

func (r *rig) drawCircle() {
	r.down(380, 200)
	for i := 1; i < 40; i++ {
		a := 2 * math.Pi * float64(i) / 40
		r.move(300+80*math.Cos(a), 200+80*math.Sin(a))
	}
}

func (r *rig) holdUntilAdjusting() {
	for i := 0; i < 200 && r.s.Stats().Aid.Phase != aid.PhaseAdjusting; i++ {
		r.sched.Advance(frame)
	}
}

func stroke(id string, x0, y0, x1, y1 float64) *state.Stroke {
	return state.NewStroke(id, "main", []ink.Point{{X: x0, Y: y0}, {X: x1, Y: y1}},
		ink.Style{Color: "#000000", Width: 2, Opacity: 1, ToolID: "pen"}, nil)
}

func TestDrawCommitsStroke(t *testing.T) {
	r := newRig(t)
	r.down(10, 10)
	for i := 1; i <= 20; i++ {
		r.move(10+5*float64(i), 10)
		assert.NotEmpty(t, r.r.active)
	}
	out := r.up(110, 10)

	assert.Equal(t, gesture.KindDrawing, out.Gesture)
	require.NotNil(t, out.Stroke)
	assert.Nil(t, out.Stroke.Shape)
	assert.Equal(t, "main", out.Stroke.BoardID)
	assert.Equal(t, ink.Style{Color: "#1e1e1e", Width: 2, Opacity: 1, ToolID: "pen"}, out.Stroke.Style)
	assert.Equal(t, geom.Pt(10, 10), out.Stroke.Points[0].Pos())
	assert.InDelta(t, 110, out.Stroke.Points[len(out.Stroke.Points)-1].X, 0.5)

	assert.Equal(t, 1, r.s.Board().Count())
	require.Len(t, r.store.created, 1)
	assert.Same(t, out.Stroke, r.store.created[0])
	assert.Empty(t, r.r.active)
	assert.Equal(t, []string{out.Stroke.ID}, r.r.ids())
	assert.Equal(t, gesture.KindIdle, r.s.Gesture())
	assert.Equal(t, 0, r.sched.Pending())
}

func TestHoldAndSnapCommitsShape(t *testing.T) {
	r := newRig(t)
	r.drawCircle()
	r.holdUntilAdjusting()
	require.Equal(t, aid.PhaseAdjusting, r.s.Stats().Aid.Phase)
	assert.Len(t, r.r.active, shape.DefaultSegments+1)

	r.move(300, 320)
	out := r.up(300, 320)

	require.NotNil(t, out.Stroke)
	require.NotNil(t, out.Stroke.Shape)
	assert.Equal(t, shape.KindCircle, out.Stroke.Shape.ShapeType)
	assert.True(t, out.Stroke.Shape.HasFill)
	assert.Equal(t, 0.15, out.Stroke.Shape.FillOpacity)
	c, ok := out.Stroke.Shape.Descriptor.Shape.(shape.Circle)
	require.True(t, ok)
	assert.InDelta(t, 120, c.Radius, 1e-3)
	assert.Len(t, out.Stroke.Points, shape.DefaultSegments+1)
	assert.Equal(t, 0, r.sched.Pending())
	assert.Equal(t, aid.PhaseInactive, r.s.Stats().Aid.Phase)
}

func TestReleaseAtHandOffCommitsDetectedShape(t *testing.T) {
	r := newRig(t)
	r.drawCircle()
	r.move(360, 195)
	r.holdUntilAdjusting()
	detected, ok := r.s.detector.Current()
	require.True(t, ok)

	out := r.up(360, 195)
	require.NotNil(t, out.Stroke)
	require.NotNil(t, out.Stroke.Shape)
	assert.Equal(t, detected, out.Stroke.Shape.Descriptor.Shape)
}

func TestSecondButtonDuringDrawingKeepsStroke(t *testing.T) {
	r := newRig(t)
	r.down(10, 10)
	for i := 1; i <= 20; i++ {
		r.move(10+5*float64(i), 10)
	}
	before := len(r.s.engine.Points())

	chord := r.ev(110, 10)
	chord.Button = input.ButtonMiddle
	r.s.OnPointerDown(chord)
	assert.Equal(t, gesture.KindDrawing, r.s.Gesture())
	assert.Len(t, r.s.engine.Points(), before)

	r.move(120, 10)
	out := r.up(120, 10)
	require.NotNil(t, out.Stroke)
	assert.Equal(t, geom.Pt(10, 10), out.Stroke.Points[0].Pos())
	assert.Greater(t, len(out.Stroke.Points), before)
	assert.Equal(t, 1, r.s.Board().Count())
	assert.Len(t, r.store.created, 1)
}

func TestSecondButtonDuringEraseKeepsHits(t *testing.T) {
	r := newRig(t)
	r.s.Board().AddObject(stroke("diag", 0, 0, 100, 100))
	r.s.SetTool(tool.Eraser)
	r.down(50, 50)
	require.Empty(t, r.r.ids())

	chord := r.ev(60, 60)
	chord.Button = input.ButtonSecondary
	r.s.OnPointerDown(chord)
	assert.Equal(t, gesture.KindErasing, r.s.Gesture())
	assert.Empty(t, r.r.ids())

	out := r.up(60, 60)
	assert.Equal(t, []string{"diag"}, out.Erased)
	assert.Equal(t, [][]string{{"diag"}}, r.store.deleted)
	assert.Zero(t, r.s.Board().Count())
}

func TestPointerUpRecordsFinalSampleOnce(t *testing.T) {
	r := newRig(t)
	r.s.SetAidEnabled(false)
	r.down(0, 0)
	r.move(10, 0)
	r.move(20, 0)
	d, ok := r.s.machine.State().(*gesture.Drawing)
	require.True(t, ok)

	r.sched.Advance(frame)
	r.up(30, 0)
	require.Len(t, d.Samples, 4)
	assert.Equal(t, geom.Pt(30, 0), d.Samples[3].Pos())

	r.s.SetTool(tool.Eraser)
	r.down(0, 0)
	e, ok := r.s.machine.State().(*gesture.Erasing)
	require.True(t, ok)
	r.move(10, 0)
	r.up(20, 0)
	assert.Len(t, e.Samples, 3)
}

func TestLineOnlyToolNeverSnapsClosedShapes(t *testing.T) {
	r := newRig(t)
	r.s.SetTool(tool.Highlighter)
	r.drawCircle()
	r.holdUntilAdjusting()
	assert.NotEqual(t, aid.PhaseAdjusting, r.s.Stats().Aid.Phase)

	out := r.up(380, 200)
	require.NotNil(t, out.Stroke)
	assert.Nil(t, out.Stroke.Shape)
	assert.Equal(t, 0.4, out.Stroke.Style.Opacity)
}

func TestAidDisabledDrawsFreehand(t *testing.T) {
	r := newRig(t)
	r.s.SetAidEnabled(false)
	r.drawCircle()
	assert.Equal(t, 0, r.sched.Pending())
	r.holdUntilAdjusting()
	out := r.up(380, 200)
	require.NotNil(t, out.Stroke)
	assert.Nil(t, out.Stroke.Shape)
}

func TestSetToolWhileDrawingDiscardsStroke(t *testing.T) {
	r := newRig(t)
	r.down(0, 0)
	r.move(20, 0)
	r.move(40, 0)
	require.Equal(t, gesture.KindDrawing, r.s.Gesture())
	require.NotZero(t, r.sched.Pending())

	r.s.SetTool(tool.Eraser)
	assert.Equal(t, gesture.KindIdle, r.s.Gesture())
	assert.Empty(t, r.r.active)
	assert.Equal(t, 0, r.sched.Pending())

	out := r.up(60, 0)
	assert.Equal(t, gesture.KindIdle, out.Gesture)
	assert.Nil(t, out.Stroke)
	assert.Zero(t, r.s.Board().Count())
	assert.Empty(t, r.store.created)
}

func TestEraserUsesExactHits(t *testing.T) {
	r := newRig(t)
	r.s.Board().AddObject(stroke("diag", 0, 0, 100, 100))
	r.s.Board().AddObject(stroke("far", 500, 500, 520, 500))
	r.s.SetTool(tool.Eraser)

	// Inside the diagonal's box but well away from the ink.
	r.down(90, 10)
	r.s.Refresh()
	assert.ElementsMatch(t, []string{"diag", "far"}, r.r.ids())

	r.move(50, 52)
	assert.Equal(t, []string{"far"}, r.r.ids())
	assert.Equal(t, 2, r.s.Board().Count(), "board untouched until pointer-up")

	out := r.up(50, 52)
	assert.Equal(t, gesture.KindErasing, out.Gesture)
	assert.Equal(t, []string{"diag"}, out.Erased)
	assert.Equal(t, [][]string{{"diag"}}, r.store.deleted)
	assert.Equal(t, 1, r.s.Board().Count())
}

func TestEraserSweepsBetweenSamples(t *testing.T) {
	r := newRig(t)
	r.s.Board().AddObject(stroke("v", 50, 0, 50, 100))
	r.s.SetTool(tool.Eraser)
	r.down(0, 50)
	r.move(100, 50)
	out := r.up(100, 50)
	assert.Equal(t, []string{"v"}, out.Erased)
}

func TestEraserRadiusFollowsZoom(t *testing.T) {
	r := newRig(t)
	r.s.Board().AddObject(stroke("h", 0, 0, 100, 0))
	r.s.SetTool(tool.Eraser)

	// 8px reach at scale 1 is 2 board units at scale 4.
	r.s.OnWheel(geom.Pt(0, 0), 1)
	for r.s.Camera().Scale() < 4 {
		r.s.OnWheel(geom.Pt(0, 0), 1)
	}
	scale := r.s.Camera().Scale()
	r.down(50*scale, 5*scale)
	out := r.up(50*scale, 5*scale)
	assert.Empty(t, out.Erased)
	assert.Empty(t, r.store.deleted)
}

func TestCancelledEraseRestoresStrokes(t *testing.T) {
	r := newRig(t)
	r.s.Board().AddObject(stroke("diag", 0, 0, 100, 100))
	r.s.SetTool(tool.Eraser)
	r.down(50, 50)
	assert.Empty(t, r.r.ids())

	r.s.SetTool(tool.Pen)
	assert.Equal(t, []string{"diag"}, r.r.ids())
	assert.Empty(t, r.store.deleted)
	assert.Equal(t, 1, r.s.Board().Count())
}

func TestPanButtonOverridesTool(t *testing.T) {
	r := newRig(t)
	ev := r.ev(100, 100)
	ev.Button = input.ButtonMiddle
	r.s.OnPointerDown(ev)
	assert.Equal(t, gesture.KindPanning, r.s.Gesture())

	r.move(130, 90)
	out := r.up(130, 90)
	assert.Equal(t, gesture.KindPanning, out.Gesture)
	assert.Equal(t, geom.Pt(30, -10), r.s.Camera().State().Pan)
	assert.Equal(t, geom.Pt(30, -10), r.r.t.Pan)
	assert.Zero(t, r.s.Board().Count())
	assert.Equal(t, tool.Pen, r.s.Tool())

	r.down(130, 90)
	r.move(160, 90)
	drawn := r.up(160, 90)
	require.NotNil(t, drawn.Stroke)
	assert.Equal(t, geom.Pt(100, 100), drawn.Stroke.Points[0].Pos())
}

func TestWheelZoomKeepsAnchor(t *testing.T) {
	r := newRig(t)
	anchor := geom.Pt(400, 300)
	before := r.s.Camera().ScreenToBoard(anchor)
	r.s.OnWheel(anchor, 3)
	assert.InDelta(t, 1.1, r.s.Camera().Scale(), 1e-9)
	after := r.s.Camera().ScreenToBoard(anchor)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
	assert.InDelta(t, 1.1, r.r.t.Scale, 1e-9)

	r.s.OnWheel(anchor, -1)
	assert.InDelta(t, 1, r.s.Camera().Scale(), 1e-9)
	r.s.OnWheel(anchor, 0)
	assert.InDelta(t, 1, r.s.Camera().Scale(), 1e-9)
}

func TestSelectionReturnsContainedStrokes(t *testing.T) {
	r := newRig(t)
	r.s.Board().AddObject(stroke("a", 10, 10, 20, 20))
	r.s.Board().AddObject(stroke("b", 40, 40, 200, 200))
	r.s.SetTool(tool.Select)
	r.down(0, 0)
	r.move(50, 50)
	out := r.up(50, 50)
	assert.Equal(t, gesture.KindSelecting, out.Gesture)
	assert.Equal(t, []string{"a"}, out.Selected)
}

func TestCoalescedSamplesRouteInOrder(t *testing.T) {
	r := newRig(t)
	r.down(0, 0)
	r.sched.Advance(30 * time.Millisecond)
	ev := r.ev(30, 0)
	ev.Coalesced = []input.Sample{
		{X: 20, Pressure: 0.5, Timestamp: 20},
		{X: 10, Pressure: 0.5, Timestamp: 10},
		{X: 30, Pressure: 0.5, Timestamp: 30},
	}
	r.s.OnPointerMove(ev)
	var xs []float64
	for _, p := range r.r.active {
		xs = append(xs, p.X)
	}
	assert.Equal(t, []float64{0, 10, 20, 30}, xs)
}

func TestSyncKeepsLocalStroke(t *testing.T) {
	r := newRig(t)
	r.down(0, 0)
	r.move(50, 0)
	local := r.up(50, 0).Stroke
	require.NotNil(t, local)

	remote := stroke("remote", 10, 10, 20, 20)
	r.s.Sync([]*state.Stroke{remote})
	assert.ElementsMatch(t, []string{"remote", local.ID}, r.r.ids())

	r.s.Sync([]*state.Stroke{remote, local})
	adds, _ := r.s.Board().Pending()
	assert.Zero(t, adds)
}

func TestPersistenceFailureKeepsStroke(t *testing.T) {
	r := newRig(t)
	r.store.err = errors.New("offline")
	r.down(0, 0)
	r.move(50, 0)
	out := r.up(50, 0)
	require.NotNil(t, out.Stroke)
	assert.Equal(t, 1, r.s.Board().Count())
}

func TestStats(t *testing.T) {
	r := newRig(t)
	r.down(0, 0)
	r.move(20, 0)
	live := r.s.Stats()
	assert.Equal(t, gesture.KindDrawing, live.Gesture)
	assert.Equal(t, 2, live.LivePoints)
	assert.Equal(t, aid.PhaseTracking, live.Aid.Phase)

	out := r.up(20, 0)
	st := r.s.Stats()
	assert.Equal(t, 1, st.Strokes)
	assert.Equal(t, 1, st.Visible)
	assert.Equal(t, len(out.Stroke.Points), st.Points)
	assert.Equal(t, "fake", st.Renderer)
	assert.Equal(t, tool.Pen, st.Tool)
	assert.Zero(t, st.LivePoints)
}

func TestExportPDF(t *testing.T) {
	r := newRig(t)
	r.s.Board().AddObject(stroke("a", 0, 0, 100, 100))
	var buf bytes.Buffer
	require.NoError(t, r.s.ExportPDF(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}
