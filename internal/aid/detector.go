package aid

import (
	"time"

	"InkBoard/internal/ink"
	"InkBoard/internal/input"
	"InkBoard/internal/logging"
	"InkBoard/internal/shape"
)

// Config tunes hold detection. Durations are milliseconds; velocities are
// board units per millisecond.
type Config struct {
	Enabled           bool    `toml:"enabled"`
	HoldMS            float64 `toml:"hold_ms"`
	VelocityThreshold float64 `toml:"velocity_threshold"`
	PollMS            float64 `toml:"poll_ms"`
	BufferMS          float64 `toml:"buffer_ms"`
	VelocityWindowMS  float64 `toml:"velocity_window_ms"`
	MinPoints         int     `toml:"min_points"`
	Segments          int     `toml:"segments"`
}

// DefaultConfig returns the stock hold-and-snap tuning.
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		HoldMS:            1500,
		VelocityThreshold: 0.002,
		PollMS:            16,
		BufferMS:          200,
		VelocityWindowMS:  120,
		MinPoints:         10,
		Segments:          shape.DefaultSegments,
	}
}

func (c Config) hold() time.Duration { return time.Duration(c.HoldMS * float64(time.Millisecond)) }
func (c Config) poll() time.Duration { return time.Duration(c.PollMS * float64(time.Millisecond)) }

// Phase is the coarse position of a stroke in the workflow.
type Phase int

const (
	PhaseInactive Phase = iota
	PhaseTracking
	PhaseHolding
	PhaseAdjusting
)

func (p Phase) String() string {
	switch p {
	case PhaseInactive:
		return "inactive"
	case PhaseTracking:
		return "tracking"
	case PhaseHolding:
		return "holding"
	case PhaseAdjusting:
		return "adjusting"
	}
	return "unknown"
}

// PointSource yields the stroke's committed points at the moment it is called.
type PointSource func() []ink.Point

// Result is a snapped shape ready to commit.
type Result struct {
	Shape       shape.Shape
	Confidence  float64
	Points      []ink.Point
	Original    []ink.Point
	HasFill     bool
	FillOpacity float64
}

// Debug is the introspection view of the detector.
type Debug struct {
	Enabled  bool
	Phase    Phase
	Velocity float64
	Detected shape.Kind
}

// state is the per-stroke working set. It exists from Begin until End or
// Cancel, and owns both scheduled tasks.
type state struct {
	allowed   shape.Kinds
	points    PointSource
	width     float64
	recent    []input.Sample
	hold      Task
	poll      Task
	spent     bool
	velocity  float64
	adjusting bool
	match     shape.Match
	current   shape.Shape
	handle    shape.Handle
	snapshot  []ink.Point
}

// Detector owns the hold-and-snap workflow for one pointer stream. All
// methods and scheduled callbacks must run on the same goroutine.
type Detector struct {
	cfg        Config
	sched      Scheduler
	recognizer *shape.Recognizer

	st *state

	// OnDetect, when set, is called once a shape has been recognized and
	// adjustment mode has begun.
	OnDetect func(shape.Match)
}

// NewDetector wires a detector to its scheduler and recognizer.
func NewDetector(cfg Config, sched Scheduler, recognizer *shape.Recognizer) *Detector {
	return &Detector{cfg: cfg, sched: sched, recognizer: recognizer}
}

// Config returns the detector tuning.
func (d *Detector) Config() Config { return d.cfg }

// SetEnabled toggles the feature for future strokes. An in-flight stroke
// is cancelled when disabling.
func (d *Detector) SetEnabled(on bool) {
	d.cfg.Enabled = on
	if !on {
		d.Cancel()
	}
}

// Begin creates the per-stroke state and starts the velocity poll. width
// is the stroke base width used when regenerating points from a shape.
func (d *Detector) Begin(allowed shape.Kinds, width float64, points PointSource, first input.Sample) {
	d.Cancel()
	if !d.cfg.Enabled || allowed == 0 {
		return
	}
	d.st = &state{allowed: allowed, width: width, points: points, recent: []input.Sample{first}}
	d.st.poll = d.sched.Every(d.cfg.poll(), d.tick)
}

// Phase reports where the current stroke is in the workflow.
func (d *Detector) Phase() Phase {
	switch {
	case d.st == nil:
		return PhaseInactive
	case d.st.adjusting:
		return PhaseAdjusting
	case d.st.hold != nil:
		return PhaseHolding
	}
	return PhaseTracking
}

// Adjusting reports whether the cursor currently drives a detected shape.
func (d *Detector) Adjusting() bool {
	return d.st != nil && d.st.adjusting
}

// Current returns the shape being adjusted.
func (d *Detector) Current() (shape.Shape, bool) {
	if !d.Adjusting() {
		return nil, false
	}
	return d.st.current, true
}

// Preview returns the points of the shape being adjusted, for live display.
func (d *Detector) Preview() []ink.Point {
	if !d.Adjusting() {
		return nil
	}
	return shape.StrokePoints(d.st.current, d.cfg.Segments, d.st.width)
}

// Observe feeds one drawing sample. It returns true when the sample was
// consumed by shape adjustment and must not reach the inking engine.
func (d *Detector) Observe(s input.Sample) bool {
	st := d.st
	if st == nil {
		return false
	}
	if st.adjusting {
		st.current = shape.Adjust(st.current, st.handle, s.Pos())
		return true
	}
	st.recent = append(st.recent, s)
	d.prune(s.Timestamp)
	d.evaluate(s.Timestamp)
	return false
}

// End finishes the stroke. It cancels every scheduled task and, when a
// shape was being adjusted, returns the regenerated points.
func (d *Detector) End() (Result, bool) {
	st := d.st
	d.Cancel()
	if st == nil || !st.adjusting {
		return Result{}, false
	}
	k := st.current.Kind()
	return Result{
		Shape:       st.current,
		Confidence:  st.match.Confidence,
		Points:      shape.StrokePoints(st.current, d.cfg.Segments, st.width),
		Original:    st.snapshot,
		HasFill:     shape.IsClosed(k),
		FillOpacity: shape.DefaultFillOpacity(k),
	}, true
}

// Cancel discards the per-stroke state and stops its tasks.
func (d *Detector) Cancel() {
	st := d.st
	if st == nil {
		return
	}
	stopTask(&st.hold)
	stopTask(&st.poll)
	d.st = nil
}

// Debug returns a snapshot for diagnostics overlays.
func (d *Detector) Debug() Debug {
	out := Debug{Enabled: d.cfg.Enabled, Phase: d.Phase()}
	if d.st != nil {
		out.Velocity = d.st.velocity
		if d.st.adjusting {
			out.Detected = d.st.current.Kind()
		}
	}
	return out
}

func stopTask(t *Task) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

func (d *Detector) tick() {
	if d.st == nil || d.st.adjusting {
		return
	}
	now := d.sched.Now()
	d.prune(now)
	d.evaluate(now)
}

// evaluate arms the hold timer on sustained stillness and disarms it on
// motion. A stillness period gets one classification attempt.
func (d *Detector) evaluate(now float64) {
	st := d.st
	st.velocity = d.recentVelocity(now)
	if st.velocity >= d.cfg.VelocityThreshold {
		stopTask(&st.hold)
		st.spent = false
		return
	}
	if st.hold == nil && !st.spent {
		st.hold = d.sched.AfterFunc(d.cfg.hold(), d.holdElapsed)
	}
}

func (d *Detector) holdElapsed() {
	st := d.st
	if st == nil || st.adjusting {
		return
	}
	st.hold = nil
	st.spent = true

	log := logging.For("aid")
	snapshot := append([]ink.Point(nil), st.points()...)
	if len(snapshot) < d.cfg.MinPoints {
		log.Debug("hold elapsed with too few points", "points", len(snapshot))
		return
	}
	m, ok := d.recognizer.Recognize(snapshot, st.allowed)
	if !ok {
		log.Debug("hold elapsed without a match", "points", len(snapshot))
		return
	}

	cursor := snapshot[len(snapshot)-1].Pos()
	if n := len(st.recent); n > 0 {
		cursor = st.recent[n-1].Pos()
	}
	st.adjusting = true
	st.match = m
	st.current = m.Shape
	st.handle = shape.Grab(m.Shape, cursor)
	st.snapshot = snapshot
	stopTask(&st.poll)
	log.Info("shape detected", "kind", m.Shape.Kind(), "confidence", m.Confidence, "points", len(snapshot))
	if d.OnDetect != nil {
		d.OnDetect(m)
	}
}

// prune drops samples older than the buffer window, keeping the newest of
// them as the anchor of the first in-window segment.
func (d *Detector) prune(now float64) {
	st := d.st
	cut := 0
	for cut < len(st.recent) && st.recent[cut].Timestamp < now-d.cfg.BufferMS {
		cut++
	}
	if cut > 1 {
		st.recent = append(st.recent[:0], st.recent[cut-1:]...)
	}
}

// recentVelocity is the path length of the segments ending inside the
// trailing velocity window, divided by the window length. It measures
// sustained stillness rather than the speed of the last segment.
func (d *Detector) recentVelocity(now float64) float64 {
	w := d.cfg.VelocityWindowMS
	if w <= 0 {
		return 0
	}
	var dist float64
	for i := 1; i < len(d.st.recent); i++ {
		if d.st.recent[i].Timestamp >= now-w {
			dist += d.st.recent[i-1].Pos().Distance(d.st.recent[i].Pos())
		}
	}
	return dist / w
}
