package ink

import (
	"InkBoard/internal/geom"
	"InkBoard/internal/input"
)

// FinalizeTolerance is the distance under which the trailing sample is
// considered already represented by the last committed point.
const FinalizeTolerance = 0.5

// Update is the result of feeding one sample to the engine.
type Update struct {
	Accepted  bool
	Committed *Point
	Live      Point
	Points    []Point
	Velocity  float64
}

// Engine is the per-stroke processor. It is created once per tool and
// reused across strokes via Start/Finalize. Not safe for concurrent use.
type Engine struct {
	cfg       BehaviorConfig
	baseWidth float64

	active    bool
	startTime float64
	points    []Point

	prev     input.Sample
	lastRaw  input.Sample
	lastPos  geom.Point
	lastTime float64
	live     Point
	ema      geom.Point
	window   []geom.Point
}

// NewEngine returns an engine for one tool configuration.
func NewEngine(cfg BehaviorConfig, baseWidth float64) *Engine {
	return &Engine{cfg: cfg, baseWidth: baseWidth}
}

// Config returns the engine configuration.
func (e *Engine) Config() BehaviorConfig { return e.cfg }

// BaseWidth returns the stroke base width.
func (e *Engine) BaseWidth() float64 { return e.baseWidth }

// Active reports whether a stroke is in progress.
func (e *Engine) Active() bool { return e.active }

// Start resets the engine and commits the first point.
func (e *Engine) Start(s input.Sample) Point {
	e.Reset()
	e.active = true
	e.startTime = s.Timestamp
	e.prev, e.lastRaw = s, s
	e.ema = s.Pos()
	e.window = append(e.window, s.Pos())

	p := e.pointAt(s.Pos(), s, 0)
	e.points = append(e.points, p)
	e.lastPos, e.lastTime = p.Pos(), s.Timestamp
	e.live = p
	return p
}

// AddSample processes one sample. The live point is always refreshed; a
// committed point is appended only when the distribution test passes.
func (e *Engine) AddSample(s input.Sample) Update {
	if !e.active {
		p := e.Start(s)
		return Update{Accepted: true, Committed: &p, Live: p, Points: e.Points()}
	}

	v := Velocity(e.prev, s)
	e.prev, e.lastRaw = s, s
	pos := e.smooth(s.Pos())
	e.live = e.pointAt(pos, s, v)

	u := Update{Live: e.live, Velocity: v}
	if e.admit(pos, s.Timestamp, v) {
		c := e.live
		e.points = append(e.points, c)
		e.lastPos, e.lastTime = pos, s.Timestamp
		u.Accepted = true
		u.Committed = &c
	}
	u.Points = e.Points()
	return u
}

// Points returns the committed points so far. The slice must not be modified.
func (e *Engine) Points() []Point {
	return e.points[:len(e.points):len(e.points)]
}

// Live returns the preview point for the most recent sample.
func (e *Engine) Live() (Point, bool) {
	return e.live, e.active
}

// Finalize appends the trailing sample when it is farther than
// FinalizeTolerance from the last committed point, returns the committed
// list and clears the engine.
func (e *Engine) Finalize() []Point {
	if !e.active {
		return nil
	}
	tail := e.pointAt(e.lastRaw.Pos(), e.lastRaw, 0)
	if len(e.points) > 0 {
		tail.Width = e.points[len(e.points)-1].Width
	}
	if len(e.points) == 0 || e.points[len(e.points)-1].Pos().Distance(tail.Pos()) > FinalizeTolerance {
		e.points = append(e.points, tail)
	}
	out := make([]Point, len(e.points))
	copy(out, e.points)
	e.Reset()
	return out
}

// Reset discards any in-progress stroke.
func (e *Engine) Reset() {
	e.active = false
	e.points = nil
	e.window = e.window[:0]
	e.live = Point{}
}

func (e *Engine) pointAt(pos geom.Point, s input.Sample, velocity float64) Point {
	return Point{
		X:        pos.X,
		Y:        pos.Y,
		Pressure: input.ClampPressure(s.Pressure),
		Width:    EffectiveWidth(e.baseWidth, e.cfg, s.Pressure, velocity),
		T:        s.Timestamp - e.startTime,
		Tilt:     s.Tilt,
	}
}

func (e *Engine) admit(pos geom.Point, t, velocity float64) bool {
	d := e.cfg.Distribution
	minDist, minInterval := d.MinDistance, d.MinInterval
	if d.SpeedAdaptive && d.ReferenceSpeed > 0 {
		f := geom.Clamp(1.5-velocity/d.ReferenceSpeed, 0.5, 1.5)
		minDist *= f
		minInterval *= f
	}
	distOK := pos.Distance(e.lastPos) >= minDist
	timeOK := t-e.lastTime >= minInterval
	switch d.Algorithm {
	case DistributionDistance:
		return distOK
	case DistributionTime:
		return timeOK
	default:
		return distOK && timeOK
	}
}

func (e *Engine) smooth(p geom.Point) geom.Point {
	sm := e.cfg.Smoothing
	switch sm.Algorithm {
	case SmoothingEMA:
		e.ema = e.ema.Lerp(p, sm.Factor)
		return e.ema
	case SmoothingMovingAverage:
		e.window = append(e.window, p)
		if n := sm.Window; n > 0 && len(e.window) > n {
			e.window = e.window[len(e.window)-n:]
		}
		return geom.Centroid(e.window)
	}
	return p
}
