package ink

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InkBoard/internal/input"
)

func rawConfig(alg DistributionAlgorithm) BehaviorConfig {
	cfg := DefaultBehavior()
	cfg.Distribution = Distribution{Algorithm: alg, MinDistance: 5, MinInterval: 10}
	cfg.Smoothing = Smoothing{Algorithm: SmoothingNone}
	return cfg
}

func TestWidthNeverBelowBase(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	curves := []Curve{CurveConstant, CurveLinear, CurveEaseIn, CurveEaseOut, CurveEaseInOut}
	for i := 0; i < 5000; i++ {
		cfg := DefaultBehavior()
		cfg.Pressure.Curve = curves[rng.Intn(len(curves))]
		cfg.Pressure.Sensitivity = rng.Float64()
		cfg.Pressure.MinWidth = rng.Float64() * 2
		cfg.Pressure.MaxWidth = cfg.Pressure.MinWidth + rng.Float64()*3
		cfg.Velocity.MinMultiplier = rng.Float64()
		base := 0.5 + rng.Float64()*10
		pressure := rng.Float64()*4 - 2
		velocity := rng.Float64() * 20
		w := EffectiveWidth(base, cfg, pressure, velocity)
		require.False(t, math.IsNaN(w))
		require.GreaterOrEqual(t, w, base)
	}
	assert.Equal(t, 3.0, EffectiveWidth(3, DefaultBehavior(), math.NaN(), math.NaN()))
}

func TestHybridRequiresDistanceAndTime(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for run := 0; run < 50; run++ {
		cfg := rawConfig(DistributionHybrid)
		e := NewEngine(cfg, 2)
		first := input.Sample{X: 0, Y: 0, Pressure: 0.5}
		e.Start(first)
		last := first
		now := 0.0
		x, y := 0.0, 0.0
		for i := 0; i < 200; i++ {
			now += rng.Float64() * 12
			x += rng.Float64()*8 - 4
			y += rng.Float64()*8 - 4
			s := input.Sample{X: x, Y: y, Pressure: 0.5, Timestamp: now}

			want := s.Pos().Distance(last.Pos()) >= cfg.Distribution.MinDistance &&
				s.Timestamp-last.Timestamp >= cfg.Distribution.MinInterval
			u := e.AddSample(s)
			require.Equal(t, want, u.Accepted, "run %d sample %d", run, i)
			if want {
				last = s
				require.NotNil(t, u.Committed)
			} else {
				require.Nil(t, u.Committed)
			}
			assert.Equal(t, s.X, u.Live.X)
		}
	}
}

func TestDistanceAndTimeOnly(t *testing.T) {
	e := NewEngine(rawConfig(DistributionDistance), 2)
	e.Start(input.Sample{})
	assert.True(t, e.AddSample(input.Sample{X: 6, Timestamp: 1}).Accepted)
	assert.False(t, e.AddSample(input.Sample{X: 7, Timestamp: 100}).Accepted)

	e = NewEngine(rawConfig(DistributionTime), 2)
	e.Start(input.Sample{})
	assert.False(t, e.AddSample(input.Sample{X: 100, Timestamp: 5}).Accepted)
	assert.True(t, e.AddSample(input.Sample{X: 100, Timestamp: 10}).Accepted)
}

func TestSpeedAdaptiveTightensWhenFast(t *testing.T) {
	cfg := rawConfig(DistributionDistance)
	cfg.Distribution.SpeedAdaptive = true
	cfg.Distribution.ReferenceSpeed = 1

	// 4 units in 1ms is fast, so the 5 unit threshold halves.
	e := NewEngine(cfg, 2)
	e.Start(input.Sample{})
	assert.True(t, e.AddSample(input.Sample{X: 4, Timestamp: 1}).Accepted)

	// 6 units over 100ms is slow, so the threshold grows past 7.
	e = NewEngine(cfg, 2)
	e.Start(input.Sample{})
	assert.False(t, e.AddSample(input.Sample{X: 6, Timestamp: 100}).Accepted)
}

func TestEaseOutScenario(t *testing.T) {
	cfg := rawConfig(DistributionDistance)
	cfg.Pressure = PressureResponse{Curve: CurveEaseOut, Sensitivity: 0.5, MinWidth: 1, MaxWidth: 2}
	cfg.Velocity.Enabled = false

	e := NewEngine(cfg, 4)
	e.Start(input.Sample{X: 0, Y: 0, Pressure: 0.5, Timestamp: 0})
	e.AddSample(input.Sample{X: 50, Y: 0, Pressure: 0.5, Timestamp: 50})
	e.AddSample(input.Sample{X: 100, Y: 0, Pressure: 0.5, Timestamp: 100})
	pts := e.Finalize()
	require.Len(t, pts, 3)

	for i := 1; i < len(pts); i++ {
		assert.GreaterOrEqual(t, pts[i].Width, pts[i-1].Width)
	}
	// ease-out lifts mid pressure above the linear response.
	linear := cfg.Pressure
	linear.Curve = CurveLinear
	assert.Greater(t, cfg.Pressure.Multiplier(0.5), linear.Multiplier(0.5))
	assert.InDelta(t, 4*(1+0.625), pts[0].Width, 1e-9)
	assert.Equal(t, []float64{0, 50, 100}, []float64{pts[0].T, pts[1].T, pts[2].T})
}

func TestVelocityThinsStrokes(t *testing.T) {
	cfg := DefaultBehavior()
	slow := EffectiveWidth(2, cfg, 1, 0.1)
	fast := EffectiveWidth(2, cfg, 1, 3)
	assert.Greater(t, slow, fast)
	assert.Equal(t, 0.0, Velocity(input.Sample{X: 0, Timestamp: 5}, input.Sample{X: 10, Timestamp: 5}))
	assert.Equal(t, 2.0, Velocity(input.Sample{X: 0, Timestamp: 0}, input.Sample{X: 10, Timestamp: 5}))
}

func TestFinalizeAppendsTrailingPoint(t *testing.T) {
	e := NewEngine(rawConfig(DistributionHybrid), 2)
	e.Start(input.Sample{Pressure: 0.5})
	u := e.AddSample(input.Sample{X: 3, Pressure: 0.5, Timestamp: 2})
	require.False(t, u.Accepted)

	pts := e.Finalize()
	require.Len(t, pts, 2)
	assert.Equal(t, 3.0, pts[1].X)
	assert.False(t, e.Active())
	assert.Nil(t, e.Finalize())
}

func TestFinalizeSkipsTrailingPointWithinTolerance(t *testing.T) {
	e := NewEngine(rawConfig(DistributionHybrid), 2)
	e.Start(input.Sample{Pressure: 0.5})
	e.AddSample(input.Sample{X: 10, Pressure: 0.5, Timestamp: 20})
	e.AddSample(input.Sample{X: 10.3, Pressure: 0.5, Timestamp: 22})
	assert.Len(t, e.Finalize(), 2)
}

func TestEMASmoothingLagsInput(t *testing.T) {
	cfg := rawConfig(DistributionDistance)
	cfg.Smoothing = Smoothing{Algorithm: SmoothingEMA, Factor: 0.5}
	e := NewEngine(cfg, 2)
	e.Start(input.Sample{})
	u := e.AddSample(input.Sample{X: 20, Timestamp: 10})
	assert.Equal(t, 10.0, u.Live.X)
}

func TestMovingAverageWindow(t *testing.T) {
	cfg := rawConfig(DistributionDistance)
	cfg.Smoothing = Smoothing{Algorithm: SmoothingMovingAverage, Window: 2}
	e := NewEngine(cfg, 2)
	e.Start(input.Sample{})
	e.AddSample(input.Sample{X: 10, Timestamp: 10})
	u := e.AddSample(input.Sample{X: 20, Timestamp: 20})
	assert.Equal(t, 15.0, u.Live.X)
}

func TestValidate(t *testing.T) {
	require.NoError(t, DefaultBehavior().Validate())

	bad := DefaultBehavior()
	bad.Distribution.Algorithm = "spiral"
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = DefaultBehavior()
	bad.Pressure.MaxWidth = 0.1
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = DefaultBehavior()
	bad.Smoothing = Smoothing{Algorithm: SmoothingEMA, Factor: 0}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)
}
