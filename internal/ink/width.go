package ink

import (
	"math"

	"InkBoard/internal/geom"
	"InkBoard/internal/input"
)

// Apply evaluates the curve at p, which must already lie in [0,1].
func (c Curve) Apply(p float64) float64 {
	switch c {
	case CurveLinear:
		return p
	case CurveEaseIn:
		return p * p
	case CurveEaseOut:
		return 1 - (1-p)*(1-p)
	case CurveEaseInOut:
		if p < 0.5 {
			return 2 * p * p
		}
		return 1 - 2*(1-p)*(1-p)
	}
	return 1
}

// Multiplier maps a raw pressure reading to a width multiplier.
// Out-of-range pressure is clamped first.
func (r PressureResponse) Multiplier(pressure float64) float64 {
	if r.Curve == CurveConstant || r.Curve == "" {
		return 1
	}
	p := input.ClampPressure(pressure)
	s := geom.Clamp(r.Sensitivity, 0, 1)
	shaped := (1-s)*0.5 + s*r.Curve.Apply(p)
	return r.MinWidth + (r.MaxWidth-r.MinWidth)*shaped
}

// Multiplier linearly reduces width as velocity approaches MaxVelocity.
func (v VelocityResponse) Multiplier(velocity float64) float64 {
	if !v.Enabled || v.MaxVelocity <= 0 || !(velocity > 0) {
		return 1
	}
	ratio := math.Min(velocity/v.MaxVelocity, 1)
	return 1 - (1-v.MinMultiplier)*ratio
}

// EffectiveWidth is base × pressure multiplier × speed multiplier, never
// below base and never NaN.
func EffectiveWidth(base float64, cfg BehaviorConfig, pressure, velocity float64) float64 {
	w := base * cfg.Pressure.Multiplier(pressure) * cfg.Velocity.Multiplier(velocity)
	if math.IsNaN(w) || w < base {
		return base
	}
	return w
}

// Velocity is distance over elapsed time in units/ms. A non-positive time
// delta yields 0.
func Velocity(a, b input.Sample) float64 {
	dt := b.Timestamp - a.Timestamp
	if dt <= 0 {
		return 0
	}
	return a.Pos().Distance(b.Pos()) / dt
}
