package ink

import (
	"errors"
	"fmt"
)

// DistributionAlgorithm selects which test admits a new committed point.
type DistributionAlgorithm string

const (
	DistributionDistance DistributionAlgorithm = "distance"
	DistributionTime     DistributionAlgorithm = "time"
	DistributionHybrid   DistributionAlgorithm = "hybrid"
)

// SmoothingAlgorithm selects the position filter applied before distribution.
type SmoothingAlgorithm string

const (
	SmoothingNone          SmoothingAlgorithm = "none"
	SmoothingEMA           SmoothingAlgorithm = "ema"
	SmoothingMovingAverage SmoothingAlgorithm = "moving-average"
)

// Curve shapes the pressure response.
type Curve string

const (
	CurveConstant  Curve = "constant"
	CurveLinear    Curve = "linear"
	CurveEaseIn    Curve = "ease-in"
	CurveEaseOut   Curve = "ease-out"
	CurveEaseInOut Curve = "ease-in-out"
)

// Distribution controls point spacing. MinDistance is in board units,
// MinInterval in milliseconds. With SpeedAdaptive set both thresholds are
// scaled by a factor in [0.5, 1.5]: motion faster than ReferenceSpeed
// (units/ms) tightens spacing, slower motion relaxes it.
type Distribution struct {
	Algorithm      DistributionAlgorithm `toml:"algorithm"`
	MinDistance    float64               `toml:"min_distance"`
	MinInterval    float64               `toml:"min_interval_ms"`
	SpeedAdaptive  bool                  `toml:"speed_adaptive"`
	ReferenceSpeed float64               `toml:"reference_speed"`
}

// Smoothing configures the position filter. Factor is the weight of the
// newest sample for EMA; Window is the sample count for moving average.
type Smoothing struct {
	Algorithm SmoothingAlgorithm `toml:"algorithm"`
	Factor    float64            `toml:"factor"`
	Window    int                `toml:"window"`
}

// PressureResponse maps pressure into a width multiplier in
// [MinWidth, MaxWidth]. Sensitivity blends the curve with a neutral 0.5.
type PressureResponse struct {
	Curve       Curve   `toml:"curve"`
	Sensitivity float64 `toml:"sensitivity"`
	MinWidth    float64 `toml:"min_width"`
	MaxWidth    float64 `toml:"max_width"`
}

// VelocityResponse thins fast strokes. At MaxVelocity (units/ms) and above
// the multiplier reaches MinMultiplier.
type VelocityResponse struct {
	Enabled       bool    `toml:"enabled"`
	MaxVelocity   float64 `toml:"max_velocity"`
	MinMultiplier float64 `toml:"min_multiplier"`
}

// BehaviorConfig is the complete per-tool inking pipeline configuration.
type BehaviorConfig struct {
	Distribution Distribution     `toml:"distribution"`
	Smoothing    Smoothing        `toml:"smoothing"`
	Pressure     PressureResponse `toml:"pressure"`
	Velocity     VelocityResponse `toml:"velocity"`
}

// DefaultBehavior is a pen-like configuration.
func DefaultBehavior() BehaviorConfig {
	return BehaviorConfig{
		Distribution: Distribution{
			Algorithm:      DistributionHybrid,
			MinDistance:    2,
			MinInterval:    8,
			SpeedAdaptive:  true,
			ReferenceSpeed: 1,
		},
		Smoothing: Smoothing{Algorithm: SmoothingEMA, Factor: 0.6, Window: 4},
		Pressure: PressureResponse{
			Curve:       CurveEaseOut,
			Sensitivity: 0.5,
			MinWidth:    1,
			MaxWidth:    2,
		},
		Velocity: VelocityResponse{Enabled: true, MaxVelocity: 4, MinMultiplier: 0.6},
	}
}

var ErrInvalidConfig = errors.New("invalid inking config")

// Validate reports the first inconsistency in c.
func (c BehaviorConfig) Validate() error {
	switch c.Distribution.Algorithm {
	case DistributionDistance, DistributionTime, DistributionHybrid:
	default:
		return fmt.Errorf("%w: distribution algorithm %q", ErrInvalidConfig, c.Distribution.Algorithm)
	}
	if c.Distribution.MinDistance < 0 || c.Distribution.MinInterval < 0 {
		return fmt.Errorf("%w: negative distribution threshold", ErrInvalidConfig)
	}
	if c.Distribution.SpeedAdaptive && c.Distribution.ReferenceSpeed <= 0 {
		return fmt.Errorf("%w: reference speed must be positive", ErrInvalidConfig)
	}
	switch c.Smoothing.Algorithm {
	case SmoothingNone, "":
	case SmoothingEMA:
		if c.Smoothing.Factor <= 0 || c.Smoothing.Factor > 1 {
			return fmt.Errorf("%w: ema factor %v outside (0,1]", ErrInvalidConfig, c.Smoothing.Factor)
		}
	case SmoothingMovingAverage:
		if c.Smoothing.Window < 1 {
			return fmt.Errorf("%w: moving average window %d", ErrInvalidConfig, c.Smoothing.Window)
		}
	default:
		return fmt.Errorf("%w: smoothing algorithm %q", ErrInvalidConfig, c.Smoothing.Algorithm)
	}
	switch c.Pressure.Curve {
	case CurveConstant, CurveLinear, CurveEaseIn, CurveEaseOut, CurveEaseInOut:
	default:
		return fmt.Errorf("%w: pressure curve %q", ErrInvalidConfig, c.Pressure.Curve)
	}
	if c.Pressure.MinWidth < 0 || c.Pressure.MaxWidth < c.Pressure.MinWidth {
		return fmt.Errorf("%w: pressure width range [%v, %v]", ErrInvalidConfig, c.Pressure.MinWidth, c.Pressure.MaxWidth)
	}
	if c.Velocity.Enabled && c.Velocity.MaxVelocity <= 0 {
		return fmt.Errorf("%w: max velocity must be positive", ErrInvalidConfig)
	}
	return nil
}
