package shape

import (
	"math"

	"InkBoard/internal/geom"
	"InkBoard/internal/ink"
)

// Config holds the classification thresholds. The defaults are empirical
// and expected to be recalibrated against recorded strokes.
type Config struct {
	MinPoints          int     `toml:"min_points"`
	MaxDuration        float64 `toml:"max_duration_ms"`
	OpenRatio          float64 `toml:"open_ratio"`
	ClosedRatio        float64 `toml:"closed_ratio"`
	LineDistance       float64 `toml:"line_distance"`
	LineShortCircuitR2 float64 `toml:"line_short_circuit_r2"`
	LineThreshold      float64 `toml:"line_threshold"`
	CircleThreshold    float64 `toml:"circle_threshold"`
	RectangleThreshold float64 `toml:"rectangle_threshold"`
	EllipseMinAspect   float64 `toml:"ellipse_min_aspect"`
	EllipseMaxAspect   float64 `toml:"ellipse_max_aspect"`
	EllipsePenalty     float64 `toml:"ellipse_penalty"`
	SquareMinAspect    float64 `toml:"square_min_aspect"`
	SquareMaxAspect    float64 `toml:"square_max_aspect"`
	SquareBoost        float64 `toml:"square_boost"`
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		MinPoints:          10,
		MaxDuration:        6000,
		OpenRatio:          0.3,
		ClosedRatio:        0.2,
		LineDistance:       100,
		LineShortCircuitR2: 0.7,
		LineThreshold:      0.95,
		CircleThreshold:    0.75,
		RectangleThreshold: 0.7,
		EllipseMinAspect:   1.2,
		EllipseMaxAspect:   3.0,
		EllipsePenalty:     0.9,
		SquareMinAspect:    0.85,
		SquareMaxAspect:    1.15,
		SquareBoost:        1.05,
	}
}

// Match is a recognized primitive with its confidence in [0,1].
type Match struct {
	Shape      Shape
	Confidence float64
}

// Recognizer classifies point lists. It holds no per-stroke state and may
// be shared.
type Recognizer struct {
	cfg Config
}

// NewRecognizer returns a recognizer using cfg.
func NewRecognizer(cfg Config) *Recognizer {
	return &Recognizer{cfg: cfg}
}

// Config returns the thresholds in use.
func (r *Recognizer) Config() Config { return r.cfg }

type candidate struct {
	shape Shape
	score float64
}

// Recognize returns the best-scoring primitive among the allowed kinds, or
// false when no candidate clears its threshold.
func (r *Recognizer) Recognize(points []ink.Point, allowed Kinds) (Match, bool) {
	if len(points) < 2 || allowed == 0 {
		return Match{}, false
	}
	if points[len(points)-1].T-points[0].T > r.cfg.MaxDuration {
		return Match{}, false
	}
	pts := ink.Positions(points)
	closure := pts[0].Distance(pts[len(pts)-1])

	// Long open strokes are almost always lines; skip the closed fits.
	if allowed.Has(KindLine) && closure > r.cfg.LineDistance {
		if l, r2 := FitLine(pts); r2 > r.cfg.LineShortCircuitR2 {
			return Match{Shape: l, Confidence: r2}, true
		}
	}
	if len(pts) < r.cfg.MinPoints {
		return Match{}, false
	}

	length := geom.PathLength(pts)
	open := closure > r.cfg.OpenRatio*length
	closed := closure < r.cfg.ClosedRatio*length

	var cands []candidate
	if !closed {
		cands = append(cands, r.lineCandidates(pts, allowed)...)
	}
	if !open {
		cands = append(cands, r.closedCandidates(pts, allowed)...)
	}

	best := candidate{score: math.Inf(-1)}
	for _, c := range cands {
		if c.score > best.score {
			best = c
		}
	}
	if best.shape == nil {
		return Match{}, false
	}
	return Match{Shape: best.shape, Confidence: math.Min(best.score, 1)}, true
}

func (r *Recognizer) lineCandidates(pts []geom.Point, allowed Kinds) []candidate {
	if !allowed.Has(KindLine) {
		return nil
	}
	if l, r2 := FitLine(pts); r2 >= r.cfg.LineThreshold {
		return []candidate{{shape: l, score: r2}}
	}
	return nil
}

func (r *Recognizer) closedCandidates(pts []geom.Point, allowed Kinds) []candidate {
	var out []candidate
	if allowed.Has(KindCircle) {
		if c, q := FitCircle(pts); q >= r.cfg.CircleThreshold {
			out = append(out, candidate{shape: c, score: q})
		}
	}
	if allowed.Has(KindEllipse) {
		e, q, aspect := FitEllipse(pts)
		if aspect >= r.cfg.EllipseMinAspect && aspect <= r.cfg.EllipseMaxAspect && q > 0 {
			out = append(out, candidate{shape: e, score: q * r.cfg.EllipsePenalty})
		}
	}
	if allowed.Has(KindRectangle) || allowed.Has(KindSquare) {
		rect, q := FitRectangle(pts)
		if q >= r.cfg.RectangleThreshold {
			if allowed.Has(KindRectangle) {
				out = append(out, candidate{shape: rect, score: q})
			}
			if allowed.Has(KindSquare) && rect.Height > 0 {
				aspect := rect.Width / rect.Height
				if aspect >= r.cfg.SquareMinAspect && aspect <= r.cfg.SquareMaxAspect {
					sq := Square{TopLeft: rect.TopLeft, Size: (rect.Width + rect.Height) / 2}
					out = append(out, candidate{shape: sq, score: q * r.cfg.SquareBoost})
				}
			}
		}
	}
	return out
}
