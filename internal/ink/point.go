// Package ink converts pointer samples into committed stroke points.
package ink

import (
	"InkBoard/internal/geom"
	"InkBoard/internal/input"
)

// Point is the durable per-point record of a stroke. T is milliseconds
// since the stroke started.
type Point struct {
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Pressure float64     `json:"pressure"`
	Width    float64     `json:"width,omitempty"`
	T        float64     `json:"t"`
	Tilt     *input.Tilt `json:"tilt,omitempty"`
}

// Pos returns the point position.
func (p Point) Pos() geom.Point { return geom.Point{X: p.X, Y: p.Y} }

// Positions extracts the positions of pts.
func Positions(pts []Point) []geom.Point {
	out := make([]geom.Point, len(pts))
	for i, p := range pts {
		out[i] = p.Pos()
	}
	return out
}

// Style is the appearance of a stroke. It never changes after commit.
type Style struct {
	Color   string  `json:"color"`
	Width   float64 `json:"width"`
	Opacity float64 `json:"opacity"`
	ToolID  string  `json:"tool_id"`
}
