package shape

import (
	"fmt"
	"math"

	"InkBoard/internal/geom"
	"InkBoard/internal/ink"
)

// DefaultSegments is the polygon resolution for circles and ellipses.
const DefaultSegments = 64

// Outline samples s into a polyline: 2 points for a line, segments+1
// points for circles and ellipses, and a closed 5-point loop for boxes.
func Outline(s Shape, segments int) []geom.Point {
	if segments < 3 {
		segments = DefaultSegments
	}
	switch v := s.(type) {
	case Line:
		return []geom.Point{v.Start, v.End}
	case Circle:
		return ellipsePoints(v.Center, v.Radius, v.Radius, 0, segments)
	case Ellipse:
		return ellipsePoints(v.Center, v.RadiusX, v.RadiusY, v.Rotation, segments)
	case Rectangle:
		return boxLoop(v.Bounds())
	case Square:
		return boxLoop(v.Bounds())
	default:
		panic(fmt.Sprintf("shape: unhandled shape %T", s))
	}
}

// StrokePoints converts an outline into committed stroke points at a
// uniform width and neutral pressure.
func StrokePoints(s Shape, segments int, width float64) []ink.Point {
	outline := Outline(s, segments)
	out := make([]ink.Point, len(outline))
	for i, p := range outline {
		out[i] = ink.Point{X: p.X, Y: p.Y, Pressure: 0.5, Width: width}
	}
	return out
}

func ellipsePoints(c geom.Point, rx, ry, rot float64, n int) []geom.Point {
	cos, sin := math.Cos(rot), math.Sin(rot)
	out := make([]geom.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		a := 2 * math.Pi * float64(i%n) / float64(n)
		x, y := rx*math.Cos(a), ry*math.Sin(a)
		out = append(out, geom.Point{
			X: c.X + x*cos - y*sin,
			Y: c.Y + x*sin + y*cos,
		})
	}
	return out
}

func boxLoop(b geom.Rect) []geom.Point {
	c := b.Corners()
	return []geom.Point{c[0], c[1], c[2], c[3], c[0]}
}
