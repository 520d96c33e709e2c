// Package shape fits geometric primitives to ink and regenerates ink from them.
package shape

import (
	"math"

	"InkBoard/internal/geom"
)

// Kind names a primitive.
type Kind string

const (
	KindLine      Kind = "line"
	KindCircle    Kind = "circle"
	KindEllipse   Kind = "ellipse"
	KindRectangle Kind = "rectangle"
	KindSquare    Kind = "square"
)

// Shape is the closed set of primitives: Line, Circle, Ellipse, Rectangle
// and Square. Every switch over a Shape must handle all five.
type Shape interface {
	Kind() Kind
	Bounds() geom.Rect
	isShape()
}

type Line struct {
	Start geom.Point `json:"start"`
	End   geom.Point `json:"end"`
}

type Circle struct {
	Center geom.Point `json:"center"`
	Radius float64    `json:"radius"`
}

// Ellipse radii are along its own axes; Rotation is in radians.
type Ellipse struct {
	Center   geom.Point `json:"center"`
	RadiusX  float64    `json:"radiusX"`
	RadiusY  float64    `json:"radiusY"`
	Rotation float64    `json:"rotation"`
}

type Rectangle struct {
	TopLeft geom.Point `json:"topLeft"`
	Width   float64    `json:"width"`
	Height  float64    `json:"height"`
}

type Square struct {
	TopLeft geom.Point `json:"topLeft"`
	Size    float64    `json:"size"`
}

func (Line) Kind() Kind      { return KindLine }
func (Circle) Kind() Kind    { return KindCircle }
func (Ellipse) Kind() Kind   { return KindEllipse }
func (Rectangle) Kind() Kind { return KindRectangle }
func (Square) Kind() Kind    { return KindSquare }

func (Line) isShape()      {}
func (Circle) isShape()    {}
func (Ellipse) isShape()   {}
func (Rectangle) isShape() {}
func (Square) isShape()    {}

func (l Line) Bounds() geom.Rect { return geom.RectFromCorners(l.Start, l.End) }

func (c Circle) Bounds() geom.Rect {
	return geom.Rect{X: c.Center.X - c.Radius, Y: c.Center.Y - c.Radius, Width: 2 * c.Radius, Height: 2 * c.Radius}
}

// Bounds of a rotated ellipse, from the extents of its parametric form.
func (e Ellipse) Bounds() geom.Rect {
	cos, sin := math.Cos(e.Rotation), math.Sin(e.Rotation)
	hw := math.Hypot(e.RadiusX*cos, e.RadiusY*sin)
	hh := math.Hypot(e.RadiusX*sin, e.RadiusY*cos)
	return geom.Rect{X: e.Center.X - hw, Y: e.Center.Y - hh, Width: 2 * hw, Height: 2 * hh}
}

func (r Rectangle) Bounds() geom.Rect {
	return geom.Rect{X: r.TopLeft.X, Y: r.TopLeft.Y, Width: r.Width, Height: r.Height}
}

func (s Square) Bounds() geom.Rect {
	return geom.Rect{X: s.TopLeft.X, Y: s.TopLeft.Y, Width: s.Size, Height: s.Size}
}

// IsClosed reports whether a kind encloses an area. Closed shapes are
// committed with a translucent fill.
func IsClosed(k Kind) bool { return k != KindLine }

// DefaultFillOpacity is the fill applied to snapped shapes of kind k.
func DefaultFillOpacity(k Kind) float64 {
	if IsClosed(k) {
		return 0.15
	}
	return 0
}

// Kinds is a set of primitive kinds.
type Kinds uint8

const (
	AllowLine Kinds = 1 << iota
	AllowCircle
	AllowEllipse
	AllowRectangle
	AllowSquare

	AllowAll = AllowLine | AllowCircle | AllowEllipse | AllowRectangle | AllowSquare
)

var kindBits = map[Kind]Kinds{
	KindLine:      AllowLine,
	KindCircle:    AllowCircle,
	KindEllipse:   AllowEllipse,
	KindRectangle: AllowRectangle,
	KindSquare:    AllowSquare,
}

// Only builds a set from explicit kinds. Unknown kinds are ignored.
func Only(kinds ...Kind) Kinds {
	var s Kinds
	for _, k := range kinds {
		s |= kindBits[k]
	}
	return s
}

// Has reports whether k is in the set.
func (s Kinds) Has(k Kind) bool { return s&kindBits[k] != 0 }
