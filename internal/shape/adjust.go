package shape

import (
	"fmt"
	"math"

	"InkBoard/internal/geom"
)

// Handle is the control point grabbed when adjustment starts. Index is the
// dragged endpoint (line) or corner (rectangle, square); Point is where that
// control point was at hand-off and Fixed is the point that stays put.
// Cursor is the hand-off cursor, and Ref its distance from the center for
// radial drags. Control points move by the cursor's drag from Cursor, so an
// undragged cursor leaves the shape as grabbed.
type Handle struct {
	Origin Shape
	Index  int
	Point  geom.Point
	Fixed  geom.Point
	Cursor geom.Point
	Ref    float64
}

// Grab picks the control point of s nearest to the cursor.
func Grab(s Shape, cursor geom.Point) Handle {
	h := Handle{Origin: s, Cursor: cursor}
	switch v := s.(type) {
	case Line:
		h.Index, h.Point, h.Fixed = 1, v.End, v.Start
		if cursor.Distance(v.Start) < cursor.Distance(v.End) {
			h.Index, h.Point, h.Fixed = 0, v.Start, v.End
		}
	case Circle:
		h.Fixed = v.Center
		h.Ref = cursor.Distance(v.Center)
		if h.Ref == 0 {
			h.Ref = v.Radius
		}
	case Ellipse:
		h.Fixed = v.Center
		h.Ref = cursor.Distance(v.Center)
		if h.Ref == 0 {
			h.Ref = v.RadiusX
		}
	case Rectangle:
		h.Index, h.Point, h.Fixed = grabCorner(v.Bounds(), cursor)
	case Square:
		h.Index, h.Point, h.Fixed = grabCorner(v.Bounds(), cursor)
	default:
		panic(fmt.Sprintf("shape: unhandled shape %T", s))
	}
	return h
}

// Adjust returns s reshaped so the grabbed control point follows the
// cursor's drag since hand-off.
func Adjust(s Shape, h Handle, cursor geom.Point) Shape {
	if h.Origin != nil && cursor == h.Cursor {
		return h.Origin
	}
	switch v := s.(type) {
	case Line:
		return adjustLine(v, h, cursor)
	case Circle:
		return adjustCircle(v, h, cursor)
	case Ellipse:
		return adjustEllipse(v, h, cursor)
	case Rectangle:
		return adjustRectangle(h, cursor)
	case Square:
		return adjustSquare(h, cursor)
	default:
		panic(fmt.Sprintf("shape: unhandled shape %T", s))
	}
}

// dragged is where the grabbed control point sits for cursor.
func (h Handle) dragged(cursor geom.Point) geom.Point {
	return h.Point.Add(cursor.Sub(h.Cursor))
}

func adjustLine(l Line, h Handle, cursor geom.Point) Line {
	if h.Index == 0 {
		l.Start = h.dragged(cursor)
	} else {
		l.End = h.dragged(cursor)
	}
	return l
}

func adjustCircle(c Circle, h Handle, cursor geom.Point) Circle {
	orig, ok := h.Origin.(Circle)
	if !ok || h.Ref == 0 {
		return c
	}
	c.Radius = orig.Radius * cursor.Distance(c.Center) / h.Ref
	return c
}

func adjustEllipse(e Ellipse, h Handle, cursor geom.Point) Ellipse {
	orig, ok := h.Origin.(Ellipse)
	if !ok || h.Ref == 0 {
		return e
	}
	k := cursor.Distance(e.Center) / h.Ref
	e.RadiusX = orig.RadiusX * k
	e.RadiusY = orig.RadiusY * k
	return e
}

func adjustRectangle(h Handle, cursor geom.Point) Rectangle {
	b := geom.RectFromCorners(h.Fixed, h.dragged(cursor))
	return Rectangle{TopLeft: b.Min(), Width: b.Width, Height: b.Height}
}

func adjustSquare(h Handle, cursor geom.Point) Square {
	p := h.dragged(cursor)
	dx, dy := p.X-h.Fixed.X, p.Y-h.Fixed.Y
	size := math.Max(math.Abs(dx), math.Abs(dy))
	tl := h.Fixed
	if dx < 0 {
		tl.X -= size
	}
	if dy < 0 {
		tl.Y -= size
	}
	return Square{TopLeft: tl, Size: size}
}

// grabCorner returns the index of the box corner nearest to cursor, that
// corner, and the diagonally opposite corner.
func grabCorner(b geom.Rect, cursor geom.Point) (int, geom.Point, geom.Point) {
	corners := b.Corners()
	best := 0
	for i := 1; i < len(corners); i++ {
		if cursor.Distance(corners[i]) < cursor.Distance(corners[best]) {
			best = i
		}
	}
	return best, corners[best], corners[(best+2)%4]
}
