package shape

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InkBoard/internal/ink"
)

func circleStroke(cx, cy, r float64, n int) []ink.Point {
	pts := make([]ink.Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = ink.Point{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a), Pressure: 0.5, T: float64(i) * 20}
	}
	return pts
}

// boxStroke walks the perimeter clockwise from the top-left corner.
func boxStroke(x, y, w, h float64, n int) []ink.Point {
	perim := 2 * (w + h)
	pts := make([]ink.Point, n)
	for i := range pts {
		d := perim * float64(i) / float64(n)
		var px, py float64
		switch {
		case d < w:
			px, py = x+d, y
		case d < w+h:
			px, py = x+w, y+d-w
		case d < 2*w+h:
			px, py = x+w-(d-w-h), y+h
		default:
			px, py = x, y+h-(d-2*w-h)
		}
		pts[i] = ink.Point{X: px, Y: py, Pressure: 0.5, T: float64(i) * 20}
	}
	return pts
}

func lineStroke(x0, y0, x1, y1 float64, n int) []ink.Point {
	pts := make([]ink.Point, n)
	for i := range pts {
		t := float64(i) / float64(n-1)
		pts[i] = ink.Point{X: x0 + (x1-x0)*t, Y: y0 + (y1-y0)*t, T: float64(i) * 10}
	}
	return pts
}

func TestRecognizePerfectCircle(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	for _, n := range []int{20, 32, 100} {
		m, ok := r.Recognize(circleStroke(300, 200, 80, n), AllowAll)
		require.True(t, ok, "n=%d", n)
		require.Equal(t, KindCircle, m.Shape.Kind(), "n=%d", n)
		assert.GreaterOrEqual(t, m.Confidence, 0.75)

		c := m.Shape.(Circle)
		assert.InDelta(t, 300, c.Center.X, 1e-6)
		assert.InDelta(t, 200, c.Center.Y, 1e-6)
		assert.InDelta(t, 80, c.Radius, 1e-6)
	}
}

func TestRecognizeRectangleAndSquare(t *testing.T) {
	r := NewRecognizer(DefaultConfig())

	m, ok := r.Recognize(boxStroke(10, 20, 200, 100, 40), AllowAll)
	require.True(t, ok)
	require.Equal(t, KindRectangle, m.Shape.Kind())
	assert.GreaterOrEqual(t, m.Confidence, 0.7)
	rect := m.Shape.(Rectangle)
	assert.InDelta(t, 10, rect.TopLeft.X, 1e-9)
	assert.InDelta(t, 20, rect.TopLeft.Y, 1e-9)

	m, ok = r.Recognize(boxStroke(0, 0, 100, 100, 40), AllowAll)
	require.True(t, ok)
	require.Equal(t, KindSquare, m.Shape.Kind())
	assert.GreaterOrEqual(t, m.Confidence, 0.7)
	assert.InDelta(t, 100, m.Shape.(Square).Size, 2)
}

func TestRecognizeSquareFallsBackToRectangleWhenSquareDisallowed(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	m, ok := r.Recognize(boxStroke(0, 0, 100, 100, 40), AllowAll&^AllowSquare)
	require.True(t, ok)
	assert.Equal(t, KindRectangle, m.Shape.Kind())
}

func TestRecognizeEllipse(t *testing.T) {
	n := 48
	pts := make([]ink.Point, n)
	rot := 0.4
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		x, y := 120*math.Cos(a), 60*math.Sin(a)
		pts[i] = ink.Point{
			X: 500 + x*math.Cos(rot) - y*math.Sin(rot),
			Y: 500 + x*math.Sin(rot) + y*math.Cos(rot),
			T: float64(i) * 15,
		}
	}
	m, ok := NewRecognizer(DefaultConfig()).Recognize(pts, AllowAll)
	require.True(t, ok)
	require.Equal(t, KindEllipse, m.Shape.Kind())
	e := m.Shape.(Ellipse)
	assert.InDelta(t, 120, e.RadiusX, 1)
	assert.InDelta(t, 60, e.RadiusY, 1)
	assert.InDelta(t, rot, e.Rotation, 1e-3)
	assert.InDelta(t, 0.9, m.Confidence, 1e-3)
}

func TestTwoPointLineShortCircuit(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	pts := []ink.Point{{X: 0, Y: 0}, {X: 150, Y: 0, T: 30}}
	m, ok := r.Recognize(pts, AllowAll)
	require.True(t, ok)
	assert.Equal(t, KindLine, m.Shape.Kind())

	diag := []ink.Point{{X: 10, Y: 10}, {X: 116.07, Y: 116.07, T: 30}}
	m, ok = r.Recognize(diag, AllowAll)
	require.True(t, ok)
	assert.Equal(t, KindLine, m.Shape.Kind())
}

func TestRecognizeNoisyLine(t *testing.T) {
	pts := lineStroke(0, 0, 80, 40, 30)
	for i := range pts {
		if i%2 == 1 {
			pts[i].Y += 0.5
		}
	}
	m, ok := NewRecognizer(DefaultConfig()).Recognize(pts, AllowAll)
	require.True(t, ok)
	assert.Equal(t, KindLine, m.Shape.Kind())
	assert.GreaterOrEqual(t, m.Confidence, 0.95)
}

func TestRecognizeGuards(t *testing.T) {
	r := NewRecognizer(DefaultConfig())

	_, ok := r.Recognize(circleStroke(0, 0, 50, 8), AllowAll)
	assert.False(t, ok, "too few points")

	slow := circleStroke(0, 0, 50, 40)
	for i := range slow {
		slow[i].T = float64(i) * 200
	}
	_, ok = r.Recognize(slow, AllowAll)
	assert.False(t, ok, "too slow to be deliberate")

	_, ok = r.Recognize(circleStroke(0, 0, 50, 40), Only(KindLine))
	assert.False(t, ok, "circle not permitted")

	_, ok = r.Recognize(nil, AllowAll)
	assert.False(t, ok)

	same := make([]ink.Point, 20)
	_, ok = r.Recognize(same, AllowAll)
	assert.False(t, ok, "degenerate stroke")
}

func TestOpenArcIsNotAClosedShape(t *testing.T) {
	n := 30
	pts := make([]ink.Point, n)
	for i := range pts {
		a := math.Pi * float64(i) / float64(n-1)
		pts[i] = ink.Point{X: 45 * math.Cos(a), Y: 45 * math.Sin(a), T: float64(i) * 10}
	}
	_, ok := NewRecognizer(DefaultConfig()).Recognize(pts, AllowAll)
	assert.False(t, ok)
}

func TestDegenerateFits(t *testing.T) {
	c, q := FitCircle(nil)
	assert.Equal(t, 0.0, c.Radius)
	assert.Equal(t, 0.0, q)

	e, q, _ := FitEllipse(ink.Positions(lineStroke(0, 0, 1, 1, 2)))
	assert.Equal(t, 0.0, e.RadiusX)
	assert.Equal(t, 0.0, q)

	l, r2 := FitLine(ink.Positions([]ink.Point{{X: 3, Y: 3}, {X: 3, Y: 3}}))
	assert.Equal(t, l.Start, l.End)
	assert.Equal(t, 0.0, r2)

	rect, q := FitRectangle(nil)
	assert.Equal(t, Rectangle{}, rect)
	assert.Equal(t, 0.0, q)
}
