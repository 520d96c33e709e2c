// Package render draws board strokes onto interchangeable surfaces.
//
// The session only talks to the Renderer interface; which surface sits
// behind it is decided once by New.
package render

import (
	"math"

	"InkBoard/internal/camera"
	"InkBoard/internal/geom"
	"InkBoard/internal/ink"
	"InkBoard/internal/logging"
	"InkBoard/internal/state"
)

// Transform maps board space to surface space: (p + Offset) * Scale + Pan.
type Transform struct {
	Pan    geom.Point
	Scale  float64
	Offset geom.Point
}

// Identity leaves board coordinates unchanged.
var Identity = Transform{Scale: 1}

// FromCamera builds the transform of a camera with no board offset.
func FromCamera(s camera.State) Transform {
	return Transform{Pan: s.Pan, Scale: s.Scale}
}

// Apply maps a board point to the surface.
func (t Transform) Apply(p geom.Point) geom.Point {
	return p.Add(t.Offset).Mul(t.Scale).Add(t.Pan)
}

// Fit returns the transform that centers bounds inside a w×h surface with
// the given margin, never magnifying beyond 1:1.
func Fit(bounds geom.Rect, w, h, margin float64) Transform {
	aw, ah := w-2*margin, h-2*margin
	scale := 1.0
	if bounds.Width > 0 && aw > 0 {
		scale = math.Min(scale, aw/bounds.Width)
	}
	if bounds.Height > 0 && ah > 0 {
		scale = math.Min(scale, ah/bounds.Height)
	}
	c := bounds.Center()
	return Transform{
		Offset: geom.Point{X: -c.X, Y: -c.Y},
		Scale:  scale,
		Pan:    geom.Point{X: w / 2, Y: h / 2},
	}
}

// Renderer is a drawing surface. Implementations keep whatever they need
// to redraw; callers push state changes and never branch on the surface.
type Renderer interface {
	Name() string
	ApplyTransform(t Transform)
	RenderStrokes(strokes []*state.Stroke)
	// SetActiveStroke shows the in-progress stroke on top of the committed
	// ones. Empty points clear it.
	SetActiveStroke(points []ink.Point, style ink.Style)
}

// Capabilities describes the environment at startup.
type Capabilities struct {
	Display bool
	Width   int
	Height  int
}

// New picks the retained scene when a display is available and the
// raster surface otherwise.
func New(c Capabilities) Renderer {
	var r Renderer
	if c.Display {
		r = NewScene()
	} else {
		w, h := c.Width, c.Height
		if w <= 0 || h <= 0 {
			w, h = 1280, 800
		}
		r = NewRaster(w, h)
	}
	logging.For("render").Info("renderer selected", "name", r.Name(), "display", c.Display)
	return r
}

// strokeWidth is the surface width of the segment from a to b.
func strokeWidth(a, b ink.Point, base, scale float64) float64 {
	wa, wb := a.Width, b.Width
	if wa <= 0 {
		wa = base
	}
	if wb <= 0 {
		wb = base
	}
	return (wa + wb) / 2 * scale
}

func project(points []ink.Point, t Transform) []geom.Point {
	out := make([]geom.Point, len(points))
	for i, p := range points {
		out[i] = t.Apply(p.Pos())
	}
	return out
}

// unionBounds is the box covering every stroke.
func unionBounds(strokes []*state.Stroke) (geom.Rect, bool) {
	if len(strokes) == 0 {
		return geom.Rect{}, false
	}
	b := strokes[0].BoundingBox
	for _, s := range strokes[1:] {
		b = b.Union(s.BoundingBox)
	}
	return b, true
}
