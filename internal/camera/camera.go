// Package camera maps between screen space and board space.
//
// A board point b appears on screen at b*Scale + Pan.
package camera

import (
	"InkBoard/internal/geom"
)

const (
	DefaultMinScale = 0.1
	DefaultMaxScale = 8.0
)

// Size is a viewport extent in screen units.
type Size struct {
	Width  float64
	Height float64
}

// State is the camera's full mutable state.
type State struct {
	Pan      geom.Point
	Scale    float64
	Viewport Size
}

// Camera owns pan, zoom and viewport. It is not safe for concurrent use;
// the owning session serializes access.
type Camera struct {
	state    State
	minScale float64
	maxScale float64
}

// New returns a camera at the origin with scale 1.
func New(viewport Size) *Camera {
	return &Camera{
		state:    State{Scale: 1, Viewport: viewport},
		minScale: DefaultMinScale,
		maxScale: DefaultMaxScale,
	}
}

// SetScaleLimits bounds future zoom operations. Non-positive or inverted
// limits are ignored.
func (c *Camera) SetScaleLimits(min, max float64) {
	if min <= 0 || max < min {
		return
	}
	c.minScale, c.maxScale = min, max
	c.state.Scale = geom.Clamp(c.state.Scale, min, max)
}

// State returns a copy of the current camera state.
func (c *Camera) State() State { return c.state }

// Scale returns the current zoom factor.
func (c *Camera) Scale() float64 { return c.state.Scale }

// ScreenToBoard applies the inverse camera transform.
func (c *Camera) ScreenToBoard(p geom.Point) geom.Point {
	return geom.Point{
		X: (p.X - c.state.Pan.X) / c.state.Scale,
		Y: (p.Y - c.state.Pan.Y) / c.state.Scale,
	}
}

// BoardToScreen applies the forward camera transform.
func (c *Camera) BoardToScreen(p geom.Point) geom.Point {
	return geom.Point{
		X: p.X*c.state.Scale + c.state.Pan.X,
		Y: p.Y*c.state.Scale + c.state.Pan.Y,
	}
}

// Pan moves the view by a screen-space delta.
func (c *Camera) Pan(dx, dy float64) {
	c.state.Pan.X += dx
	c.state.Pan.Y += dy
}

// ZoomAt multiplies the scale by factor while keeping the board point under
// the screen point anchor fixed. The resulting scale is clamped to the
// camera's limits.
func (c *Camera) ZoomAt(anchor geom.Point, factor float64) {
	if factor <= 0 {
		return
	}
	b := c.ScreenToBoard(anchor)
	c.state.Scale = geom.Clamp(c.state.Scale*factor, c.minScale, c.maxScale)
	c.state.Pan = geom.Point{
		X: anchor.X - b.X*c.state.Scale,
		Y: anchor.Y - b.Y*c.state.Scale,
	}
}

// SetViewport changes the visible extent without touching pan or scale.
func (c *Camera) SetViewport(size Size) {
	c.state.Viewport = size
}

// Reset returns to the origin at scale 1, keeping the viewport.
func (c *Camera) Reset() {
	c.state.Pan = geom.Point{}
	c.state.Scale = 1
}

// VisibleRect is the board-space box currently on screen.
func (c *Camera) VisibleRect() geom.Rect {
	return geom.RectFromCorners(
		c.ScreenToBoard(geom.Point{}),
		c.ScreenToBoard(geom.Point{X: c.state.Viewport.Width, Y: c.state.Viewport.Height}),
	)
}
