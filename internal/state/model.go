// Package state holds committed strokes and the spatial index over them.
package state

import (
	"InkBoard/internal/geom"
	"InkBoard/internal/ink"
	"InkBoard/internal/shape"
)

// ShapeMetadata is attached to strokes that came from hold-and-snap.
type ShapeMetadata struct {
	ShapeType   shape.Kind       `json:"shape_type"`
	Descriptor  shape.Descriptor `json:"descriptor"`
	HasFill     bool             `json:"has_fill"`
	FillOpacity float64          `json:"fill_opacity"`
}

// Stroke is a committed, immutable run of ink. Only deletion changes the
// board's view of it.
type Stroke struct {
	ID          string         `json:"id"`
	BoardID     string         `json:"board_id"`
	Points      []ink.Point    `json:"points"`
	Style       ink.Style      `json:"style"`
	BoundingBox geom.Rect      `json:"bounding_box"`
	Shape       *ShapeMetadata `json:"shape,omitempty"`
}

// NewStroke assembles a stroke and computes its bounding box, grown by half
// of the widest point so the box covers the painted area.
func NewStroke(id, boardID string, points []ink.Point, style ink.Style, meta *ShapeMetadata) *Stroke {
	return &Stroke{
		ID:          id,
		BoardID:     boardID,
		Points:      points,
		Style:       style,
		BoundingBox: StrokeBounds(points, style.Width),
		Shape:       meta,
	}
}

// StrokeBounds is the box covering points drawn at the given base width.
func StrokeBounds(points []ink.Point, baseWidth float64) geom.Rect {
	half := baseWidth / 2
	for _, p := range points {
		if p.Width/2 > half {
			half = p.Width / 2
		}
	}
	return geom.Bounds(ink.Positions(points)).Inset(half)
}

// Metadata builds shape metadata for a snapped shape.
func Metadata(s shape.Shape, hasFill bool, fillOpacity float64) *ShapeMetadata {
	return &ShapeMetadata{
		ShapeType:   s.Kind(),
		Descriptor:  shape.Descriptor{Shape: s},
		HasFill:     hasFill,
		FillOpacity: fillOpacity,
	}
}

// Points counts the points across strokes.
func Points(strokes []*Stroke) int {
	n := 0
	for _, s := range strokes {
		n += len(s.Points)
	}
	return n
}
