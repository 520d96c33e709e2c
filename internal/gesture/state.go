// Package gesture tracks the single active interaction of one pointer stream.
package gesture

import (
	"InkBoard/internal/geom"
	"InkBoard/internal/input"
)

// Kind tags a State variant.
type Kind int

const (
	KindIdle Kind = iota
	KindDrawing
	KindErasing
	KindSelecting
	KindPanning
)

func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "idle"
	case KindDrawing:
		return "drawing"
	case KindErasing:
		return "erasing"
	case KindSelecting:
		return "selecting"
	case KindPanning:
		return "panning"
	}
	return "unknown"
}

// State is one of Idle, Drawing, Erasing, Selecting or Panning.
type State interface {
	Kind() Kind
}

type Idle struct{}

// Drawing holds the board-space samples of the stroke in progress.
type Drawing struct {
	StartTime float64
	Samples   []input.Sample
}

// Erasing holds the board-space eraser path.
type Erasing struct {
	Samples []input.Sample
}

// Selecting is a marquee in board space.
type Selecting struct {
	Start   geom.Point
	Current geom.Point
}

// Panning tracks screen-space positions, since the board moves under the
// pointer while panning.
type Panning struct {
	Start geom.Point
	Last  geom.Point
}

func (Idle) Kind() Kind       { return KindIdle }
func (*Drawing) Kind() Kind   { return KindDrawing }
func (*Erasing) Kind() Kind   { return KindErasing }
func (*Selecting) Kind() Kind { return KindSelecting }
func (*Panning) Kind() Kind   { return KindPanning }

// Marquee returns the selection box.
func (s *Selecting) Marquee() geom.Rect {
	return geom.RectFromCorners(s.Start, s.Current)
}
