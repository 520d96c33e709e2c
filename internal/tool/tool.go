// Package tool describes the drawing tools and what each one permits.
package tool

import (
	"fmt"
	"sort"

	"InkBoard/internal/ink"
	"InkBoard/internal/shape"
)

// ID names a tool.
type ID string

const (
	Pen         ID = "pen"
	Pencil      ID = "pencil"
	Brush       ID = "brush"
	Highlighter ID = "highlighter"
	Marker      ID = "marker"
	Eraser      ID = "eraser"
	Select      ID = "select"
	Pan         ID = "pan"
)

// Kind is the gesture family a tool starts on pointer-down.
type Kind int

const (
	KindInking Kind = iota
	KindEraser
	KindSelection
	KindNavigation
)

func (k Kind) String() string {
	switch k {
	case KindInking:
		return "inking"
	case KindEraser:
		return "eraser"
	case KindSelection:
		return "selection"
	case KindNavigation:
		return "navigation"
	}
	return "unknown"
}

// Spec is everything the board needs to know about a tool.
type Spec struct {
	ID       ID
	Kind     Kind
	Ink      ink.BehaviorConfig
	Width    float64
	Opacity  float64
	Shapes   shape.Kinds
	AidByDef bool
}

// Registry maps tool ids to specs.
type Registry struct {
	specs map[ID]Spec
}

// DefaultRegistry returns the stock tool set. Pen-class tools may snap to
// every primitive; highlighter and marker only to lines.
func DefaultRegistry() *Registry {
	pen := ink.DefaultBehavior()

	pencil := ink.DefaultBehavior()
	pencil.Pressure.Curve = ink.CurveLinear
	pencil.Pressure.MaxWidth = 1.5
	pencil.Smoothing = ink.Smoothing{Algorithm: ink.SmoothingNone}

	brush := ink.DefaultBehavior()
	brush.Pressure.Curve = ink.CurveEaseInOut
	brush.Pressure.Sensitivity = 0.9
	brush.Pressure.MaxWidth = 3
	brush.Smoothing = ink.Smoothing{Algorithm: ink.SmoothingMovingAverage, Window: 5}

	flat := ink.DefaultBehavior()
	flat.Pressure.Curve = ink.CurveConstant
	flat.Velocity.Enabled = false
	flat.Distribution.Algorithm = ink.DistributionDistance

	r := &Registry{specs: make(map[ID]Spec)}
	r.Register(Spec{ID: Pen, Kind: KindInking, Ink: pen, Width: 2, Opacity: 1, Shapes: shape.AllowAll, AidByDef: true})
	r.Register(Spec{ID: Pencil, Kind: KindInking, Ink: pencil, Width: 1.5, Opacity: 0.9, Shapes: shape.AllowAll, AidByDef: true})
	r.Register(Spec{ID: Brush, Kind: KindInking, Ink: brush, Width: 6, Opacity: 1, Shapes: shape.AllowAll, AidByDef: true})
	r.Register(Spec{ID: Highlighter, Kind: KindInking, Ink: flat, Width: 16, Opacity: 0.4, Shapes: shape.Only(shape.KindLine), AidByDef: true})
	r.Register(Spec{ID: Marker, Kind: KindInking, Ink: flat, Width: 8, Opacity: 1, Shapes: shape.Only(shape.KindLine), AidByDef: true})
	r.Register(Spec{ID: Eraser, Kind: KindEraser})
	r.Register(Spec{ID: Select, Kind: KindSelection})
	r.Register(Spec{ID: Pan, Kind: KindNavigation})
	return r
}

// Register adds or replaces a tool.
func (r *Registry) Register(s Spec) {
	r.specs[s.ID] = s
}

// Lookup returns the spec for id.
func (r *Registry) Lookup(id ID) (Spec, error) {
	s, ok := r.specs[id]
	if !ok {
		return Spec{}, fmt.Errorf("unknown tool %q", id)
	}
	return s, nil
}

// KindOf returns the gesture family of id. Unknown tools navigate, which
// never writes to the board.
func (r *Registry) KindOf(id ID) Kind {
	if s, ok := r.specs[id]; ok {
		return s.Kind
	}
	return KindNavigation
}

// IDs lists registered tools in a stable order.
func (r *Registry) IDs() []ID {
	ids := make([]ID, 0, len(r.specs))
	for id := range r.specs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
