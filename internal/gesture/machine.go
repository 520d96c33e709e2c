package gesture

import (
	"InkBoard/internal/geom"
	"InkBoard/internal/input"
	"InkBoard/internal/tool"
)

// Pointer is one routed pointer reading: the board-space sample and the
// screen position it came from.
type Pointer struct {
	Sample input.Sample
	Screen geom.Point
}

// Machine owns the gesture state of one pointer stream. Transitions are
// total: events that do not apply to the current state are ignored.
type Machine struct {
	tools *tool.Registry
	tool  tool.ID
	state State
}

// NewMachine starts idle with the given tool selected.
func NewMachine(tools *tool.Registry, initial tool.ID) *Machine {
	return &Machine{tools: tools, tool: initial, state: Idle{}}
}

// State returns the active state.
func (m *Machine) State() State { return m.state }

// Tool returns the selected tool.
func (m *Machine) Tool() tool.ID { return m.tool }

// OnPointerDown starts a gesture from idle. A pan button overrides the tool.
func (m *Machine) OnPointerDown(p Pointer, panButton bool) {
	if m.state.Kind() != KindIdle {
		return
	}
	kind := m.tools.KindOf(m.tool)
	if panButton {
		kind = tool.KindNavigation
	}
	switch kind {
	case tool.KindInking:
		m.state = &Drawing{StartTime: p.Sample.Timestamp, Samples: []input.Sample{p.Sample}}
	case tool.KindEraser:
		m.state = &Erasing{Samples: []input.Sample{p.Sample}}
	case tool.KindSelection:
		m.state = &Selecting{Start: p.Sample.Pos(), Current: p.Sample.Pos()}
	default:
		m.state = &Panning{Start: p.Screen, Last: p.Screen}
	}
}

// OnPointerMove extends the active gesture.
func (m *Machine) OnPointerMove(p Pointer) {
	switch s := m.state.(type) {
	case *Drawing:
		s.Samples = append(s.Samples, p.Sample)
	case *Erasing:
		s.Samples = append(s.Samples, p.Sample)
	case *Selecting:
		s.Current = p.Sample.Pos()
	case *Panning:
		s.Last = p.Screen
	}
}

// OnPointerUp ends the gesture, resets to idle and returns the completed
// state for the caller to consume.
func (m *Machine) OnPointerUp(p Pointer) State {
	m.OnPointerMove(p)
	done := m.state
	m.state = Idle{}
	return done
}

// Cancel discards the active gesture and returns it.
func (m *Machine) Cancel() State {
	done := m.state
	m.state = Idle{}
	return done
}

// SetTool selects a tool, discarding any active gesture without committing it.
func (m *Machine) SetTool(id tool.ID) {
	m.Cancel()
	m.tool = id
}
