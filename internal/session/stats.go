package session

import (
	"time"

	"InkBoard/internal/aid"
	"InkBoard/internal/gesture"
	"InkBoard/internal/state"
	"InkBoard/internal/tool"
)

// Stats is the diagnostics view of a session. Nothing in it is needed for
// correct drawing.
type Stats struct {
	Frame      time.Duration
	Strokes    int
	Visible    int
	Points     int
	LivePoints int
	Gesture    gesture.Kind
	Tool       tool.ID
	Aid        aid.Debug
	Renderer   string
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() Stats {
	all := s.board.All()
	st := Stats{
		Frame:    s.lastFrame,
		Strokes:  len(all),
		Visible:  s.visible,
		Points:   state.Points(all),
		Gesture:  s.Gesture(),
		Tool:     s.Tool(),
		Aid:      s.detector.Debug(),
		Renderer: s.renderer.Name(),
	}
	if s.engine != nil && s.engine.Active() {
		st.LivePoints = len(s.engine.Points())
	}
	if st.Aid.Phase == aid.PhaseAdjusting {
		st.LivePoints = len(s.detector.Preview())
	}
	return st
}
