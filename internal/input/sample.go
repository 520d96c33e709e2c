// Package input turns host pointer events into platform-neutral samples.
package input

import (
	"math"
	"sort"

	"InkBoard/internal/geom"
)

// DefaultPressure is reported by devices without a pressure sensor.
const DefaultPressure = 0.5

// Tilt is the stylus tilt in degrees, as reported by the host.
type Tilt struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sample is one pointer reading. Timestamp is monotonic milliseconds.
type Sample struct {
	X         float64
	Y         float64
	Pressure  float64
	Timestamp float64
	Tilt      *Tilt
}

// Pos returns the sample position.
func (s Sample) Pos() geom.Point { return geom.Point{X: s.X, Y: s.Y} }

// Button identifies which pointer button changed state.
type Button int

const (
	ButtonNone Button = iota
	ButtonPrimary
	ButtonSecondary
	ButtonMiddle
)

// IsPan reports whether the button forces a pan gesture regardless of tool.
func (b Button) IsPan() bool {
	return b == ButtonSecondary || b == ButtonMiddle
}

// Event is a host pointer event in screen space. Coalesced holds the
// high-frequency sub-samples the host batched into this event, oldest first;
// it may be empty.
type Event struct {
	X         float64
	Y         float64
	Pressure  float64
	Timestamp float64
	Tilt      *Tilt
	Button    Button
	Coalesced []Sample
}

// Normalize converts an event to the samples it carries, in temporal order.
// When coalesced samples are present they replace the summary reading.
// Pressure is clamped to [0,1] and tilt to [-90,90].
func Normalize(ev Event) []Sample {
	if len(ev.Coalesced) == 0 {
		return []Sample{clean(Sample{
			X: ev.X, Y: ev.Y, Pressure: ev.Pressure, Timestamp: ev.Timestamp, Tilt: ev.Tilt,
		})}
	}
	out := make([]Sample, len(ev.Coalesced))
	for i, s := range ev.Coalesced {
		out[i] = clean(s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// Single returns the summary sample of an event, ignoring coalesced data.
func Single(ev Event) Sample {
	return clean(Sample{X: ev.X, Y: ev.Y, Pressure: ev.Pressure, Timestamp: ev.Timestamp, Tilt: ev.Tilt})
}

func clean(s Sample) Sample {
	s.Pressure = ClampPressure(s.Pressure)
	if s.Tilt != nil {
		t := Tilt{X: clampTilt(s.Tilt.X), Y: clampTilt(s.Tilt.Y)}
		s.Tilt = &t
	}
	return s
}

// ClampPressure maps malformed pressure into [0,1]. NaN becomes DefaultPressure.
func ClampPressure(p float64) float64 {
	if math.IsNaN(p) {
		return DefaultPressure
	}
	return geom.Clamp(p, 0, 1)
}

func clampTilt(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return geom.Clamp(v, -90, 90)
}
