package input

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// FromMouseEvent converts a fyne desktop mouse event. Mice have no pressure
// sensor so DefaultPressure is reported.
func FromMouseEvent(e *desktop.MouseEvent, timestamp float64) Event {
	return Event{
		X:         float64(e.Position.X),
		Y:         float64(e.Position.Y),
		Pressure:  DefaultPressure,
		Timestamp: timestamp,
		Button:    fromDesktopButton(e.Button),
	}
}

// FromDragEvent converts a fyne drag event. Drags only fire with the primary
// button held.
func FromDragEvent(e *fyne.DragEvent, timestamp float64) Event {
	return Event{
		X:         float64(e.Position.X),
		Y:         float64(e.Position.Y),
		Pressure:  DefaultPressure,
		Timestamp: timestamp,
		Button:    ButtonPrimary,
	}
}

// FromPosition builds an event for a bare fyne position, used for hover moves.
func FromPosition(p fyne.Position, timestamp float64) Event {
	return Event{X: float64(p.X), Y: float64(p.Y), Pressure: DefaultPressure, Timestamp: timestamp}
}

func fromDesktopButton(b desktop.MouseButton) Button {
	switch {
	case b&desktop.MouseButtonPrimary != 0:
		return ButtonPrimary
	case b&desktop.MouseButtonSecondary != 0:
		return ButtonSecondary
	case b&desktop.MouseButtonTertiary != 0:
		return ButtonMiddle
	}
	return ButtonNone
}
