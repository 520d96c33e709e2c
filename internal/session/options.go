package session

import (
	"context"

	"InkBoard/internal/aid"
	"InkBoard/internal/camera"
	"InkBoard/internal/config"
	"InkBoard/internal/shape"
	"InkBoard/internal/state"
	"InkBoard/internal/tool"
)

// Persistence receives committed changes. Implementations must not block:
// the session never waits for acknowledgement.
type Persistence interface {
	CreateStroke(ctx context.Context, s *state.Stroke) error
	DeleteStrokes(ctx context.Context, boardID string, ids []string) error
}

type offline struct{}

func (offline) CreateStroke(context.Context, *state.Stroke) error     { return nil }
func (offline) DeleteStrokes(context.Context, string, []string) error { return nil }

// Options configures a session.
type Options struct {
	BoardID      string
	Tools        *tool.Registry
	Tool         tool.ID
	Color        string
	Recognizer   shape.Config
	Aid          aid.Config
	EraserRadius float64
	WheelFactor  float64
	MinScale     float64
	MaxScale     float64
	Viewport     camera.Size
}

// DefaultOptions returns the stock settings with the pen selected.
func DefaultOptions() Options {
	return FromConfig(config.Default())
}

// FromConfig maps a loaded configuration onto session options.
func FromConfig(cfg config.Config) Options {
	return Options{
		BoardID:      cfg.Server.BoardID,
		Tools:        cfg.Registry(),
		Tool:         tool.Pen,
		Color:        cfg.Color,
		Recognizer:   cfg.Recognizer,
		Aid:          cfg.Aid,
		EraserRadius: cfg.Eraser.Radius,
		WheelFactor:  cfg.Camera.WheelFactor,
		MinScale:     cfg.Camera.MinScale,
		MaxScale:     cfg.Camera.MaxScale,
		Viewport:     camera.Size{Width: 1280, Height: 800},
	}
}
