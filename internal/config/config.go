// Package config loads board settings from TOML.
package config

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"

	"InkBoard/internal/aid"
	"InkBoard/internal/ink"
	"InkBoard/internal/logging"
	"InkBoard/internal/shape"
	"InkBoard/internal/tool"
)

var ErrInvalid = errors.New("invalid config")

type Camera struct {
	MinScale    float64 `toml:"min_scale"`
	MaxScale    float64 `toml:"max_scale"`
	WheelFactor float64 `toml:"wheel_factor"`
}

type Eraser struct {
	Radius float64 `toml:"radius"`
}

type Server struct {
	Port    int    `toml:"port"`
	BoardID string `toml:"board_id"`
	Name    string `toml:"name"`
}

// Tool overrides the stock settings of one tool. Fields left out of the
// file keep the stock value.
type Tool struct {
	Width   float64            `toml:"width"`
	Opacity float64            `toml:"opacity"`
	Ink     ink.BehaviorConfig `toml:"ink"`
}

type Config struct {
	Color      string           `toml:"color"`
	Recognizer shape.Config     `toml:"recognizer"`
	Aid        aid.Config       `toml:"aid"`
	Camera     Camera           `toml:"camera"`
	Eraser     Eraser           `toml:"eraser"`
	Server     Server           `toml:"server"`
	Tools      map[tool.ID]Tool `toml:"-"`
}

// Default returns the stock configuration.
func Default() Config {
	reg := tool.DefaultRegistry()
	tools := make(map[tool.ID]Tool)
	for _, id := range reg.IDs() {
		s, _ := reg.Lookup(id)
		if s.Kind == tool.KindInking {
			tools[id] = Tool{Width: s.Width, Opacity: s.Opacity, Ink: s.Ink}
		}
	}
	return Config{
		Color:      "#1e1e1e",
		Recognizer: shape.DefaultConfig(),
		Aid:        aid.DefaultConfig(),
		Camera:     Camera{MinScale: 0.1, MaxScale: 8, WheelFactor: 1.1},
		Eraser:     Eraser{Radius: 8},
		Server:     Server{Port: 8888, BoardID: "main", Name: "InkBoard"},
		Tools:      tools,
	}
}

type file struct {
	Config
	Tools map[string]toml.Primitive `toml:"tools"`
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	f := file{Config: Default()}
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return finish(f, md, path)
}

// Parse decodes a TOML document over the defaults.
func Parse(doc string) (Config, error) {
	f := file{Config: Default()}
	md, err := toml.Decode(doc, &f)
	if err != nil {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	return finish(f, md, "")
}

func finish(f file, md toml.MetaData, src string) (Config, error) {
	cfg := f.Config
	for name, prim := range f.Tools {
		id := tool.ID(name)
		t, ok := cfg.Tools[id]
		if !ok {
			return Config{}, fmt.Errorf("%w: tools.%s is not an inking tool", ErrInvalid, name)
		}
		if err := md.PrimitiveDecode(prim, &t); err != nil {
			return Config{}, fmt.Errorf("decode tools.%s: %w", name, err)
		}
		cfg.Tools[id] = t
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		logging.For("config").Warn("ignoring unknown keys", "source", src, "keys", fmt.Sprint(keys))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first out-of-range setting.
func (c Config) Validate() error {
	r := c.Recognizer
	if r.MinPoints < 2 || r.MaxDuration <= 0 {
		return fmt.Errorf("%w: recognizer needs min_points >= 2 and a positive max_duration_ms", ErrInvalid)
	}
	if r.ClosedRatio <= 0 || r.OpenRatio < r.ClosedRatio {
		return fmt.Errorf("%w: closure ratios closed=%v open=%v", ErrInvalid, r.ClosedRatio, r.OpenRatio)
	}
	for name, v := range map[string]float64{
		"line_threshold":        r.LineThreshold,
		"line_short_circuit_r2": r.LineShortCircuitR2,
		"circle_threshold":      r.CircleThreshold,
		"rectangle_threshold":   r.RectangleThreshold,
		"ellipse_penalty":       r.EllipsePenalty,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: recognizer.%s %v outside [0,1]", ErrInvalid, name, v)
		}
	}
	if r.EllipseMinAspect < 1 || r.EllipseMaxAspect < r.EllipseMinAspect {
		return fmt.Errorf("%w: ellipse aspect range [%v, %v]", ErrInvalid, r.EllipseMinAspect, r.EllipseMaxAspect)
	}
	if r.SquareMinAspect <= 0 || r.SquareMaxAspect < r.SquareMinAspect {
		return fmt.Errorf("%w: square aspect range [%v, %v]", ErrInvalid, r.SquareMinAspect, r.SquareMaxAspect)
	}

	a := c.Aid
	if a.HoldMS <= 0 || a.PollMS <= 0 || a.VelocityWindowMS <= 0 {
		return fmt.Errorf("%w: aid intervals must be positive", ErrInvalid)
	}
	if a.BufferMS < a.VelocityWindowMS {
		return fmt.Errorf("%w: aid buffer_ms %v shorter than velocity_window_ms %v", ErrInvalid, a.BufferMS, a.VelocityWindowMS)
	}
	if a.VelocityThreshold <= 0 || a.Segments < 4 {
		return fmt.Errorf("%w: aid velocity_threshold must be positive and segments >= 4", ErrInvalid)
	}

	if c.Camera.MinScale <= 0 || c.Camera.MaxScale < c.Camera.MinScale {
		return fmt.Errorf("%w: camera scale range [%v, %v]", ErrInvalid, c.Camera.MinScale, c.Camera.MaxScale)
	}
	if c.Camera.WheelFactor <= 1 {
		return fmt.Errorf("%w: camera wheel_factor must exceed 1", ErrInvalid)
	}
	if c.Eraser.Radius <= 0 {
		return fmt.Errorf("%w: eraser radius must be positive", ErrInvalid)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d", ErrInvalid, c.Server.Port)
	}
	if c.Server.BoardID == "" {
		return fmt.Errorf("%w: server board_id is empty", ErrInvalid)
	}
	for id, t := range c.Tools {
		if t.Width <= 0 || t.Opacity <= 0 || t.Opacity > 1 {
			return fmt.Errorf("%w: tools.%s width %v opacity %v", ErrInvalid, id, t.Width, t.Opacity)
		}
		if err := t.Ink.Validate(); err != nil {
			return fmt.Errorf("%w: tools.%s: %v", ErrInvalid, id, err)
		}
	}
	return nil
}

// Registry returns the stock tool registry with the configured overrides
// applied.
func (c Config) Registry() *tool.Registry {
	reg := tool.DefaultRegistry()
	for id, t := range c.Tools {
		s, err := reg.Lookup(id)
		if err != nil {
			continue
		}
		s.Width, s.Opacity, s.Ink = t.Width, t.Opacity, t.Ink
		reg.Register(s)
	}
	return reg
}
