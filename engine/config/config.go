// Package config loads the engine settings from TOML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/render"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
)

// ErrInvalidConfig is returned when a file parses but holds unusable values.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the runtime defaults of the engine.
type Config struct {
	LogLevel        string         `toml:"log_level"`
	MaxDrawCalls    int            `toml:"max_draw_calls"`
	LayoutMask      uint32         `toml:"layout_mask"`
	BackgroundColor [4]float32     `toml:"background_color"`
	LoaderWorkers   int            `toml:"loader_workers"`
	HotReload       bool           `toml:"hot_reload"`
	ZSortTriggers   []ZSortTrigger `toml:"zsort_triggers"`
	Window          Window         `toml:"window"`
}

// ZSortTrigger names a property whose change re-sorts transparent draw calls.
type ZSortTrigger struct {
	Name   string `toml:"name"`
	Source string `toml:"source"`
}

// Window holds the demo window settings.
type Window struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
	MSAA   int    `toml:"msaa"`
}

// Default returns the built-in configuration.
func Default() Config {
	triggers := render.DefaultZSortTriggers()
	zsort := make([]ZSortTrigger, len(triggers))
	for i, t := range triggers {
		zsort[i] = ZSortTrigger{Name: t.Name, Source: t.Source.String()}
	}
	return Config{
		LogLevel:        "info",
		MaxDrawCalls:    renderer.DefaultMaxDrawCalls,
		LayoutMask:      uint32(scene.LayoutVisibleDefault),
		BackgroundColor: [4]float32{0.1, 0.1, 0.1, 1},
		LoaderWorkers:   4,
		ZSortTriggers:   zsort,
		Window: Window{
			Width:  1280,
			Height: 720,
			Title:  "oxy-scene",
			VSync:  true,
			MSAA:   4,
		},
	}
}

// Load overlays the file at path on Default.
//
// Parameters:
//   - path: the TOML file
//
// Returns:
//   - Config: the merged configuration
//   - error: read, decode or validation errors
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse overlays a TOML document on Default. Unknown keys are rejected. A document that
// sets zsort_triggers replaces the whole default list.
//
// Parameters:
//   - b: the TOML document
//
// Returns:
//   - Config: the merged configuration
//   - error: decode or validation errors
func Parse(b []byte) (Config, error) {
	cfg := Default()
	var overlay struct {
		ZSortTriggers *[]ZSortTrigger `toml:"zsort_triggers"`
	}
	if err := toml.Unmarshal(b, &overlay); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if overlay.ZSortTriggers != nil {
		cfg.ZSortTriggers = nil
	}

	dec := toml.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every value a component would reject.
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.MaxDrawCalls <= 0 {
		return fmt.Errorf("%w: max_draw_calls must be positive, got %d", ErrInvalidConfig, c.MaxDrawCalls)
	}
	if c.LoaderWorkers <= 0 {
		return fmt.Errorf("%w: loader_workers must be positive, got %d", ErrInvalidConfig, c.LoaderWorkers)
	}
	if _, err := c.Triggers(); err != nil {
		return err
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size must be positive, got %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	switch c.Window.MSAA {
	case 1, 4, 8, 16:
	default:
		return fmt.Errorf("%w: msaa must be 1, 4, 8 or 16, got %d", ErrInvalidConfig, c.Window.MSAA)
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err)
	}
	return level, nil
}

// Triggers converts ZSortTriggers for render.WithZSortTriggers.
func (c Config) Triggers() ([]render.ZSortTrigger, error) {
	out := make([]render.ZSortTrigger, 0, len(c.ZSortTriggers))
	for _, t := range c.ZSortTriggers {
		if t.Name == "" {
			return nil, fmt.Errorf("%w: zsort trigger without a name", ErrInvalidConfig)
		}
		src, ok := data.ParseSource(t.Source)
		if !ok {
			return nil, fmt.Errorf("%w: zsort trigger %s: unknown source %q", ErrInvalidConfig, t.Name, t.Source)
		}
		out = append(out, render.ZSortTrigger{Name: t.Name, Source: src})
	}
	return out, nil
}

// Mask returns LayoutMask as a scene layout.
func (c Config) Mask() scene.Layout {
	return scene.Layout(c.LayoutMask)
}

// Apply installs a text slog handler on w at the configured level as the default logger.
//
// Parameters:
//   - w: the log destination, usually os.Stderr
//
// Returns:
//   - error: an error if LogLevel is not a slog level name
func (c Config) Apply(w io.Writer) error {
	level, err := c.Level()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return nil
}

// RendererOptions returns the renderer options the configuration controls.
func (c Config) RendererOptions() ([]renderer.RendererBuilderOption, error) {
	triggers, err := c.Triggers()
	if err != nil {
		return nil, err
	}
	return []renderer.RendererBuilderOption{
		renderer.WithLayoutMask(c.Mask()),
		renderer.WithClearColor(c.BackgroundColor),
		renderer.WithZSortTriggers(triggers),
		renderer.WithMaxDrawCalls(c.MaxDrawCalls),
	}, nil
}
