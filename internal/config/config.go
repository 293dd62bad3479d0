// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Cursor kinds.
const (
	CursorTile    = "tile"
	CursorQuarter = "quarter"
	CursorNone    = "none"
)

// Validation errors.
var (
	ErrInvalidWindowSize = errors.New("window size must be positive")
	ErrInvalidCursor     = errors.New("unknown cursor kind")
	ErrInvalidScroll     = errors.New("scroll margin and step must not be negative")
)

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig        `yaml:"window"`
	View    ViewConfig          `yaml:"view"`
	Map     MapConfig           `yaml:"map"`
	Keys    map[string][]string `yaml:"keys"` // action -> key names, layered over the defaults
	Logging LoggingConfig       `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	FPSLimit   int    `yaml:"fps_limit"`
}

// ViewConfig holds map viewer settings.
type ViewConfig struct {
	ScrollMargin float64 `yaml:"scroll_margin"`
	ScrollStep   float64 `yaml:"scroll_step"`
	PhaseModulus int     `yaml:"phase_modulus"`
	Cursor       string  `yaml:"cursor"`
	ShowObjects  bool    `yaml:"show_objects"`
	ShowHover    bool    `yaml:"show_hover"`
}

// MapConfig selects the map to open.
type MapConfig struct {
	Path      string   `yaml:"path"`
	AssetDirs []string `yaml:"asset_dirs"`
	FocusX    int      `yaml:"focus_x"` // negative centres the map
	FocusY    int      `yaml:"focus_y"`
	Fog       bool     `yaml:"fog"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "isomap",
			Width:      1024,
			Height:     768,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   60,
		},
		View: ViewConfig{
			ScrollMargin: 20,
			ScrollStep:   12,
			PhaseModulus: 600,
			Cursor:       CursorTile,
			ShowObjects:  true,
		},
		Map: MapConfig{
			AssetDirs: []string{"assets"},
			FocusX:    -1,
			FocusY:    -1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidWindowSize, c.Window.Width, c.Window.Height)
	}
	switch c.View.Cursor {
	case CursorTile, CursorQuarter, CursorNone:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCursor, c.View.Cursor)
	}
	if c.View.ScrollMargin < 0 || c.View.ScrollStep < 0 {
		return ErrInvalidScroll
	}
	return nil
}
