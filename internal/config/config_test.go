package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test window defaults
	if cfg.Window.Width != 1024 {
		t.Errorf("expected width 1024, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 768 {
		t.Errorf("expected height 768, got %d", cfg.Window.Height)
	}
	if cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Window.VSync {
		t.Error("expected vsync to be true by default")
	}

	// Test view defaults
	if cfg.View.ScrollMargin != 20 {
		t.Errorf("expected scroll margin 20, got %f", cfg.View.ScrollMargin)
	}
	if cfg.View.Cursor != CursorTile {
		t.Errorf("expected tile cursor, got %s", cfg.View.Cursor)
	}
	if !cfg.View.ShowObjects {
		t.Error("expected objects to be shown by default")
	}

	// Test map defaults
	if cfg.Map.FocusX != -1 || cfg.Map.FocusY != -1 {
		t.Errorf("expected centred focus, got (%d, %d)", cfg.Map.FocusX, cfg.Map.FocusY)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  title: "harbour"
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  fps_limit: 144

view:
  scroll_margin: 32
  scroll_step: 8
  phase_modulus: 120
  cursor: quarter
  show_objects: false

map:
  path: "maps/harbour.tmj"
  asset_dirs: ["base", "mods"]
  focus_x: 12
  focus_y: 7
  fog: true

keys:
  cursor_up: ["w", "up"]

logging:
  level: "debug"
  log_file: "isomap.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	want := &Config{
		Window: WindowConfig{
			Title:      "harbour",
			Width:      1920,
			Height:     1080,
			Fullscreen: true,
			VSync:      false,
			FPSLimit:   144,
		},
		View: ViewConfig{
			ScrollMargin: 32,
			ScrollStep:   8,
			PhaseModulus: 120,
			Cursor:       CursorQuarter,
			ShowObjects:  false,
		},
		Map: MapConfig{
			Path:      "maps/harbour.tmj",
			AssetDirs: []string{"base", "mods"},
			FocusX:    12,
			FocusY:    7,
			Fog:       true,
		},
		Keys: map[string][]string{"cursor_up": {"w", "up"}},
		Logging: LoggingConfig{
			Level:   "debug",
			LogFile: "isomap.log",
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("loaded config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromFilePartial(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("view:\n  cursor: none\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Untouched values keep their defaults
	if cfg.View.Cursor != CursorNone {
		t.Errorf("expected cursor 'none', got %s", cfg.View.Cursor)
	}
	if cfg.View.ScrollMargin != 20 {
		t.Errorf("expected default scroll margin, got %f", cfg.View.ScrollMargin)
	}
	if cfg.Window.Width != 1024 {
		t.Errorf("expected default width, got %d", cfg.Window.Width)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "syntax",
			yaml: "window:\n  width: not a number\n  invalid syntax here\n",
		},
		{
			name: "unknown key",
			yaml: "window:\n  widht: 800\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "invalid.yaml")
			if err := os.WriteFile(configPath, []byte(tt.yaml), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			cfg := Default()
			if err := loadFromFile(cfg, configPath); err == nil {
				t.Error("expected error loading invalid config, got nil")
			}
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"defaults", func(*Config) {}, nil},
		{"quarter cursor", func(c *Config) { c.View.Cursor = CursorQuarter }, nil},
		{"zero width", func(c *Config) { c.Window.Width = 0 }, ErrInvalidWindowSize},
		{"negative height", func(c *Config) { c.Window.Height = -1 }, ErrInvalidWindowSize},
		{"bad cursor", func(c *Config) { c.View.Cursor = "arrow" }, ErrInvalidCursor},
		{"negative margin", func(c *Config) { c.View.ScrollMargin = -1 }, ErrInvalidScroll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("view:\n  cursor: arrow\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := LoadFile(configPath); !errors.Is(err, ErrInvalidCursor) {
		t.Errorf("expected ErrInvalidCursor, got %v", err)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "isomap.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	path = findConfigFile()
	if path == "" {
		t.Error("expected to find isomap.yaml in current directory")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Map.Path = "maps/town.tmx"
	cfg.Keys = map[string][]string{"scroll_left": {"a"}}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("saved config mismatch (-want +got):\n%s", diff)
	}
}

func TestSave(t *testing.T) {
	if got, want := SavePath(), filepath.Join(ConfigDir(), "config.yaml"); got != want {
		t.Errorf("expected default save path %s, got %s", want, got)
	}

	path := filepath.Join(t.TempDir(), "isomap.yaml")
	*flagConfig = path
	*flagSave = true
	defer func() {
		*flagConfig = ""
		*flagSave = false
	}()

	if !SaveRequested() {
		t.Error("expected save to be requested")
	}
	if SavePath() != path {
		t.Errorf("expected save path %s, got %s", path, SavePath())
	}

	cfg := Default()
	cfg.Window.Width = 1600
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("saved config mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if !cfg.View.ShowHover {
					t.Error("expected hover display to be enabled with debug flag")
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "map and assets flags",
			setup: func() {
				*flagMap = "maps/cave.tmj"
				*flagAssets = "/srv/art"
			},
			verify: func(cfg *Config) {
				if cfg.Map.Path != "maps/cave.tmj" {
					t.Errorf("expected map maps/cave.tmj, got %s", cfg.Map.Path)
				}
				if diff := cmp.Diff([]string{"/srv/art"}, cfg.Map.AssetDirs); diff != "" {
					t.Errorf("asset dirs mismatch (-want +got):\n%s", diff)
				}
			},
			teardown: func() {
				*flagMap = ""
				*flagAssets = ""
			},
		},
		{
			name: "cursor flag",
			setup: func() {
				*flagCursor = CursorQuarter
			},
			verify: func(cfg *Config) {
				if cfg.View.Cursor != CursorQuarter {
					t.Errorf("expected quarter cursor, got %s", cfg.View.Cursor)
				}
			},
			teardown: func() {
				*flagCursor = ""
			},
		},
		{
			name: "windowed flag",
			setup: func() {
				*flagWindowed = true
			},
			verify: func(cfg *Config) {
				if cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() {
				*flagWindowed = false
			},
		},
		{
			name: "fullscreen flag",
			setup: func() {
				*flagFullscreen = true
			},
			verify: func(cfg *Config) {
				if !cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() {
				*flagFullscreen = false
			},
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(cfg *Config) {
				if cfg.Window.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Window.Width)
				}
				if cfg.Window.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}

	// Height should be from file (900) since no flag override
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestLoadRejectsInvalidFlags(t *testing.T) {
	*flagConfig = filepath.Join(t.TempDir(), "missing.yaml")
	*flagCursor = "arrow"
	defer func() {
		*flagConfig = ""
		*flagCursor = ""
	}()

	// missing explicit file is an error before flags are looked at
	if _, err := Load(); err == nil {
		t.Error("expected error for missing explicit config")
	}

	*flagConfig = ""
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	os.Chdir(t.TempDir())

	if _, err := Load(); !errors.Is(err, ErrInvalidCursor) {
		t.Errorf("expected ErrInvalidCursor, got %v", err)
	}
}
