// Package config loads and saves the demo's JSON configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-icosphere/engine/controls"
)

// FileName is the configuration file looked up next to the executable.
const FileName = "oxy-icosphere.json"

// ErrInvalidConfig is returned by Validate and Load when a value is out of range.
var ErrInvalidConfig = errors.New("config: invalid value")

// WindowConfig sizes and names the window.
type WindowConfig struct {
	Title  string `json:"title"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	// Resize limits in pixels. Zero leaves a side unlimited.
	MinWidth  int `json:"min_width"`
	MinHeight int `json:"min_height"`
	MaxWidth  int `json:"max_width"`
	MaxHeight int `json:"max_height"`
}

// RendererConfig selects presentation and anti-aliasing.
type RendererConfig struct {
	VSync bool `json:"vsync"`
	// MSAA is the sample count, 1 or 4.
	MSAA int `json:"msaa"`
	// Software forces the CPU fallback adapter.
	Software bool `json:"software"`
}

// CameraConfig places the camera. Angles are in degrees.
type CameraConfig struct {
	Eye    [3]float32 `json:"eye"`
	Target [3]float32 `json:"target"`
	Fov    float32    `json:"fov"`
	Near   float32    `json:"near"`
	Far    float32    `json:"far"`
}

// Config is the complete demo configuration.
type Config struct {
	Window   WindowConfig         `json:"window"`
	Renderer RendererConfig       `json:"renderer"`
	Camera   CameraConfig         `json:"camera"`
	Controls controls.Snapshot    `json:"controls"`
	Noise    controls.NoiseParams `json:"noise"`

	// RemoteAddr is the listen address of the websocket control panel; empty disables it.
	RemoteAddr string `json:"remote_addr"`
	// Console enables the stdin command console.
	Console bool `json:"console"`
	// PresetsPath is the SQLite file for named presets; empty disables presets.
	PresetsPath string `json:"presets_path"`

	Profiling bool    `json:"profiling"`
	TickRate  float64 `json:"tick_rate"`
}

// DefaultConfig returns the configuration the demo uses when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Title:     "oxy-icosphere",
			Width:     1280,
			Height:    720,
			MinWidth:  320,
			MinHeight: 240,
		},
		Renderer: RendererConfig{
			VSync: true,
			MSAA:  4,
		},
		Camera: CameraConfig{
			Eye:    [3]float32{0, 0, 5},
			Target: [3]float32{0, 0, 0},
			Fov:    45,
			Near:   0.1,
			Far:    1000,
		},
		Controls:    controls.DefaultSnapshot(),
		Noise:       controls.DefaultNoiseParams(),
		RemoteAddr:  "",
		Console:     true,
		PresetsPath: "presets.db",
		Profiling:   true,
		TickRate:    60,
	}
}

// DefaultPath returns FileName in the executable's directory, or in the working
// directory when the executable path is unknown.
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		return FileName
	}
	return filepath.Join(filepath.Dir(exe), FileName)
}

// Load reads the JSON file at path over DefaultConfig. A missing file yields the
// defaults; fields absent from the file keep their default values.
//
// Parameters:
//   - path: the file to read; empty selects DefaultPath
//
// Returns:
//   - *Config: the loaded configuration
//   - error: a read, parse or validation error
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as indented JSON.
//
// Parameters:
//   - path: the file to write; empty selects DefaultPath
//
// Returns:
//   - error: a marshal or write error
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// validateLimits rejects negative limits, a max below its min and a size outside the limits.
func (w WindowConfig) validateLimits() error {
	check := func(axis string, size, lo, hi int) error {
		if lo < 0 || hi < 0 {
			return fmt.Errorf("window %s limits %d..%d: %w", axis, lo, hi, ErrInvalidConfig)
		}
		if hi > 0 && hi < lo {
			return fmt.Errorf("window max %s %d below min %d: %w", axis, hi, lo, ErrInvalidConfig)
		}
		if size < lo || (hi > 0 && size > hi) {
			return fmt.Errorf("window %s %d outside limits %d..%d: %w", axis, size, lo, hi, ErrInvalidConfig)
		}
		return nil
	}
	if err := check("width", w.Width, w.MinWidth, w.MaxWidth); err != nil {
		return err
	}
	return check("height", w.Height, w.MinHeight, w.MaxHeight)
}

// Validate checks sizes, the camera, the renderer settings and the control values.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d: %w", c.Window.Width, c.Window.Height, ErrInvalidConfig)
	}
	if err := c.Window.validateLimits(); err != nil {
		return err
	}
	if c.Renderer.MSAA != 1 && c.Renderer.MSAA != 4 {
		return fmt.Errorf("msaa %d, want 1 or 4: %w", c.Renderer.MSAA, ErrInvalidConfig)
	}
	if c.Camera.Fov <= 0 || c.Camera.Fov >= 180 {
		return fmt.Errorf("camera fov %v: %w", c.Camera.Fov, ErrInvalidConfig)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera clip planes %v..%v: %w", c.Camera.Near, c.Camera.Far, ErrInvalidConfig)
	}
	if c.Camera.Eye == c.Camera.Target {
		return fmt.Errorf("camera eye equals target: %w", ErrInvalidConfig)
	}
	if c.TickRate < 0 {
		return fmt.Errorf("tick rate %v: %w", c.TickRate, ErrInvalidConfig)
	}
	if c.Noise.FbmOct < 1 || c.Noise.FbmOct > 8 {
		return fmt.Errorf("fbm octaves %d outside [1, 8]: %w", c.Noise.FbmOct, ErrInvalidConfig)
	}
	if err := c.Controls.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
