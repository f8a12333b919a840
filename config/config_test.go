package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-icosphere/engine/controls"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Controls != controls.DefaultSnapshot() {
		t.Errorf("expected default controls, got %+v", cfg.Controls)
	}
	if cfg.Window.Width != 1280 || cfg.Window.Height != 720 {
		t.Errorf("unexpected default window %+v", cfg.Window)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	data := `{"controls": {"tesselations": 3, "colorRGB": [1, 2, 3], "Background": false, "Deformation": true}, "remote_addr": ":9000"}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Controls.Tessellations != 3 || cfg.Controls.ColorRGB != [3]int{1, 2, 3} || cfg.Controls.Background {
		t.Errorf("unexpected controls %+v", cfg.Controls)
	}
	if cfg.RemoteAddr != ":9000" {
		t.Errorf("expected remote address :9000, got %q", cfg.RemoteAddr)
	}
	if cfg.Noise != controls.DefaultNoiseParams() {
		t.Errorf("expected default noise, got %+v", cfg.Noise)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad json":      `{"window": `,
		"tessellations": `{"controls": {"tesselations": 9, "colorRGB": [0, 0, 0]}}`,
		"msaa":          `{"renderer": {"msaa": 2}}`,
		"window":        `{"window": {"width": 0, "height": 10}}`,
		"negative min":  `{"window": {"min_width": -1}}`,
		"max below min": `{"window": {"min_width": 800, "max_width": 640, "width": 700}}`,
		"above max":     `{"window": {"max_height": 600}}`,
		"below min":     `{"window": {"width": 200}}`,
		"clip":          `{"camera": {"near": 1, "far": 0.5}}`,
	}
	dir := t.TempDir()
	for name, data := range cases {
		path := filepath.Join(dir, name+".json")
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestLoadWindowLimits(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	data := `{"window": {"width": 800, "height": 600, "min_width": 640, "min_height": 480, "max_width": 1920, "max_height": 0}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w := cfg.Window
	if w.MinWidth != 640 || w.MinHeight != 480 || w.MaxWidth != 1920 || w.MaxHeight != 0 {
		t.Errorf("unexpected limits %+v", w)
	}
	if w.Title != "oxy-icosphere" {
		t.Errorf("expected default title, got %q", w.Title)
	}
}

func TestValidateWrapsControlErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Controls.ColorRGB = [3]int{0, 300, 0}
	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, controls.ErrInvalidValue) {
		t.Errorf("expected both sentinels, got %v", err)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := DefaultConfig()
	cfg.Controls.Tessellations = 7
	cfg.PresetsPath = ""
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Controls.Tessellations != 7 || loaded.PresetsPath != "" {
		t.Errorf("unexpected round trip %+v", loaded)
	}
}
