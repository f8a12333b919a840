package console

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-icosphere/engine/controls"
)

var errMissing = errors.New("missing")

// memStore is an in-memory PresetStore.
type memStore struct {
	presets map[string]controls.Snapshot
}

func (m *memStore) Save(name string, s controls.Snapshot) error {
	m.presets[name] = s
	return nil
}

func (m *memStore) Load(name string) (controls.Snapshot, error) {
	s, ok := m.presets[name]
	if !ok {
		return controls.Snapshot{}, errMissing
	}
	return s, nil
}

func (m *memStore) List() ([]string, error) {
	names := make([]string, 0, len(m.presets))
	for name := range m.presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (m *memStore) Delete(name string) error {
	delete(m.presets, name)
	return nil
}

func TestExecuteSetsControls(t *testing.T) {
	ctrl := controls.NewControls()
	c := NewConsole(ctrl, nil, nil)

	if _, err := c.Execute("tesselations 7"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctrl.Tessellations() != 7 {
		t.Errorf("expected 7 tessellations, got %d", ctrl.Tessellations())
	}
	if _, err := c.Execute("  color 1 2 3 "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctrl.ColorRGB() != [3]int{1, 2, 3} {
		t.Errorf("unexpected color %v", ctrl.ColorRGB())
	}
	if _, err := c.Execute("background off"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctrl.Background() {
		t.Error("expected the background to be off")
	}
	if _, err := c.Execute("deformation"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctrl.Deformation() {
		t.Error("expected deformation to toggle off")
	}
	if _, err := c.Execute("load"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ctrl.TakeLoadScene() {
		t.Error("expected a pending scene load")
	}
}

func TestExecuteErrors(t *testing.T) {
	ctrl := controls.NewControls()
	c := NewConsole(ctrl, nil, nil)

	cases := []struct {
		line string
		want error
	}{
		{"frobnicate", ErrUnknownCommand},
		{"tesselations", ErrUsage},
		{"tesselations many", ErrUsage},
		{"tesselations 9", controls.ErrInvalidValue},
		{"color 1 2", ErrUsage},
		{"color 1 2 300", controls.ErrInvalidValue},
		{"background maybe", ErrUsage},
		{"preset list", ErrPresetsDisabled},
	}
	for _, tc := range cases {
		if _, err := c.Execute(tc.line); !errors.Is(err, tc.want) {
			t.Errorf("%q: expected %v, got %v", tc.line, tc.want, err)
		}
	}
	if ctrl.Snapshot() != controls.DefaultSnapshot() {
		t.Errorf("failed commands must not change the controls, got %+v", ctrl.Snapshot())
	}
	if _, err := c.Execute(`color "1 2`); err == nil {
		t.Error("expected an unterminated quote to fail")
	}
}

func TestGetAndHelp(t *testing.T) {
	c := NewConsole(controls.NewControls(), nil, nil)

	out, err := c.Execute("get")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"tesselations":5`) || !strings.Contains(out, `"colorRGB":[200,50,30]`) {
		t.Errorf("unexpected get output %s", out)
	}

	out, err = c.Execute("help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"tesselations <0-8>", "preset save", "toggle background"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestPresetCommands(t *testing.T) {
	ctrl := controls.NewControls()
	store := &memStore{presets: map[string]controls.Snapshot{}}
	c := NewConsole(ctrl, nil, nil, WithPresets(store))

	if _, err := c.Execute("color 10 20 30"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Execute(`preset save "my blue"`); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Execute("color 0 0 0"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Execute(`preset load "my blue"`); err != nil {
		t.Fatal(err)
	}
	if ctrl.ColorRGB() != [3]int{10, 20, 30} {
		t.Errorf("expected the preset color back, got %v", ctrl.ColorRGB())
	}

	out, err := c.Execute("preset list")
	if err != nil || out != "my blue" {
		t.Errorf("unexpected list %q, %v", out, err)
	}
	if _, err := c.Execute("preset load nope"); !errors.Is(err, errMissing) {
		t.Errorf("expected the store error, got %v", err)
	}
	if _, err := c.Execute(`preset delete "my blue"`); err != nil {
		t.Fatal(err)
	}
	if out, _ := c.Execute("preset list"); out != "no presets" {
		t.Errorf("expected no presets, got %q", out)
	}
	if _, err := c.Execute("preset rename a"); !errors.Is(err, ErrUsage) {
		t.Errorf("expected a usage error, got %v", err)
	}
}

func TestRunReadsUntilEOF(t *testing.T) {
	ctrl := controls.NewControls()
	quit := false
	in := strings.NewReader("tesselations 2\nbogus\n\nquit\n")
	var out bytes.Buffer
	c := NewConsole(ctrl, in, &out, WithQuit(func() { quit = true }))

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctrl.Tessellations() != 2 {
		t.Errorf("expected 2 tessellations, got %d", ctrl.Tessellations())
	}
	if !quit {
		t.Error("expected quit to call the quit function")
	}
	text := out.String()
	if !strings.Contains(text, "tesselations = 2") || !strings.Contains(text, "error:") || !strings.Contains(text, "bye") {
		t.Errorf("unexpected output %q", text)
	}
}

// blockingReader never returns.
type blockingReader struct{}

func (blockingReader) Read([]byte) (int, error) {
	select {}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewConsole(controls.NewControls(), blockingReader{}, &bytes.Buffer{})

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil on cancel, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewConsolePanicsOnNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for nil controls")
		}
	}()
	NewConsole(nil, nil, nil)
}
