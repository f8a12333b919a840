package controls

import (
	"errors"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-icosphere/common"
	"github.com/go-gl/mathgl/mgl32"
)

func TestDefaults(t *testing.T) {
	c := NewControls()
	s := c.Snapshot()
	if s.Tessellations != 5 {
		t.Errorf("expected 5 tessellations, got %d", s.Tessellations)
	}
	if s.ColorRGB != [3]int{200, 50, 30} {
		t.Errorf("expected color [200 50 30], got %v", s.ColorRGB)
	}
	if !s.Background || !s.Deformation {
		t.Error("expected both toggles enabled")
	}
	if c.TakeLoadScene() {
		t.Error("expected no pending load by default")
	}
}

func TestSetTessellationsRange(t *testing.T) {
	c := NewControls()
	for _, n := range []int{-1, 9} {
		if err := c.SetTessellations(n); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("SetTessellations(%d): expected ErrInvalidValue, got %v", n, err)
		}
	}
	if err := c.SetTessellations(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.StepTessellations(-1) != 0 {
		t.Error("expected step below 0 to clamp")
	}
	if err := c.SetTessellations(8); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.StepTessellations(1) != 8 {
		t.Error("expected step above 8 to clamp")
	}
}

func TestColorVec4(t *testing.T) {
	c := NewControls()
	got := c.ColorVec4()
	want := mgl32.Vec4{200.0 / 255, 50.0 / 255, 30.0 / 255, 1}
	if !got.ApproxEqualThreshold(want, 1e-6) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if err := c.SetColorRGB(0, 256, 0); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for 256, got %v", err)
	}
}

func TestSceneParamsToggles(t *testing.T) {
	c := NewControls()
	p := c.SceneParams(0.5, mgl32.Vec2{800, 600})
	if p.BgToggle != 1 || p.DeformToggle != 1 {
		t.Errorf("expected toggles +1, got %d and %d", p.BgToggle, p.DeformToggle)
	}
	c.ToggleBackground()
	c.SetDeformation(false)
	p = c.SceneParams(0.5, mgl32.Vec2{800, 600})
	if p.BgToggle != -1 || p.DeformToggle != -1 {
		t.Errorf("expected toggles -1, got %d and %d", p.BgToggle, p.DeformToggle)
	}
	if p.Time != 0.5 || p.Dimensions != (mgl32.Vec2{800, 600}) {
		t.Errorf("unexpected time or dimensions: %f %v", p.Time, p.Dimensions)
	}
	if p.Size() != 64 || len(p.Marshal()) != 64 {
		t.Errorf("expected 64 byte scene params, got %d", p.Size())
	}
}

func TestOnChangeAndVersion(t *testing.T) {
	c := NewControls()
	var got []Snapshot
	c.OnChange(func(s Snapshot) { got = append(got, s) })

	_ = c.SetTessellations(3)
	_ = c.SetTessellations(3)
	c.SetBackground(true)
	c.ToggleDeformation()

	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if got[0].Tessellations != 3 || got[1].Deformation {
		t.Errorf("unexpected snapshots: %+v", got)
	}
	if c.Version() != 2 {
		t.Errorf("expected version 2, got %d", c.Version())
	}
}

func TestApply(t *testing.T) {
	c := NewControls()
	err := c.Apply(map[string]any{
		KeyTessellations: float64(2),
		KeyColorRGB:      []any{float64(10), float64(20), float64(30)},
		KeyBackground:    false,
		KeyLoadScene:     true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := c.Snapshot()
	if s.Tessellations != 2 || s.ColorRGB != [3]int{10, 20, 30} || s.Background {
		t.Errorf("unexpected snapshot after Apply: %+v", s)
	}
	if !c.TakeLoadScene() {
		t.Error("expected loadScene to queue a request")
	}
	if c.TakeLoadScene() {
		t.Error("expected the request to be consumed")
	}
}

func TestApplyAcceptsTessellationsSpelling(t *testing.T) {
	c := NewControls()
	if err := c.Apply(map[string]any{"tessellations": float64(3)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Tessellations() != 3 {
		t.Errorf("expected level 3, got %d", c.Tessellations())
	}
}

func TestApplyRejectsUnknownKey(t *testing.T) {
	c := NewControls()
	before := c.Version()
	err := c.Apply(map[string]any{
		KeyTessellations: float64(2),
		"tesselation":    float64(3),
	})
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if c.Tessellations() != DefaultTessellations || c.Version() != before {
		t.Errorf("expected no change on error, got level %d version %d", c.Tessellations(), c.Version())
	}
}

func TestApplyDoesNotLoseConcurrentChanges(t *testing.T) {
	c := NewControls()
	initial := c.Deformation()

	const toggles = 200
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < toggles; i++ {
			c.ToggleDeformation()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < toggles; i++ {
			if err := c.Apply(map[string]any{KeyTessellations: float64(1 + i%MaxTessellations)}); err != nil {
				t.Errorf("apply: %v", err)
				return
			}
		}
	}()
	wg.Wait()

	if c.Deformation() != initial {
		t.Errorf("expected an even number of toggles to leave Deformation at %v", initial)
	}
}

func TestApplyRejectsAtomically(t *testing.T) {
	c := NewControls()
	err := c.Apply(map[string]any{
		KeyTessellations: float64(1),
		KeyColorRGB:      []any{float64(10), float64(20)},
	})
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if c.Tessellations() != DefaultTessellations {
		t.Errorf("expected no change on error, got %d", c.Tessellations())
	}
	if err := c.Apply(map[string]any{KeyTessellations: 2.5}); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected fractional level rejected, got %v", err)
	}
	if err := c.Apply(map[string]any{KeyBackground: "yes"}); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected non-bool toggle rejected, got %v", err)
	}
}

func TestHandleKey(t *testing.T) {
	c := NewControls()
	HandleKey(c, common.KeyT)
	if c.Tessellations() != 6 {
		t.Errorf("expected T to raise tessellations to 6, got %d", c.Tessellations())
	}
	HandleKey(c, common.KeyG)
	HandleKey(c, common.KeyG)
	if c.Tessellations() != 4 {
		t.Errorf("expected G twice to lower tessellations to 4, got %d", c.Tessellations())
	}
	HandleKey(c, common.Key0+2)
	if c.Tessellations() != 2 {
		t.Errorf("expected digit 2 to set tessellations, got %d", c.Tessellations())
	}
	HandleKey(c, common.KeyC)
	if c.ColorRGB() != [3]int{30, 144, 255} {
		t.Errorf("expected first palette step, got %v", c.ColorRGB())
	}
	HandleKey(c, common.KeyL)
	if !c.TakeLoadScene() {
		t.Error("expected L to request a scene load")
	}
	if HandleKey(c, common.KeySpace) {
		t.Error("expected space to be unbound")
	}
}

func TestNewControlsPanicsOnBadOption(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-range option")
		}
	}()
	NewControls(WithTessellations(42))
}

func TestSnapshotToMap(t *testing.T) {
	m := DefaultSnapshot().ToMap()
	if m[KeyTessellations] != float64(5) {
		t.Errorf("expected float64 5, got %v", m[KeyTessellations])
	}
	rgb, ok := m[KeyColorRGB].([]any)
	if !ok || len(rgb) != 3 || rgb[0] != float64(200) {
		t.Errorf("unexpected color list %v", m[KeyColorRGB])
	}
	c := NewControls()
	if err := c.Apply(m); err != nil {
		t.Errorf("expected ToMap output to apply cleanly, got %v", err)
	}
}
