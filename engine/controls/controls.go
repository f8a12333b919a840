package controls

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-icosphere/common"
	"github.com/go-gl/mathgl/mgl32"
)

// controls is the implementation of the Controls interface.
type controls struct {
	mu *sync.Mutex

	state       Snapshot
	noise       NoiseParams
	loadPending bool
	paletteIdx  int
	version     uint64

	listeners []func(Snapshot)
}

// Controls is the live parameter panel of the demo. It owns the tessellation level, the
// icosphere color, the background and deformation toggles and the pending Load Scene
// request. Every surface that can change a parameter (keyboard, console, remote panel,
// presets) goes through this interface, and the scene reads it once per frame.
//
// Every method is safe for concurrent use. Change listeners run on the goroutine that made
// the change, after the lock is released.
type Controls interface {
	// Snapshot returns a copy of the current values.
	Snapshot() Snapshot

	// Restore replaces every value with the snapshot after validating it.
	//
	// Parameters:
	//   - s: the values to restore
	//
	// Returns:
	//   - error: a wrapped ErrInvalidValue if s is out of range
	Restore(s Snapshot) error

	// Tessellations returns the current subdivision level.
	Tessellations() int

	// SetTessellations sets the subdivision level.
	//
	// Parameters:
	//   - n: the new level in [MinTessellations, MaxTessellations]
	//
	// Returns:
	//   - error: a wrapped ErrInvalidValue if n is out of range
	SetTessellations(n int) error

	// StepTessellations moves the level by delta, clamped to the allowed range.
	//
	// Parameters:
	//   - delta: the step, usually +1 or -1
	//
	// Returns:
	//   - int: the resulting level
	StepTessellations(delta int) int

	// ColorRGB returns the icosphere color as 0-255 components.
	ColorRGB() [3]int

	// SetColorRGB sets the icosphere color.
	//
	// Parameters:
	//   - r, g, b: components in [0, 255]
	//
	// Returns:
	//   - error: a wrapped ErrInvalidValue if any component is out of range
	SetColorRGB(r, g, b int) error

	// CycleColor advances the color to the next palette entry.
	CycleColor()

	// ColorVec4 returns the color normalized to [0, 1] with alpha 1.
	ColorVec4() mgl32.Vec4

	Background() bool
	SetBackground(enabled bool)
	ToggleBackground()

	Deformation() bool
	SetDeformation(enabled bool)
	ToggleDeformation()

	// RequestLoadScene marks the scene for a full rebuild on the next frame.
	RequestLoadScene()

	// TakeLoadScene consumes a pending Load Scene request.
	//
	// Returns:
	//   - bool: true if a request was pending
	TakeLoadScene() bool

	// Noise returns the background and fbm tuning values.
	Noise() NoiseParams

	// SetNoise replaces the background and fbm tuning values.
	SetNoise(n NoiseParams)

	// SceneParams assembles the per-frame shader uniform from the current values.
	//
	// Parameters:
	//   - time: the animation clock
	//   - dimensions: framebuffer size in pixels
	//
	// Returns:
	//   - GPUSceneParams: the uniform ready for Marshal
	SceneParams(time float32, dimensions mgl32.Vec2) GPUSceneParams

	// Apply updates controls from a generic key/value map as decoded from JSON or a
	// protobuf Struct. "tessellations" is accepted as an alias of KeyTessellations and any
	// other unknown key is an error. Numbers may be any integer or float type as long as
	// the value is integral. Nothing changes if any value is invalid, and the merge with
	// the current values happens atomically with respect to other changes.
	//
	// Parameters:
	//   - values: control keys mapped to new values
	//
	// Returns:
	//   - error: a wrapped ErrInvalidValue describing the first bad value
	Apply(values map[string]any) error

	// Version returns a counter incremented on every accepted change.
	Version() uint64

	// OnChange registers a listener called with the new snapshot after every accepted change.
	OnChange(fn func(Snapshot))
}

var _ Controls = &controls{}

// NewControls creates the control panel with its default values and applies options.
// Options that set out-of-range values panic, matching the other engine constructors.
//
// Parameters:
//   - options: functional options applied in order
//
// Returns:
//   - Controls: the new control panel
func NewControls(options ...ControlsBuilderOption) Controls {
	c := &controls{
		mu:    &sync.Mutex{},
		state: DefaultSnapshot(),
		noise: DefaultNoiseParams(),
	}
	for _, opt := range options {
		opt(c)
	}
	if err := c.state.Validate(); err != nil {
		panic(fmt.Sprintf("controls: %v", err))
	}
	return c
}

func (c *controls) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *controls) Restore(s Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c.update(func() bool {
		if c.state == s {
			return false
		}
		c.state = s
		return true
	})
	return nil
}

func (c *controls) Tessellations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Tessellations
}

func (c *controls) SetTessellations(n int) error {
	if n < MinTessellations || n > MaxTessellations {
		return fmt.Errorf("%s %d outside [%d, %d]: %w", KeyTessellations, n, MinTessellations, MaxTessellations, ErrInvalidValue)
	}
	c.update(func() bool {
		if c.state.Tessellations == n {
			return false
		}
		c.state.Tessellations = n
		return true
	})
	return nil
}

func (c *controls) StepTessellations(delta int) int {
	var result int
	c.update(func() bool {
		next := common.Clamp(c.state.Tessellations+delta, MinTessellations, MaxTessellations)
		result = next
		if next == c.state.Tessellations {
			return false
		}
		c.state.Tessellations = next
		return true
	})
	return result
}

func (c *controls) ColorRGB() [3]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.ColorRGB
}

func (c *controls) SetColorRGB(r, g, b int) error {
	rgb := [3]int{r, g, b}
	for i, v := range rgb {
		if v < 0 || v > 255 {
			return fmt.Errorf("%s[%d] = %d outside [0, 255]: %w", KeyColorRGB, i, v, ErrInvalidValue)
		}
	}
	c.update(func() bool {
		if c.state.ColorRGB == rgb {
			return false
		}
		c.state.ColorRGB = rgb
		return true
	})
	return nil
}

func (c *controls) CycleColor() {
	c.update(func() bool {
		c.paletteIdx = (c.paletteIdx + 1) % len(colorPalette)
		c.state.ColorRGB = colorPalette[c.paletteIdx]
		return true
	})
}

func (c *controls) ColorVec4() mgl32.Vec4 {
	return c.Snapshot().ColorVec4()
}

func (c *controls) Background() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Background
}

func (c *controls) SetBackground(enabled bool) {
	c.update(func() bool {
		if c.state.Background == enabled {
			return false
		}
		c.state.Background = enabled
		return true
	})
}

func (c *controls) ToggleBackground() {
	c.update(func() bool {
		c.state.Background = !c.state.Background
		return true
	})
}

func (c *controls) Deformation() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Deformation
}

func (c *controls) SetDeformation(enabled bool) {
	c.update(func() bool {
		if c.state.Deformation == enabled {
			return false
		}
		c.state.Deformation = enabled
		return true
	})
}

func (c *controls) ToggleDeformation() {
	c.update(func() bool {
		c.state.Deformation = !c.state.Deformation
		return true
	})
}

func (c *controls) RequestLoadScene() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadPending = true
}

func (c *controls) TakeLoadScene() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	pending := c.loadPending
	c.loadPending = false
	return pending
}

func (c *controls) Noise() NoiseParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.noise
}

func (c *controls) SetNoise(n NoiseParams) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.noise = n
}

func (c *controls) SceneParams(time float32, dimensions mgl32.Vec2) GPUSceneParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUSceneParams{
		Color:        c.state.ColorVec4(),
		Dimensions:   dimensions,
		Time:         time,
		BgToggle:     common.Sign(c.state.Background),
		DeformToggle: common.Sign(c.state.Deformation),
		BgSpeed:      c.noise.BgSpeed,
		BgDist:       c.noise.BgDist,
		BgZoom:       c.noise.BgZoom,
		FbmFreq:      c.noise.FbmFreq,
		FbmAmp:       c.noise.FbmAmp,
		FbmOct:       c.noise.FbmOct,
	}
}

func (c *controls) Apply(values map[string]any) error {
	p, err := parsePatch(values)
	if err != nil {
		return err
	}
	var applyErr error
	c.update(func() bool {
		next := p.merge(c.state)
		if err := next.Validate(); err != nil {
			applyErr = err
			return false
		}
		if next == c.state {
			return false
		}
		c.state = next
		return true
	})
	if applyErr != nil {
		return applyErr
	}
	if p.load {
		c.RequestLoadScene()
	}
	return nil
}

// patch holds the fields named by an Apply call. Nil fields were absent.
type patch struct {
	tessellations *int
	colorRGB      *[3]int
	background    *bool
	deformation   *bool
	load          bool
}

// parsePatch converts a generic key/value map into a patch without touching any state.
func parsePatch(values map[string]any) (patch, error) {
	var p patch
	for key, raw := range values {
		switch key {
		case KeyTessellations, keyTessellationsAlias:
			n, err := toInt(raw)
			if err != nil {
				return p, fmt.Errorf("%s: %w", key, err)
			}
			p.tessellations = &n
		case KeyColorRGB:
			rgb, err := toRGB(raw)
			if err != nil {
				return p, fmt.Errorf("%s: %w", key, err)
			}
			p.colorRGB = &rgb
		case KeyBackground, KeyDeformation, KeyLoadScene:
			b, ok := raw.(bool)
			if !ok {
				return p, fmt.Errorf("%s: expected bool, got %T: %w", key, raw, ErrInvalidValue)
			}
			switch key {
			case KeyBackground:
				p.background = &b
			case KeyDeformation:
				p.deformation = &b
			default:
				p.load = b
			}
		default:
			return p, fmt.Errorf("unknown control %q: %w", key, ErrInvalidValue)
		}
	}
	return p, nil
}

// merge returns s with the patch's fields applied.
func (p patch) merge(s Snapshot) Snapshot {
	if p.tessellations != nil {
		s.Tessellations = *p.tessellations
	}
	if p.colorRGB != nil {
		s.ColorRGB = *p.colorRGB
	}
	if p.background != nil {
		s.Background = *p.background
	}
	if p.deformation != nil {
		s.Deformation = *p.deformation
	}
	return s
}

func (c *controls) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

func (c *controls) OnChange(fn func(Snapshot)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// update runs mutate under the lock and, if it reports a change, bumps the version and
// notifies listeners with the new snapshot once the lock is released.
func (c *controls) update(mutate func() bool) {
	c.mu.Lock()
	if !mutate() {
		c.mu.Unlock()
		return
	}
	c.version++
	snap := c.state
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// toInt accepts the numeric types produced by JSON, protobuf Struct values and Go callers.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float32:
		return toInt(float64(n))
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("expected an integer, got %v: %w", n, ErrInvalidValue)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T: %w", v, ErrInvalidValue)
	}
}

func toRGB(v any) ([3]int, error) {
	var out [3]int
	var items []any
	switch list := v.(type) {
	case []any:
		items = list
	case []int:
		for _, n := range list {
			items = append(items, n)
		}
	case [3]int:
		return list, nil
	default:
		return out, fmt.Errorf("expected a list of three numbers, got %T: %w", v, ErrInvalidValue)
	}
	if len(items) != 3 {
		return out, fmt.Errorf("expected three components, got %d: %w", len(items), ErrInvalidValue)
	}
	for i, item := range items {
		n, err := toInt(item)
		if err != nil {
			return out, err
		}
		out[i] = n
	}
	return out, nil
}
