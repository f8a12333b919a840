package engine

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-icosphere/common"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/camera"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/controls"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/profiler"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/renderer"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// fakeRenderer counts frame brackets; every other method panics through the nil embed.
type fakeRenderer struct {
	renderer.Renderer
	begins, ends, presents int
}

func (f *fakeRenderer) BeginFrame() error { f.begins++; return nil }
func (f *fakeRenderer) EndFrame()         { f.ends++ }
func (f *fakeRenderer) Present()          { f.presents++ }

// fakeScene implements the parts of scene.Scene the engine uses.
type fakeScene struct {
	scene.Scene
	name   string
	active bool
	r      renderer.Renderer
	ctrl   controls.Controls
	cam    camera.Camera
	log    *[]string
	size   [2]int
}

func (f *fakeScene) Name() string                { return f.name }
func (f *fakeScene) Active() bool                { return f.active }
func (f *fakeScene) Renderer() renderer.Renderer { return f.r }
func (f *fakeScene) Controls() controls.Controls { return f.ctrl }
func (f *fakeScene) Camera() camera.Camera       { return f.cam }
func (f *fakeScene) Level() int                  { return f.ctrl.Tessellations() }
func (f *fakeScene) Prepare()                    { *f.log = append(*f.log, "prepare "+f.name) }
func (f *fakeScene) Resize(width, height int)    { f.size = [2]int{width, height} }
func (f *fakeScene) DrawCalls() error            { *f.log = append(*f.log, "draw "+f.name); return nil }

func newFakeScene(name string, active bool, r renderer.Renderer, log *[]string) *fakeScene {
	return &fakeScene{
		name:   name,
		active: active,
		r:      r,
		ctrl:   controls.NewControls(),
		cam:    camera.NewCamera(camera.WithController(camera.NewControllerFromEye(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}))),
		log:    log,
	}
}

func TestRenderFrameOrder(t *testing.T) {
	var calls []string
	r := &fakeRenderer{}
	e := NewEngine(
		WithScene(2, newFakeScene("top", true, r, &calls)),
		WithScene(1, newFakeScene("bottom", true, r, &calls)),
		WithScene(3, newFakeScene("hidden", false, r, &calls)),
	).(*engine)

	e.renderFrame(0.016)

	want := []string{"prepare bottom", "prepare top", "draw bottom", "draw top"}
	if len(calls) != len(want) {
		t.Fatalf("expected %v, got %v", want, calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, calls)
		}
	}
	if r.begins != 1 || r.ends != 1 || r.presents != 1 {
		t.Errorf("expected one frame bracket, got %d/%d/%d", r.begins, r.ends, r.presents)
	}
}

func TestRenderFrameUpdatesTitle(t *testing.T) {
	var calls []string
	clock := time.Unix(0, 0)
	p := profiler.NewProfiler(profiler.WithQuiet(true), profiler.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	e := NewEngine(
		WithScene(0, newFakeScene("main", true, &fakeRenderer{}, &calls)),
		WithProfiler(p),
		WithProfiling(true),
		WithTitle("demo"),
	).(*engine)

	e.renderFrame(0.016)
	title := e.pendingTitle.Load()
	if title == nil {
		t.Fatal("expected a pending title after a profiler window closed")
	}
	if *title != "demo | 1 FPS | level 5" {
		t.Errorf("unexpected title %q", *title)
	}
}

func TestHandleKeyRoutesToPrimaryScene(t *testing.T) {
	var calls []string
	primary := newFakeScene("primary", true, &fakeRenderer{}, &calls)
	other := newFakeScene("other", true, &fakeRenderer{}, &calls)
	e := NewEngine(WithScene(0, primary), WithScene(1, other)).(*engine)

	e.handleKey(common.KeyT)
	if primary.ctrl.Tessellations() != controls.DefaultTessellations+1 {
		t.Errorf("expected the primary scene to step up, got %d", primary.ctrl.Tessellations())
	}
	if other.ctrl.Tessellations() != controls.DefaultTessellations {
		t.Error("only the primary scene receives input")
	}

	e.handleKey(common.KeyB)
	if primary.ctrl.Background() {
		t.Error("expected B to toggle the background off")
	}
}

func TestMouseDragOrbitsAndPans(t *testing.T) {
	var calls []string
	s := newFakeScene("main", true, &fakeRenderer{}, &calls)
	e := NewEngine(WithScene(0, s)).(*engine)
	ctrl := s.cam.Controller()

	azimuth := ctrl.Azimuth()
	e.handleMouseMove(100, 100)
	if ctrl.Azimuth() != azimuth {
		t.Fatal("moving without a button held must not orbit")
	}

	e.handleMouseButton(common.MouseButtonLeft, true, 100, 100)
	e.handleMouseMove(120, 100)
	if ctrl.Azimuth() == azimuth {
		t.Error("expected a left drag to orbit")
	}
	e.handleMouseButton(common.MouseButtonLeft, false, 120, 100)

	target := ctrl.Target()
	e.handleMouseButton(common.MouseButtonRight, true, 120, 100)
	e.handleMouseMove(140, 100)
	if ctrl.Target() == target {
		t.Error("expected a right drag to pan")
	}
	e.handleMouseButton(common.MouseButtonRight, false, 140, 100)
	if e.dragButton != noDrag {
		t.Error("releasing the button should end the drag")
	}

	radius := ctrl.Radius()
	e.handleScroll(1)
	if ctrl.Radius() >= radius {
		t.Errorf("expected scrolling up to zoom in, radius %v -> %v", radius, ctrl.Radius())
	}

	e.handleKey(common.KeyR)
	if ctrl.Radius() != radius || ctrl.Target() != (mgl32.Vec3{}) {
		t.Errorf("expected R to reset the camera, radius %v target %v", ctrl.Radius(), ctrl.Target())
	}
}

func TestQuitIsIdempotent(t *testing.T) {
	e := NewEngine()
	e.Quit()
	e.Quit()
	select {
	case <-e.Done():
	default:
		t.Fatal("expected Done to be closed after Quit")
	}
}

func TestSceneRegistry(t *testing.T) {
	var calls []string
	e := NewEngine()
	s := newFakeScene("a", true, &fakeRenderer{}, &calls)
	e.AddScene(4, s)
	if e.Scene(4) != s {
		t.Error("expected the scene at key 4")
	}
	scenes := e.Scenes()
	delete(scenes, 4)
	if e.Scene(4) == nil {
		t.Error("Scenes must return a copy")
	}
	e.RemoveScene(4)
	if e.Scene(4) != nil {
		t.Error("expected the scene to be removed")
	}
}
