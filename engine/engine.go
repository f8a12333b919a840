package engine

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-icosphere/common"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/controls"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/profiler"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/scene"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/window"
)

// noDrag marks that no mouse button is held.
const noDrag = -1

// engine implements the Engine interface.
// Coordinates engine, render, and window threads.
type engine struct {
	mu *sync.RWMutex

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window
	title  string

	// pendingTitle is set by the render goroutine and applied on the window thread.
	pendingTitle atomic.Pointer[string]

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	scenes map[int]scene.Scene

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	// mouse drag state, touched only by window callbacks
	dragButton   int
	lastX, lastY int32
}

// Engine is the main entry point for the engine.
// It orchestrates the engine loop, render loop, and window management, and routes
// window input to the primary scene's controls and camera.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for logic updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each render frame.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key.
	// Scenes are rendered in ascending key order during the render loop. The lowest
	// active key is the primary scene, which receives keyboard and mouse input.
	//
	// Parameters:
	//   - key: the z-index determining render order (lower renders first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Run starts the engine goroutines and the window message loop. It blocks until the
	// window closes or Quit is called, waits for the goroutines and closes the window.
	Run()

	// Quit signals all engine goroutines to stop and the window loop to exit.
	// Safe to call multiple times and from any goroutine; subsequent calls are no-ops.
	Quit()

	// Done returns a channel closed once Quit has been signalled.
	Done() <-chan struct{}
}

// NewEngine creates a new Engine instance with the provided options.
// When a window is attached, its resize, input and update callbacks are bound to the engine.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:               &sync.RWMutex{},
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		scenes:           make(map[int]scene.Scene),
		running:          false,
		wg:               sync.WaitGroup{},
		profiler:         profiler.NewProfiler(),
		profilingEnabled: false,
		engineTickRate:   time.Second / 60,
		title:            "oxy-icosphere",
		dragButton:       noDrag,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.bindWindow()
	}

	return e
}

// bindWindow routes window events to the engine.
func (e *engine) bindWindow() {
	e.window.SetResizeCallback(func(width, height int) {
		for _, s := range e.Scenes() {
			s.Resize(width, height)
		}
	})
	e.window.SetKeyDownCallback(func(keyCode uint32) {
		e.handleKey(int(keyCode))
	})
	e.window.SetScrollCallback(e.handleScroll)
	e.window.SetMouseButtonCallback(e.handleMouseButton)
	e.window.SetMouseMoveCallback(e.handleMouseMove)
	e.window.SetUpdateCallback(e.handleWindowUpdate)
}

// handleWindowUpdate runs on the window thread once per message loop iteration.
func (e *engine) handleWindowUpdate() {
	select {
	case <-e.quitChannel:
		// the render goroutine must be gone before the surface's window is destroyed
		e.wg.Wait()
		if err := e.window.Close(); err != nil {
			log.Printf("[Engine] close window: %v", err)
		}
		return
	default:
	}

	if title := e.pendingTitle.Swap(nil); title != nil {
		e.window.SetTitle(*title)
	}
}

// primaryScene returns the active scene with the lowest key, or nil.
func (e *engine) primaryScene() scene.Scene {
	active := e.activeScenes()
	if len(active) == 0 {
		return nil
	}
	return active[0]
}

// activeScenes returns the active scenes in ascending key order.
func (e *engine) activeScenes() []scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()

	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var active []scene.Scene
	for _, k := range keys {
		if s := e.scenes[k]; s.Active() {
			active = append(active, s)
		}
	}
	return active
}

// handleKey applies a key press to the primary scene: R resets the camera, every other
// key goes through the control bindings.
func (e *engine) handleKey(key int) {
	s := e.primaryScene()
	if s == nil {
		return
	}
	if key == common.KeyR {
		if ctrl := s.Camera().Controller(); ctrl != nil {
			ctrl.Reset()
		}
		return
	}
	controls.HandleKey(s.Controls(), key)
}

func (e *engine) handleScroll(delta float32) {
	s := e.primaryScene()
	if s == nil {
		return
	}
	if ctrl := s.Camera().Controller(); ctrl != nil {
		ctrl.Zoom(delta)
	}
}

// handleMouseButton starts a drag on press of the left (orbit) or right (pan) button and
// ends it on release.
func (e *engine) handleMouseButton(button int, pressed bool, x, y int32) {
	if button != common.MouseButtonLeft && button != common.MouseButtonRight {
		return
	}
	if !pressed {
		if e.dragButton == button {
			e.dragButton = noDrag
		}
		return
	}
	e.dragButton = button
	e.lastX, e.lastY = x, y
}

func (e *engine) handleMouseMove(x, y int32) {
	dx, dy := x-e.lastX, y-e.lastY
	e.lastX, e.lastY = x, y
	if e.dragButton == noDrag || (dx == 0 && dy == 0) {
		return
	}

	s := e.primaryScene()
	if s == nil {
		return
	}
	ctrl := s.Camera().Controller()
	if ctrl == nil {
		return
	}

	// screen y grows downward
	switch e.dragButton {
	case common.MouseButtonLeft:
		ctrl.Orbit(float32(dx), float32(-dy))
	case common.MouseButtonRight:
		ctrl.PanRight(float32(-dx))
		ctrl.PanUp(float32(dy))
	}
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run() {
	e.running = true
	e.handle()
	e.window.ProcessMessages()

	e.signalQuit()
	e.wg.Wait()
	if err := e.window.Close(); err != nil {
		log.Printf("[Engine] close window: %v", err)
	}
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

func (e *engine) Done() <-chan struct{} {
	return e.quitChannel
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handle launches the engine and render goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] render goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			e.renderFrame(dt)

			// Frame rate limiting
			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// renderFrame prepares and draws every active scene in ascending key order. The first
// active scene's renderer owns the frame: BeginFrame once, each scene's draw calls, then
// EndFrame and Present once.
func (e *engine) renderFrame(dt float32) {
	active := e.activeScenes()

	if len(active) > 0 {
		frameRenderer := active[0].Renderer()
		for _, s := range active {
			s.Prepare()
		}
		if frameRenderer != nil {
			// a failed acquire (surface outdated during a resize) skips the frame
			if err := frameRenderer.BeginFrame(); err == nil {
				for _, s := range active {
					if err := s.DrawCalls(); err != nil {
						log.Printf("[Engine] scene %s: %v", s.Name(), err)
					}
				}
				frameRenderer.EndFrame()
				frameRenderer.Present()
			}
		}
	}

	if e.renderCallback != nil {
		e.renderCallback(dt)
	}

	if e.profilingEnabled && e.profiler != nil && e.profiler.Tick() {
		title := fmt.Sprintf("%s | %.0f FPS", e.title, e.profiler.Last().FPS)
		if len(active) > 0 {
			title = fmt.Sprintf("%s | level %d", title, active[0].Level())
		}
		e.pendingTitle.Store(&title)
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if e.running {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Second / time.Duration(fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}
