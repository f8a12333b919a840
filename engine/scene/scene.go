package scene

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/camera"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/controls"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/geometry"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/model"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/renderer"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
)

// Scene owns the demo's three models, the scene parameter uniform and the camera, and
// turns the control panel state into GPU uploads and draw calls every frame.
// The background rectangle is drawn with the flat pipeline, the icosphere with the disco
// pipeline and the cube is kept loaded but hidden.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// Controls returns the control panel state the scene renders from.
	Controls() controls.Controls

	// Models returns the scene's models in draw order: background, icosphere, cube.
	//
	// Returns:
	//   - []model.Model: a copy of the model list
	Models() []model.Model

	// Model returns the model with the given name, or nil.
	//
	// Parameters:
	//   - name: one of ModelNameBackground, ModelNameIcosphere or ModelNameCube
	//
	// Returns:
	//   - model.Model: the model or nil
	Model(name string) model.Model

	// Level returns the subdivision level of the icosphere currently on screen. It trails
	// Controls().Tessellations() while an asynchronous rebuild is in flight.
	Level() int

	// Time returns the shader animation clock.
	Time() float32

	// Dimensions returns the framebuffer size the scene was last resized to.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	Dimensions() (int, int)

	// Resize updates the surface size, the camera aspect ratio, the dimensions uniform and
	// rebuilds the background rectangle. Non-positive sizes are ignored.
	//
	// Parameters:
	//   - width: new width in pixels
	//   - height: new height in pixels
	Resize(width, height int)

	// LoadScene rebuilds every model's mesh from the current control values. The three
	// meshes are built in parallel; if any build fails no model is changed.
	//
	// Parameters:
	//   - ctx: cancels the rebuild before the meshes are swapped in
	//
	// Returns:
	//   - error: the first build error, or the context error
	LoadScene(ctx context.Context) error

	// Prepare runs the CPU side of a frame: camera update, pending Load Scene requests,
	// icosphere level changes, mesh uploads and uniform writes. Call it before the
	// renderer's BeginFrame.
	Prepare()

	// DrawCalls draws the flat pipeline's models and then the disco pipeline's, and
	// advances the animation clock by TimeStep.
	// Must be called within a BeginFrame/EndFrame block on the renderer.
	//
	// Returns:
	//   - error: error if a draw call fails
	DrawCalls() error

	// Release frees the GPU resources held by the scene's providers and stops the rebuild
	// pool. Later calls are no-ops, and Prepare no longer changes the icosphere.
	Release()
}

// icosphereBuild is a finished asynchronous icosphere build.
type icosphereBuild struct {
	level int
	mesh  *geometry.Mesh
	err   error
}

// providerSlot names the provider bound at one group of a pipeline.
type providerSlot struct {
	identity shader.AnnotationArg
	binding  int
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	cam  camera.Camera
	r    renderer.Renderer
	ctrl controls.Controls

	pipelines     []pipeline.Pipeline
	pipelineOrder []string
	// groupPlan lists, per pipeline key, the provider bound at each group index.
	groupPlan map[string][]providerSlot

	sceneProvider bind_group_provider.BindGroupProvider
	initialized   map[bind_group_provider.BindGroupProvider]bool

	models   []model.Model
	byName   map[string]model.Model
	uploaded map[model.Model]uint64

	width, height int
	time          float32

	// level is the subdivision level of the icosphere mesh on the model.
	level     int
	meshCache map[int]*geometry.Mesh

	// builds carries finished asynchronous builds back to the render thread. At most one
	// build is in flight, so the worker's send never blocks.
	builds   chan icosphereBuild
	building bool
	released bool

	asyncRebuild   bool
	rebuildPool    worker.DynamicWorkerPool
	rebuildWorkers int

	// Pre-allocated slices reused each frame to avoid per-frame allocations.
	writePool          []bind_group_provider.BufferWrite
	drawBindGroupsPool []bind_group_provider.BindGroupProvider
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates the demo scene, registers its pipelines with the renderer, builds the
// initial meshes from ctrl and initializes every bind group the pipelines use.
// NewScene panics if cam, r or ctrl is nil, or if GPU setup fails.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - r: the renderer to attach (must not be nil)
//   - ctrl: the control panel state (must not be nil)
//   - width: initial framebuffer width in pixels
//   - height: initial framebuffer height in pixels
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, r renderer.Renderer, ctrl controls.Controls, width, height int, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}
	if ctrl == nil {
		panic("scene: NewScene requires non-nil Controls")
	}

	s := &scene{
		mu:                 &sync.RWMutex{},
		name:               name,
		cam:                cam,
		r:                  r,
		ctrl:               ctrl,
		groupPlan:          make(map[string][]providerSlot),
		sceneProvider:      bind_group_provider.NewBindGroupProvider(name + "_scene_params"),
		initialized:        make(map[bind_group_provider.BindGroupProvider]bool),
		byName:             make(map[string]model.Model),
		uploaded:           make(map[model.Model]uint64),
		width:              max(width, 1),
		height:             max(height, 1),
		level:              -1,
		meshCache:          make(map[int]*geometry.Mesh),
		builds:             make(chan icosphereBuild, 1),
		asyncRebuild:       true,
		rebuildWorkers:     max(runtime.NumCPU()/2, 1),
		drawBindGroupsPool: make([]bind_group_provider.BindGroupProvider, 0, 3),
	}

	for _, option := range options {
		option(s)
	}

	if s.pipelines == nil {
		pipelines, err := DefaultPipelines()
		if err != nil {
			panic(fmt.Sprintf("scene: failed to build pipelines: %v", err))
		}
		s.pipelines = pipelines
	}

	// one build in flight at a time
	s.rebuildPool = worker.NewDynamicWorkerPool(s.rebuildWorkers, 1, 1*time.Second)

	if err := r.RegisterPipelines(s.pipelines...); err != nil {
		panic(fmt.Sprintf("scene: failed to register pipelines: %v", err))
	}
	for _, p := range s.pipelines {
		s.pipelineOrder = append(s.pipelineOrder, p.PipelineKey())
		s.groupPlan[p.PipelineKey()] = planGroups(p)
	}

	cam.SetAspect(float32(s.width) / float32(s.height))

	s.models = []model.Model{
		model.NewModel(model.WithName(ModelNameBackground), model.WithPipelineKey(PipelineKeyFlat)),
		model.NewModel(model.WithName(ModelNameIcosphere), model.WithPipelineKey(PipelineKeyDisco)),
		model.NewModel(model.WithName(ModelNameCube), model.WithPipelineKey(PipelineKeyDisco), model.WithVisible(false)),
	}
	for _, m := range s.models {
		s.byName[m.Name()] = m
	}

	if err := s.LoadScene(context.Background()); err != nil {
		panic(fmt.Sprintf("scene: failed to load meshes: %v", err))
	}

	if err := s.initBindGroups(); err != nil {
		panic(fmt.Sprintf("scene: failed to init bind groups: %v", err))
	}

	return s
}

// planGroups maps every bind group of p to the provider identity declared for it. Both
// stages are consulted; a group declared by either stage is bound.
func planGroups(p pipeline.Pipeline) []providerSlot {
	plan := make([]providerSlot, 0, 3)
	for _, st := range []shader.ShaderType{shader.ShaderTypeVertex, shader.ShaderTypeFragment} {
		sh := p.Shader(st)
		if sh == nil {
			continue
		}
		for _, decl := range sh.Declarations() {
			if decl.Group == nil || decl.Binding == nil {
				continue
			}
			g := *decl.Group
			for len(plan) <= g {
				plan = append(plan, providerSlot{})
			}
			if plan[g].identity == "" {
				plan[g] = providerSlot{identity: decl.ProviderIdentity(), binding: *decl.Binding}
			}
		}
	}
	return plan
}

// providerFor resolves a provider identity to the provider bound for m.
func (s *scene) providerFor(identity shader.AnnotationArg, m model.Model) bind_group_provider.BindGroupProvider {
	switch identity {
	case shader.AnnotationArgProviderCamera:
		return s.cam.BindGroupProvider()
	case shader.AnnotationArgProviderModel:
		return m.ModelProvider()
	case shader.AnnotationArgProviderScene:
		return s.sceneProvider
	default:
		return nil
	}
}

// initBindGroups creates the uniform buffers of every provider a pipeline binds. Shared
// providers (camera, scene parameters) are initialized once.
func (s *scene) initBindGroups() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.pipelines {
		layouts := renderer.MergedBindGroupLayouts(p)
		plan := s.groupPlan[p.PipelineKey()]
		for _, m := range s.models {
			if m.PipelineKey() != p.PipelineKey() {
				continue
			}
			for g, slot := range plan {
				bgp := s.providerFor(slot.identity, m)
				if bgp == nil || s.initialized[bgp] {
					continue
				}
				if err := s.r.InitBindGroup(bgp, layouts[g]); err != nil {
					return fmt.Errorf("%s group %d (%s): %w", p.PipelineKey(), g, slot.identity, err)
				}
				s.initialized[bgp] = true
			}
		}
	}
	return nil
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) Renderer() renderer.Renderer {
	return s.r
}

func (s *scene) Controls() controls.Controls {
	return s.ctrl
}

func (s *scene) Models() []model.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Model, len(s.models))
	copy(out, s.models)
	return out
}

func (s *scene) Model(name string) model.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byName[name]
}

func (s *scene) Level() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.level
}

func (s *scene) Time() float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.time
}

func (s *scene) Dimensions() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height
}

func (s *scene) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}

	rect, err := geometry.Rectangle(mgl32.Vec3{}, float32(width), float32(height))
	if err != nil {
		log.Printf("[Scene] resize %dx%d: %v", width, height, err)
		return
	}

	s.r.Resize(width, height)
	s.cam.SetAspect(float32(width) / float32(height))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
	s.byName[ModelNameBackground].SetMesh(rect)
}

// cachedIcosphere returns the icosphere mesh for level, building and caching it when
// absent. Caller must not hold the mutex.
func (s *scene) cachedIcosphere(level int) (*geometry.Mesh, error) {
	s.mu.RLock()
	mesh, ok := s.meshCache[level]
	s.mu.RUnlock()
	if ok {
		return mesh, nil
	}

	mesh, err := geometry.Icosphere(IcospherePosition, IcosphereRadius, level)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.meshCache[level] = mesh
	s.mu.Unlock()
	return mesh, nil
}

func (s *scene) LoadScene(ctx context.Context) error {
	level := s.ctrl.Tessellations()
	width, height := s.Dimensions()

	var sphere, rect, cube *geometry.Mesh
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		m, err := s.cachedIcosphere(level)
		if err != nil {
			return fmt.Errorf("icosphere level %d: %w", level, err)
		}
		sphere = m
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		m, err := geometry.Rectangle(mgl32.Vec3{}, float32(width), float32(height))
		if err != nil {
			return fmt.Errorf("background %dx%d: %w", width, height, err)
		}
		rect = m
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		m, err := geometry.Cube(CubePosition, CubeScale)
		if err != nil {
			return fmt.Errorf("cube: %w", err)
		}
		cube = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byName[ModelNameBackground].SetMesh(rect)
	s.byName[ModelNameIcosphere].SetMesh(sphere)
	s.byName[ModelNameCube].SetMesh(cube)
	s.level = level
	return nil
}

// requestIcosphere submits an icosphere build for level to the rebuild pool. The task
// only reports its result on s.builds, so it never contends for the scene mutex.
// Caller must not hold the mutex.
func (s *scene) requestIcosphere(level int) {
	builds := s.builds
	s.rebuildPool.SubmitTask(worker.Task{
		ID: level,
		Do: func() (any, error) {
			mesh, err := geometry.Icosphere(IcospherePosition, IcosphereRadius, level)
			builds <- icosphereBuild{level: level, mesh: mesh, err: err}
			return mesh, err
		},
	})
}

// syncIcosphere brings the icosphere model to the requested tessellation level. Cached
// levels swap in immediately; others are built on the rebuild pool (or inline when
// asynchronous rebuilds are disabled) and swapped in by a later frame. While a build is in
// flight no other is submitted; its result is cached when it lands, shown only if its level
// is still the one wanted, and the newest wanted level is requested after it.
func (s *scene) syncIcosphere() {
	want := s.ctrl.Tessellations()

	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}

	select {
	case build := <-s.builds:
		s.building = false
		if build.err != nil {
			log.Printf("[Scene] icosphere level %d: %v", build.level, build.err)
		} else {
			s.meshCache[build.level] = build.mesh
		}
	default:
	}

	if want == s.level {
		s.mu.Unlock()
		return
	}

	if mesh, ok := s.meshCache[want]; ok {
		s.byName[ModelNameIcosphere].SetMesh(mesh)
		s.level = want
		s.mu.Unlock()
		return
	}

	if !s.asyncRebuild {
		defer s.mu.Unlock()
		mesh, err := geometry.Icosphere(IcospherePosition, IcosphereRadius, want)
		if err != nil {
			log.Printf("[Scene] icosphere level %d: %v", want, err)
			return
		}
		s.meshCache[want] = mesh
		s.byName[ModelNameIcosphere].SetMesh(mesh)
		s.level = want
		return
	}

	if s.building {
		s.mu.Unlock()
		return
	}
	s.building = true
	s.mu.Unlock()

	s.requestIcosphere(want)
}

// uploadMeshes re-uploads the vertex and index buffers of every model whose mesh version
// changed since its last upload.
func (s *scene) uploadMeshes() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.models {
		v := m.MeshVersion()
		if last, ok := s.uploaded[m]; ok && last == v {
			continue
		}
		if m.IndexCount() == 0 {
			continue
		}
		if err := s.r.UploadMesh(m.MeshProvider(), m.VertexData(), m.IndexData(), m.IndexCount()); err != nil {
			log.Printf("[Scene] upload %s: %v", m.Name(), err)
			continue
		}
		s.uploaded[m] = v
	}
}

// writeUniforms queues the camera, per-model and scene parameter uniforms.
func (s *scene) writeUniforms() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writePool = s.writePool[:0]

	camUniform := s.cam.Uniform()
	params := s.ctrl.SceneParams(s.time, mgl32.Vec2{float32(s.width), float32(s.height)})

	written := make(map[bind_group_provider.BindGroupProvider]bool, len(s.models)+2)
	for _, m := range s.models {
		for _, slot := range s.groupPlan[m.PipelineKey()] {
			bgp := s.providerFor(slot.identity, m)
			if bgp == nil || written[bgp] {
				continue
			}
			written[bgp] = true

			var data []byte
			switch slot.identity {
			case shader.AnnotationArgProviderCamera:
				data = camUniform.Marshal()
			case shader.AnnotationArgProviderModel:
				md := m.GPUModelData()
				data = md.Marshal()
			case shader.AnnotationArgProviderScene:
				data = params.Marshal()
			default:
				continue
			}
			s.writePool = append(s.writePool, bind_group_provider.BufferWrite{
				Provider: bgp,
				Binding:  slot.binding,
				Data:     data,
			})
		}
	}

	if len(s.writePool) > 0 {
		s.r.WriteBuffers(s.writePool)
	}
}

func (s *scene) Prepare() {
	s.cam.Update()

	if s.ctrl.TakeLoadScene() {
		if err := s.LoadScene(context.Background()); err != nil {
			log.Printf("[Scene] load scene: %v", err)
		} else {
			log.Printf("[Scene] scene loaded at tessellation level %d", s.Level())
		}
	}

	s.syncIcosphere()
	s.uploadMeshes()
	s.writeUniforms()
}

func (s *scene) DrawCalls() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range s.pipelineOrder {
		plan := s.groupPlan[key]
		for _, m := range s.models {
			if m.PipelineKey() != key || !m.Visible() {
				continue
			}
			if _, ok := s.uploaded[m]; !ok {
				continue
			}

			s.drawBindGroupsPool = s.drawBindGroupsPool[:0]
			for _, slot := range plan {
				s.drawBindGroupsPool = append(s.drawBindGroupsPool, s.providerFor(slot.identity, m))
			}
			if err := s.r.DrawCall(key, m.MeshProvider(), s.drawBindGroupsPool); err != nil {
				return fmt.Errorf("draw %s: %w", m.Name(), err)
			}
		}
	}

	s.time += TimeStep
	return nil
}

func (s *scene) Release() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	defer s.rebuildPool.Stop()
	defer s.mu.Unlock()

	for _, m := range s.models {
		m.MeshProvider().Release()
		m.ModelProvider().Release()
	}
	s.sceneProvider.Release()
	s.uploaded = make(map[model.Model]uint64)
	s.initialized = make(map[bind_group_provider.BindGroupProvider]bool)
}
