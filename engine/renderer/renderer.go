package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-icosphere/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	clearColor           ClearColor
}

// Renderer is the high-level drawing API used by the scene. It caches render pipelines by
// key, owns GPU buffer creation for meshes and uniforms, and brackets each frame with
// BeginFrame, DrawCall, EndFrame and Present.
type Renderer interface {
	// Pipeline returns the registered pipeline for key, or nil.
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines creates the GPU objects for each pipeline and caches it by key.
	// Keys that are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reconfigures the surface and its attachments for a new size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// SetClearColor changes the color the main pass clears to, starting with the next frame.
	SetClearColor(c ClearColor)

	// UploadMesh creates vertex and index buffers from the given bytes and installs them on
	// provider. Buffers the provider held before are released, so the same provider can be
	// re-uploaded whenever its mesh changes.
	//
	// Parameters:
	//   - provider: the mesh provider receiving the buffers
	//   - vertexData: packed vertex bytes
	//   - indexData: packed uint32 indices
	//   - indexCount: the number of indices
	//
	// Returns:
	//   - error: an error if either buffer cannot be created
	UploadMesh(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates the uniform buffers and the bind group described by descriptor
	// and stores them on provider. Buffers already present on the provider are reused.
	//
	// Parameters:
	//   - provider: the provider to initialize
	//   - descriptor: the layout, usually from MergedBindGroupLayouts
	//
	// Returns:
	//   - error: an error if a buffer or the bind group cannot be created
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// WriteBuffers queues uniform uploads. Writes to providers without a buffer at the
	// binding are skipped.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the swapchain texture and begins the main render pass.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// DrawCall encodes one indexed draw in the current pass. bindGroups[i] is bound at group i.
	//
	// Parameters:
	//   - pipelineKey: the registered pipeline to draw with
	//   - meshProvider: the provider holding vertex and index buffers
	//   - bindGroups: providers bound at consecutive group indices
	//
	// Returns:
	//   - error: an error if the pipeline is unknown or the mesh is not uploaded
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame ends the main pass and submits it. Call Present afterwards.
	EndFrame()

	// Present shows the frame and releases the swapchain texture.
	Present()

	// SetPresentMode changes the present mode. Takes effect on the next Resize.
	SetPresentMode(mode PresentMode)
}

var _ Renderer = &renderer{}

// NewRenderer creates the Renderer for the given window and configures its surface.
// It panics if no adapter or device is available.
//
// Parameters:
//   - backendType: the GPU backend to use
//   - window: the window providing the surface descriptor and initial size
//   - options: functional options applied before the backend is created
//
// Returns:
//   - Renderer: the ready renderer
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		clearColor:    DefaultClearColor,
	}

	// options first so forceFallbackAdapter is known before the adapter request
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	r.backend.SetClearColor(r.clearColor)

	r.backend.ConfigureSurface(window.Width(), window.Height())
	return r
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		// minimized; keep the old surface until a real size arrives
		return
	}
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetClearColor(c ClearColor) {
	r.backend.SetClearColor(c)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("register pipeline %q: %w", key, err)
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) UploadMesh(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.UploadMesh(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	return r.backend.InitBindGroup(provider, descriptor)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}
	if !meshProvider.HasMesh() {
		return fmt.Errorf("draw %q: %s has no mesh uploaded", pipelineKey, meshProvider.Label())
	}

	r.backend.DrawCall(p, meshProvider, bindGroups)
	return nil
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}
