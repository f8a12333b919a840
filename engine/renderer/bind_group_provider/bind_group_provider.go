package bind_group_provider

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the implementation of the BindGroupProvider interface.
type bindGroupProvider struct {
	mu    sync.RWMutex
	label string

	// uniform resources for one @group index
	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout
	buffers         map[int]*wgpu.Buffer

	// mesh resources, only set on providers that own drawable geometry
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   int
}

// BindGroupProvider owns the GPU resources backing one bind group: the bind group itself,
// its layout and the uniform buffers keyed by binding index. Providers attached to a
// drawable also own its vertex and index buffers.
//
// Every method is safe for concurrent use; the renderer swaps mesh buffers on the render
// goroutine while the scene may read the index count from the tick goroutine.
type BindGroupProvider interface {
	// Release frees every GPU resource held by the provider. The provider may be reused
	// afterwards by assigning new resources.
	Release()

	// ReleaseMesh frees only the vertex and index buffers and resets the index count.
	ReleaseMesh()

	// Label returns the debug label used for GPU objects created for this provider.
	//
	// Returns:
	//   - string: the provider label
	Label() string

	// BindGroup returns the GPU bind group, or nil before InitBindGroup ran.
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the layout the bind group was created from.
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the uniform buffer bound at the given binding index.
	//
	// Parameters:
	//   - binding: the @binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer, or nil if none was created
	Buffer(binding int) *wgpu.Buffer

	// Buffers returns a copy of all uniform buffers keyed by binding index.
	Buffers() map[int]*wgpu.Buffer

	// VertexBuffer returns the mesh vertex buffer, or nil if the provider has no mesh.
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the mesh index buffer, or nil if the provider has no mesh.
	IndexBuffer() *wgpu.Buffer

	// IndexCount returns the number of uint32 indices in the index buffer.
	IndexCount() int

	// HasMesh reports whether both mesh buffers are present and at least one index is drawable.
	HasMesh() bool

	SetBindGroup(bg *wgpu.BindGroup)
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetMesh installs new mesh buffers and returns the ones they replace so the caller
	// can release them once the GPU no longer references them.
	//
	// Parameters:
	//   - vb: the new vertex buffer
	//   - ib: the new index buffer
	//   - indexCount: number of indices in ib
	//
	// Returns:
	//   - oldVB, oldIB: the previously installed buffers, possibly nil
	SetMesh(vb, ib *wgpu.Buffer, indexCount int) (oldVB, oldIB *wgpu.Buffer)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the given label and options applied.
//
// Parameters:
//   - label: debug label for GPU objects created from this provider
//   - options: functional options applied in order
//
// Returns:
//   - BindGroupProvider: the new provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:   label,
		buffers: make(map[int]*wgpu.Buffer),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.buffers[binding]
}

func (p *bindGroupProvider) Buffers() map[int]*wgpu.Buffer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[int]*wgpu.Buffer, len(p.buffers))
	for k, v := range p.buffers {
		out[k] = v
	}
	return out
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.vertexBuffer
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.indexCount
}

func (p *bindGroupProvider) HasMesh() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.vertexBuffer != nil && p.indexBuffer != nil && p.indexCount > 0
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.buffers == nil {
		p.buffers = make(map[int]*wgpu.Buffer)
	}
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetMesh(vb, ib *wgpu.Buffer, indexCount int) (oldVB, oldIB *wgpu.Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	oldVB, oldIB = p.vertexBuffer, p.indexBuffer
	p.vertexBuffer = vb
	p.indexBuffer = ib
	p.indexCount = indexCount
	return oldVB, oldIB
}

func (p *bindGroupProvider) ReleaseMesh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.releaseMeshLocked()
}

func (p *bindGroupProvider) releaseMeshLocked() {
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
	p.indexCount = 0
}

func (p *bindGroupProvider) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, i)
	}
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
	p.releaseMeshLocked()
}
