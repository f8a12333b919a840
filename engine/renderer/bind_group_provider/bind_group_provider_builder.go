package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option for configuring a BindGroupProvider.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBindGroupLayout sets a pre-created bind group layout on the provider.
//
// Parameters:
//   - bgl: the layout to attach
//
// Returns:
//   - BindGroupProviderOption: functional option to set the layout
func WithBindGroupLayout(bgl *wgpu.BindGroupLayout) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bindGroupLayout = bgl
	}
}

// WithBuffer attaches a uniform buffer at the given binding index.
//
// Parameters:
//   - binding: the @binding index
//   - buf: the buffer to attach
//
// Returns:
//   - BindGroupProviderOption: functional option to set the buffer
func WithBuffer(binding int, buf *wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = buf
	}
}

// WithIndexCount presets the index count, used by providers whose mesh buffers are
// uploaded later.
func WithIndexCount(count int) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.indexCount = count
	}
}
