package renderer

import "strings"

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately. May tear but has the lowest latency.
	PresentModeUncapped
)

// ParsePresentMode maps a config string to a PresentMode, ignoring case. Unknown values
// select VSync.
//
// Parameters:
//   - s: "vsync" or "uncapped"
//
// Returns:
//   - PresentMode: the matching mode
func ParsePresentMode(s string) PresentMode {
	if strings.EqualFold(strings.TrimSpace(s), "uncapped") {
		return PresentModeUncapped
	}
	return PresentModeVSync
}

// MSAASampleCount is the number of samples used for multisample anti-aliasing.
// WebGPU guarantees support for 1 and 4 only.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing.
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// ClearColor is the RGBA color the main pass clears to.
type ClearColor struct {
	R, G, B, A float64
}

// DefaultClearColor is the dark grey behind the scene when the background is disabled.
var DefaultClearColor = ClearColor{R: 0.2, G: 0.2, B: 0.2, A: 1}

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}
