package model

import (
	"github.com/Carmen-Shannon/oxy-icosphere/engine/geometry"
	"github.com/go-gl/mathgl/mgl32"
)

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithPipelineKey sets the render pipeline the Model is drawn with.
//
// Parameters:
//   - key: the pipeline key registered with the renderer
//
// Returns:
//   - ModelBuilderOption: a function that applies the pipeline key to a model
func WithPipelineKey(key string) ModelBuilderOption {
	return func(m *model) {
		m.pipelineKey = key
	}
}

// WithMesh sets the initial geometry of the Model.
//
// Parameters:
//   - mesh: the geometry to draw
//
// Returns:
//   - ModelBuilderOption: a function that applies the mesh to a model
func WithMesh(mesh *geometry.Mesh) ModelBuilderOption {
	return func(m *model) {
		m.mesh = mesh
	}
}

// WithPosition sets the world-space translation of the Model.
func WithPosition(pos mgl32.Vec3) ModelBuilderOption {
	return func(m *model) {
		m.position = pos
	}
}

// WithScale sets the per-axis scale of the Model.
func WithScale(scale mgl32.Vec3) ModelBuilderOption {
	return func(m *model) {
		m.scale = scale
	}
}

// WithColor sets the base vertex color of the Model.
//
// Parameters:
//   - color: RGBA color in [0, 1]
//
// Returns:
//   - ModelBuilderOption: a function that applies the color to a model
func WithColor(color mgl32.Vec4) ModelBuilderOption {
	return func(m *model) {
		m.color = color
	}
}

// WithVisible sets whether the Model takes part in draw calls. Models are visible by default.
func WithVisible(visible bool) ModelBuilderOption {
	return func(m *model) {
		m.visible = visible
	}
}
