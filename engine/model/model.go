package model

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-icosphere/common"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/geometry"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/renderer/bind_group_provider"
	"github.com/go-gl/mathgl/mgl32"
)

// model is the implementation of the Model interface.
type model struct {
	mu *sync.Mutex

	name        string
	pipelineKey string
	visible     bool

	position mgl32.Vec3
	scale    mgl32.Vec3
	color    mgl32.Vec4

	mesh                  *geometry.Mesh
	meshVersion           uint64
	vertexData, indexData []byte
	indexCount            int

	meshProvider  bind_group_provider.BindGroupProvider
	modelProvider bind_group_provider.BindGroupProvider
}

// Model defines the interface for a drawable scene object.
// A Model pairs a procedural geometry.Mesh with its world transform, base color and the
// GPU providers holding its vertex/index buffers and its ModelData uniform.
//
// Replacing the mesh re-serializes the vertex and index data and bumps MeshVersion, which
// is how the scene notices that GPU buffers must be re-uploaded.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// PipelineKey returns the render pipeline this model is drawn with.
	//
	// Returns:
	//   - string: the pipeline key, empty if the model is never drawn
	PipelineKey() string

	// Visible reports whether the model takes part in draw calls.
	Visible() bool

	// SetVisible toggles whether the model takes part in draw calls.
	SetVisible(visible bool)

	// Position returns the world-space translation applied by the model matrix.
	Position() mgl32.Vec3

	// SetPosition sets the world-space translation applied by the model matrix.
	SetPosition(pos mgl32.Vec3)

	// Scale returns the per-axis scale applied by the model matrix.
	Scale() mgl32.Vec3

	// SetScale sets the per-axis scale applied by the model matrix.
	SetScale(scale mgl32.Vec3)

	// Color returns the base vertex color.
	Color() mgl32.Vec4

	// SetColor changes the base vertex color and re-serializes the vertex data.
	//
	// Parameters:
	//   - color: RGBA color in [0, 1]
	SetColor(color mgl32.Vec4)

	// Mesh returns the current geometry, or nil if none was set.
	Mesh() *geometry.Mesh

	// SetMesh replaces the geometry, regenerates vertex and index data and increments MeshVersion.
	//
	// Parameters:
	//   - mesh: the new mesh; nil clears the model's geometry
	SetMesh(mesh *geometry.Mesh)

	// MeshVersion returns a counter incremented by every SetMesh or SetColor call.
	//
	// Returns:
	//   - uint64: the current mesh version
	MeshVersion() uint64

	// VertexData returns the serialized GPUVertex data of the current mesh.
	VertexData() []byte

	// IndexData returns the serialized uint32 index data of the current mesh.
	IndexData() []byte

	// IndexCount returns the number of indices in IndexData.
	IndexCount() int

	// ModelMatrix returns translate(Position) * scale(Scale).
	ModelMatrix() mgl32.Mat4

	// GPUModelData returns the model matrix and its inverse transpose ready for upload.
	GPUModelData() GPUModelData

	// MeshProvider retrieves the provider holding the vertex and index buffers.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh provider
	MeshProvider() bind_group_provider.BindGroupProvider

	// ModelProvider retrieves the provider holding the ModelData uniform bind group.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the model data provider
	ModelProvider() bind_group_provider.BindGroupProvider
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
// Defaults: visible, unit scale, white color, providers labelled after the model name.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{
		mu:      &sync.Mutex{},
		visible: true,
		scale:   mgl32.Vec3{1, 1, 1},
		color:   mgl32.Vec4{1, 1, 1, 1},
	}
	for _, opt := range options {
		opt(m)
	}
	if m.meshProvider == nil {
		m.meshProvider = bind_group_provider.NewBindGroupProvider(m.name + "_mesh")
	}
	if m.modelProvider == nil {
		m.modelProvider = bind_group_provider.NewBindGroupProvider(m.name + "_model_data")
	}
	if m.mesh != nil {
		m.rebuildLocked()
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) PipelineKey() string {
	return m.pipelineKey
}

func (m *model) Visible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible
}

func (m *model) SetVisible(visible bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visible = visible
}

func (m *model) Position() mgl32.Vec3 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *model) SetPosition(pos mgl32.Vec3) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = pos
}

func (m *model) Scale() mgl32.Vec3 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scale
}

func (m *model) SetScale(scale mgl32.Vec3) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scale = scale
}

func (m *model) Color() mgl32.Vec4 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.color
}

func (m *model) SetColor(color mgl32.Vec4) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.color == color {
		return
	}
	m.color = color
	if m.mesh != nil {
		m.rebuildLocked()
	}
}

func (m *model) Mesh() *geometry.Mesh {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mesh
}

func (m *model) SetMesh(mesh *geometry.Mesh) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mesh = mesh
	m.rebuildLocked()
}

func (m *model) MeshVersion() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.meshVersion
}

func (m *model) VertexData() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vertexData
}

func (m *model) IndexData() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexData
}

func (m *model) IndexCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexCount
}

func (m *model) ModelMatrix() mgl32.Mat4 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return common.ModelMatrix(m.position, m.scale)
}

func (m *model) GPUModelData() GPUModelData {
	mat := m.ModelMatrix()
	return GPUModelData{
		Model:      mat,
		ModelInvTr: common.InverseTranspose(mat),
	}
}

func (m *model) MeshProvider() bind_group_provider.BindGroupProvider {
	return m.meshProvider
}

func (m *model) ModelProvider() bind_group_provider.BindGroupProvider {
	return m.modelProvider
}

// rebuildLocked serializes the current mesh into GPUVertex and index bytes.
// Caller must hold the mutex.
func (m *model) rebuildLocked() {
	m.meshVersion++
	if m.mesh == nil {
		m.vertexData, m.indexData, m.indexCount = nil, nil, 0
		return
	}
	m.vertexData = marshalVertices(m.mesh, m.color)
	indices := m.mesh.Indices()
	m.indexData = common.Uint32sToBytes(indices)
	m.indexCount = len(indices)
}

// marshalVertices interleaves mesh positions, normals and a uniform color into GPUVertex bytes.
func marshalVertices(mesh *geometry.Mesh, color mgl32.Vec4) []byte {
	var v GPUVertex
	stride := v.Size()
	buf := make([]byte, mesh.VertexCount()*stride)
	v.Color = color
	for i, p := range mesh.Positions {
		v.Position = p.Vec4(1)
		v.Normal = mesh.Normals[i].Vec4(0)
		v.MarshalInto(buf[i*stride:])
	}
	return buf
}
