package model

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-icosphere/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct.
// Matches GPUVertex layout exactly (48 bytes).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertex is the GPU-aligned representation of a single mesh vertex.
// Every attribute is a vec4 so the layout needs no padding.
// Size: 48 bytes.
type GPUVertex struct {
	Position [4]float32 // offset  0: model-space position, w = 1
	Normal   [4]float32 // offset 16: unit normal, w = 0
	Color    [4]float32 // offset 32: per-vertex RGBA color
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (48)
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalInto writes the vertex into buf, which must hold at least Size() bytes.
func (g *GPUVertex) MarshalInto(buf []byte) {
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Position[i]))
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.Normal[i]))
		binary.LittleEndian.PutUint32(buf[32+i*4:], math.Float32bits(g.Color[i]))
	}
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, g.Size())
	g.MarshalInto(buf)
	return buf
}

// GPUModelDataSource is the canonical WGSL definition of the ModelData struct.
// Matches GPUModelData layout exactly (128 bytes).
//
//go:embed assets/model_data.wgsl
var GPUModelDataSource string

// GPUModelData is the GPU-aligned per-object transform uniform.
// Size: 128 bytes (two mat4x4<f32>).
type GPUModelData struct {
	Model      mgl32.Mat4 // offset  0: model-to-world transform
	ModelInvTr mgl32.Mat4 // offset 64: inverse transpose of Model, transforms normals
}

// Size returns the size of the GPUModelData struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (128)
func (g *GPUModelData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUModelData struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 128-byte buffer ready for GPU upload
func (g *GPUModelData) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutMat4(buf[0:], g.Model)
	common.PutMat4(buf[64:], g.ModelInvTr)
	return buf
}
