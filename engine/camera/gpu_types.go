package camera

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-icosphere/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUCameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (112 bytes).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the GPU-aligned representation of the camera uniform buffer.
// vec3 values are widened to vec4 so every member sits on a 16 byte boundary.
// Size: 112 bytes.
type GPUCameraUniform struct {
	ViewProj mgl32.Mat4 // offset  0: combined view-projection matrix
	Eye      mgl32.Vec4 // offset 64: world-space eye position, w = 1
	Ref      mgl32.Vec4 // offset 80: look-at point, w = 1
	Up       mgl32.Vec4 // offset 96: up vector, w = 0
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (112)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutMat4(buf[0:], g.ViewProj)
	common.PutVec4(buf[64:], g.Eye)
	common.PutVec4(buf[80:], g.Ref)
	common.PutVec4(buf[96:], g.Up)
	return buf
}
