package common

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// webGPUClipCorrection remaps OpenGL clip depth [-1, 1] into the WebGPU range [0, 1].
// Column-major, applied on the left of an mgl32 projection.
var webGPUClipCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Perspective creates a perspective projection matrix for WebGPU clip space.
// mgl32 builds the OpenGL form; the result is corrected so depth lands in [0, 1].
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	return webGPUClipCorrection.Mul4(mgl32.Perspective(fovY, aspect, near, far))
}

// ModelMatrix builds a translate-then-scale model matrix.
//
// Parameters:
//   - position: translation in world space
//   - scale: per-axis scale factors
//
// Returns:
//   - mgl32.Mat4: T * S
func ModelMatrix(position, scale mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(position.X(), position.Y(), position.Z()).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

// InverseTranspose returns the inverse of the transpose of m, the matrix used to carry
// normals through a model transform. A singular m yields the identity.
func InverseTranspose(m mgl32.Mat4) mgl32.Mat4 {
	if m.Det() == 0 {
		return mgl32.Ident4()
	}
	return m.Transpose().Inv()
}

// PutMat4 writes a column-major matrix into buf as 16 little-endian float32 values.
// buf must hold at least 64 bytes.
func PutMat4(buf []byte, m mgl32.Mat4) {
	for i, v := range m {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
}

// PutVec4 writes four little-endian float32 values into buf. buf must hold at least 16 bytes.
func PutVec4(buf []byte, v mgl32.Vec4) {
	for i, c := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(c))
	}
}

// PutFloat32 writes a single little-endian float32 into buf.
func PutFloat32(buf []byte, v float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
}

// Uint32sToBytes converts an index slice into a little-endian byte slice for GPU upload.
//
// Parameters:
//   - data: source indices
//
// Returns:
//   - []byte: a newly allocated byte slice, or nil if data is empty
func Uint32sToBytes(data []uint32) []byte {
	if len(data) == 0 {
		return nil
	}
	out := make([]byte, len(data)*4)
	for i, v := range data {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

// ApproxEqual reports whether a and b differ by at most eps.
func ApproxEqual(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}
