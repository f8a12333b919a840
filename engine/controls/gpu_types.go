package controls

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-icosphere/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUSceneParamsSource is the canonical WGSL definition of the SceneParams struct.
// Matches GPUSceneParams layout exactly (64 bytes).
//
//go:embed assets/scene_params.wgsl
var GPUSceneParamsSource string

// GPUSceneParams is the per-frame uniform shared by the background and icosphere shaders.
// Toggles are +1 when enabled and -1 when disabled.
// Size: 64 bytes.
type GPUSceneParams struct {
	Color        mgl32.Vec4 // offset  0: base color, rgb/255 with alpha 1
	Dimensions   mgl32.Vec2 // offset 16: framebuffer size in pixels
	Time         float32    // offset 24: animation clock
	BgToggle     int32      // offset 28
	DeformToggle int32      // offset 32
	BgSpeed      float32    // offset 36
	BgDist       float32    // offset 40
	BgZoom       float32    // offset 44
	FbmFreq      float32    // offset 48
	FbmAmp       float32    // offset 52
	FbmOct       int32      // offset 56
	_pad         float32    // offset 60
}

// Size returns the size of the GPUSceneParams struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUSceneParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSceneParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (g *GPUSceneParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutVec4(buf[0:], g.Color)
	common.PutFloat32(buf[16:], g.Dimensions[0])
	common.PutFloat32(buf[20:], g.Dimensions[1])
	common.PutFloat32(buf[24:], g.Time)
	binary.LittleEndian.PutUint32(buf[28:], uint32(g.BgToggle))
	binary.LittleEndian.PutUint32(buf[32:], uint32(g.DeformToggle))
	common.PutFloat32(buf[36:], g.BgSpeed)
	common.PutFloat32(buf[40:], g.BgDist)
	common.PutFloat32(buf[44:], g.BgZoom)
	common.PutFloat32(buf[48:], g.FbmFreq)
	common.PutFloat32(buf[52:], g.FbmAmp)
	binary.LittleEndian.PutUint32(buf[56:], uint32(g.FbmOct))
	binary.LittleEndian.PutUint32(buf[60:], math.Float32bits(0))
	return buf
}
