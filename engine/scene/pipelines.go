package scene

import (
	"embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-icosphere/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

//go:embed assets/*.wgsl
var assets embed.FS

const (
	// PipelineKeyFlat draws the full-screen background.
	PipelineKeyFlat = "flat"

	// PipelineKeyDisco draws the icosphere with deformation and palette shading.
	PipelineKeyDisco = "disco"
)

// Names of the scene's models, usable with Scene.Model.
const (
	ModelNameBackground = "background"
	ModelNameIcosphere  = "icosphere"
	ModelNameCube       = "cube"
)

// TimeStep is added to the animation clock after every drawn frame.
const TimeStep float32 = 0.005

// Placement of the icosphere and the cube. The positions are baked into the meshes, so
// the model matrices stay identity.
var (
	IcospherePosition = mgl32.Vec3{0, 0, 0}
	IcosphereRadius   = float32(1)

	CubePosition = mgl32.Vec3{0, -1.5, 0}
	CubeScale    = float32(1)
)

// loadShader parses an embedded WGSL asset.
func loadShader(key string, shaderType shader.ShaderType, file string) (shader.Shader, error) {
	src, err := assets.ReadFile("assets/" + file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return shader.ParseShader(key, shaderType, string(src))
}

// DefaultPipelines builds the flat and disco pipelines from the embedded shaders. The
// flat pipeline ignores depth so the background never occludes the icosphere.
//
// Returns:
//   - []pipeline.Pipeline: the flat and disco pipelines, in draw order
//   - error: an error if a shader fails to parse
func DefaultPipelines() ([]pipeline.Pipeline, error) {
	flatVert, err := loadShader("flat-vert", shader.ShaderTypeVertex, "flat-vert.wgsl")
	if err != nil {
		return nil, err
	}
	flatFrag, err := loadShader("flat-frag", shader.ShaderTypeFragment, "flat-frag.wgsl")
	if err != nil {
		return nil, err
	}
	discoVert, err := loadShader("custom-vert", shader.ShaderTypeVertex, "custom-vert.wgsl")
	if err != nil {
		return nil, err
	}
	discoFrag, err := loadShader("custom-frag", shader.ShaderTypeFragment, "custom-frag.wgsl")
	if err != nil {
		return nil, err
	}

	flat := pipeline.NewPipeline(PipelineKeyFlat,
		pipeline.WithVertexShader(flatVert),
		pipeline.WithFragmentShader(flatFrag),
		pipeline.WithDepthTestEnabled(false),
		pipeline.WithDepthWriteEnabled(false),
		pipeline.WithCullMode(wgpu.CullModeNone),
	)
	disco := pipeline.NewPipeline(PipelineKeyDisco,
		pipeline.WithVertexShader(discoVert),
		pipeline.WithFragmentShader(discoFrag),
		pipeline.WithDepthTestEnabled(true),
		pipeline.WithDepthWriteEnabled(true),
		pipeline.WithCullMode(wgpu.CullModeBack),
	)
	return []pipeline.Pipeline{flat, disco}, nil
}
