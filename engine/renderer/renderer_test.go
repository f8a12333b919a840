package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-icosphere/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

const layoutVertexSource = `//@oxy:include vertex
//@oxy:include camera
//@oxy:include scene_params
//@oxy:group 0 0 storage_uniform camera camera
//@oxy:group 2 0 storage_uniform scene scene_params

@vertex
fn vs_main(in: VertexInput) -> @builtin(position) vec4<f32> {
    return camera.view_proj * in.pos * scene.time;
}
`

const layoutFragmentSource = `//@oxy:include scene_params
//@oxy:provider 2 0 scene
@group(2) @binding(0) var<uniform> scene: SceneParams;

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return scene.color;
}
`

func TestParsePresentMode(t *testing.T) {
	cases := map[string]PresentMode{
		"uncapped": PresentModeUncapped,
		"Uncapped": PresentModeUncapped,
		"vsync":    PresentModeVSync,
		"":         PresentModeVSync,
		"bogus":    PresentModeVSync,
	}
	for in, want := range cases {
		if got := ParsePresentMode(in); got != want {
			t.Errorf("ParsePresentMode(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMergedBindGroupLayouts(t *testing.T) {
	p := pipeline.NewPipeline("layout-test",
		pipeline.WithVertexShader(shader.NewShader("layout-vert", shader.ShaderTypeVertex, layoutVertexSource)),
		pipeline.WithFragmentShader(shader.NewShader("layout-frag", shader.ShaderTypeFragment, layoutFragmentSource)),
	)

	merged := MergedBindGroupLayouts(p)
	if len(merged) != 2 {
		t.Fatalf("expected groups 0 and 2, got %d groups", len(merged))
	}
	if _, ok := merged[1]; ok {
		t.Error("group 1 is not declared and should be absent")
	}

	scene := merged[2]
	if len(scene.Entries) != 1 {
		t.Fatalf("expected the scene binding to be merged into one entry, got %d", len(scene.Entries))
	}
	if scene.Entries[0].Visibility != wgpu.ShaderStageVertex|wgpu.ShaderStageFragment {
		t.Errorf("expected shared visibility, got %v", scene.Entries[0].Visibility)
	}
	if scene.Entries[0].Buffer.MinBindingSize != 64 {
		t.Errorf("expected 64 byte scene params, got %d", scene.Entries[0].Buffer.MinBindingSize)
	}

	cam := merged[0]
	if len(cam.Entries) != 1 || cam.Entries[0].Buffer.MinBindingSize != 112 {
		t.Errorf("unexpected camera layout %+v", cam)
	}
	if cam.Label != "layout-test" {
		t.Errorf("expected layout label to be the pipeline key, got %q", cam.Label)
	}
}
