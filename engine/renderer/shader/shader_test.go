package shader

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

const testVertexSource = `//@oxy:include vertex
//@oxy:include camera
//@oxy:include model_data
//@oxy:include scene_params
//@oxy:include toolbox
//@oxy:group 0 0 storage_uniform camera camera
//@oxy:group 1 0 storage_uniform model model_data
//@oxy:group 2 0 storage_uniform scene scene_params

struct VertexOutput {
    @builtin(position) pos: vec4<f32>,
    @location(0) nor: vec4<f32>,
}

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.pos = camera.view_proj * model.model * in.pos;
    out.nor = in.nor;
    return out;
}
`

const testFragmentSource = `//@oxy:include scene_params
//@oxy:provider 0 0 scene
@group(0) @binding(0) var<uniform> params: SceneParams;

/* block comment with @vertex fn fake() */
@fragment
fn fs_main(@builtin(position) frag: vec4<f32>) -> @location(0) vec4<f32> {
    return params.color;
}
`

func TestParseAnnotation(t *testing.T) {
	a, err := parseAnnotation("//@oxy:group 1 0 storage_uniform model model_data", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Type != AnnotationTypeBindingGroup || *a.Group != 1 || *a.Binding != 0 {
		t.Errorf("unexpected annotation %+v", a)
	}
	if a.ProviderIdentity() != AnnotationArgProviderModel {
		t.Errorf("expected model provider, got %q", a.ProviderIdentity())
	}

	a, err = parseAnnotation("  //@oxy:provider 0 0 scene", 1)
	if err != nil || a.ProviderIdentity() != AnnotationArgProviderScene {
		t.Errorf("expected scene provider, got %v %v", a, err)
	}

	if a, err := parseAnnotation("let x = 1;", 1); a != nil || err != nil {
		t.Errorf("expected plain line to be ignored, got %v %v", a, err)
	}
}

func TestParseAnnotationErrors(t *testing.T) {
	bad := []string{
		"//@oxy:",
		"//@oxy:include",
		"//@oxy:include light",
		"//@oxy:group 0 0 storage_uniform camera",
		"//@oxy:group x 0 storage_uniform camera camera",
		"//@oxy:group 0 0 storage_read_write camera camera",
		"//@oxy:group 0 0 storage_uniform tools toolbox",
		"//@oxy:provider 0 0 material",
		"//@oxy:texture 0 0",
	}
	for _, line := range bad {
		if _, err := parseAnnotation(line, 7); err == nil {
			t.Errorf("expected error for %q", line)
		} else if !strings.Contains(err.Error(), "line 7") {
			t.Errorf("expected line number in error, got %v", err)
		}
	}
}

func TestPreProcessorIncludesOnce(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("//@oxy:include scene_params\n//@oxy:include scene_params\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(out, "struct SceneParams") != 1 {
		t.Errorf("expected one SceneParams definition, got:\n%s", out)
	}
}

func TestVertexShader(t *testing.T) {
	s := NewShader("test-vert", ShaderTypeVertex, testVertexSource)
	if s.EntryPoint() != "vs_main" {
		t.Errorf("expected vs_main, got %q", s.EntryPoint())
	}
	if !strings.Contains(s.Source(), "@group(1) @binding(0) var<uniform> model: ModelData;") {
		t.Errorf("expected generated model declaration in source")
	}
	if !strings.Contains(s.Source(), "fn fbm3") {
		t.Errorf("expected toolbox to be injected")
	}

	layouts := s.VertexLayouts()
	if len(layouts) != 1 {
		t.Fatalf("expected one vertex layout, got %d", len(layouts))
	}
	vl := layouts[0][0]
	if vl.ArrayStride != 48 || len(vl.Attributes) != 3 {
		t.Errorf("expected 48 byte stride with 3 attributes, got %d/%d", vl.ArrayStride, len(vl.Attributes))
	}
	if vl.Attributes[2].Offset != 32 || vl.Attributes[2].ShaderLocation != 2 {
		t.Errorf("unexpected color attribute %+v", vl.Attributes[2])
	}

	sizes := map[int]uint64{0: 112, 1: 128, 2: 64}
	for g, want := range sizes {
		desc := s.BindGroupLayoutDescriptor(g)
		if len(desc.Entries) != 1 {
			t.Fatalf("group %d: expected one entry, got %d", g, len(desc.Entries))
		}
		e := desc.Entries[0]
		if e.Buffer.Type != wgpu.BufferBindingTypeUniform || e.Buffer.MinBindingSize != want {
			t.Errorf("group %d: expected uniform of %d bytes, got %v/%d", g, want, e.Buffer.Type, e.Buffer.MinBindingSize)
		}
		if e.Visibility != wgpu.ShaderStageVertex {
			t.Errorf("group %d: expected vertex visibility", g)
		}
	}
	if s.BindGroupVarName(2, 0) != "scene" {
		t.Errorf("expected var name scene, got %q", s.BindGroupVarName(2, 0))
	}
	if len(s.Declarations()) != 3 {
		t.Errorf("expected 3 declarations, got %d", len(s.Declarations()))
	}
}

func TestFragmentShader(t *testing.T) {
	s := NewShader("test-frag", ShaderTypeFragment, testFragmentSource)
	if s.EntryPoint() != "fs_main" {
		t.Errorf("expected fs_main, got %q", s.EntryPoint())
	}
	if len(s.VertexLayouts()) != 0 {
		t.Errorf("fragment shaders have no vertex layouts")
	}
	desc := s.BindGroupLayoutDescriptor(0)
	if len(desc.Entries) != 1 || desc.Entries[0].Buffer.MinBindingSize != 64 {
		t.Fatalf("unexpected scene params layout %+v", desc)
	}
	if b, ok := s.BindGroupFromVarName(0, "params"); !ok || b != 0 {
		t.Errorf("expected params at binding 0, got %d %v", b, ok)
	}
	decls := s.Declarations()
	if len(decls) != 1 || decls[0].ProviderIdentity() != AnnotationArgProviderScene {
		t.Errorf("unexpected declarations %+v", decls)
	}
}

func TestParseShaderErrors(t *testing.T) {
	if _, err := ParseShader("empty", ShaderTypeVertex, ""); err == nil {
		t.Error("expected error for empty source")
	}
	if _, err := ParseShader("wrong-stage", ShaderTypeVertex, testFragmentSource); err == nil {
		t.Error("expected error when the stage has no entry point")
	}
	if _, err := ParseShader("bad", ShaderTypeFragment, "//@oxy:include nothing\n"+testFragmentSource); err == nil {
		t.Error("expected error for unknown include")
	}
	if _, err := NewShaderFromPath("missing", ShaderTypeVertex, "does/not/exist.wgsl"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestResolveTypeLayout(t *testing.T) {
	known := map[string]wgslTypeLayout{"ModelData": {128, 16}}
	cases := map[string]uint64{
		"f32":                 4,
		"vec3<f32>":           12,
		"ModelData":           128,
		"array<ModelData>":    128,
		"array<vec3<f32>, 4>": 64,
		"array<f32, 3>":       12,
		"mat4x4<f32>":         64,
	}
	for typ, want := range cases {
		got, ok := resolveTypeLayout(typ, known)
		if !ok || got.size != want {
			t.Errorf("%s: expected %d, got %d (%v)", typ, want, got.size, ok)
		}
	}
	if _, ok := resolveTypeLayout("texture_2d<f32>", known); ok {
		t.Error("expected textures to be unresolvable")
	}
}

func TestStripComments(t *testing.T) {
	src := "a // line\nb /* x /* nested */ y */ c\n"
	got := stripComments(src)
	if got != "a \nb  c\n" {
		t.Errorf("unexpected result %q", got)
	}
}
