package shader

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-icosphere/engine/camera"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/controls"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/model"
)

// toolboxSource holds the noise and palette helpers shared by the background and icosphere shaders.
//
//go:embed assets/toolbox.wgsl
var toolboxSource string

// registryEntry pairs an injectable WGSL source block with the type name emitted by
// @oxy:group. Type is empty for blocks that only define functions.
type registryEntry struct {
	Source string
	Type   string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string

	// declarations is reset at the start of every Process call.
	declarations []Annotation
}

// PreProcessor expands @oxy: annotations in WGSL source and records the bind group
// declarations it finds for the scene.
type PreProcessor interface {
	// Process expands every annotation in source. Include annotations are replaced with
	// the registered source block, group annotations with a generated declaration and
	// provider annotations with nothing.
	//
	// Parameters:
	//   - source: raw WGSL containing annotations
	//
	// Returns:
	//   - string: the expanded WGSL
	//   - error: an error if any annotation is malformed
	Process(source string) (string, error)

	// Declarations returns the group and provider annotations from the last Process call,
	// in source order.
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with every engine struct and helper block registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgCamera:      {Source: camera.GPUCameraUniformSource, Type: "CameraUniform"},
			annotationArgVertex:      {Source: model.GPUVertexSource, Type: "VertexInput"},
			AnnotationArgModelData:   {Source: model.GPUModelDataSource, Type: "ModelData"},
			AnnotationArgSceneParams: {Source: controls.GPUSceneParamsSource, Type: "SceneParams"},
			annotationArgToolbox:     {Source: toolboxSource},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform: "var<uniform>",
			annotationArgStorageTypeRead:    "var<storage, read>",
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]
	included := make(map[AnnotationArg]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			// a block included twice would redeclare its structs
			if included[a.Args[0]] {
				continue
			}
			included[a.Args[0]] = true
			out = append(out, p.structRegistry[a.Args[0]].Source)
		case AnnotationTypeBindingGroup:
			wgslType := p.structRegistry[AnnotationArg(strings.TrimSuffix(strings.TrimPrefix(string(a.Args[2]), "array<"), ">"))].Type
			if strings.HasPrefix(string(a.Args[2]), "array<") {
				wgslType = "array<" + wgslType + ">"
			}
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;",
				*a.Group, *a.Binding, p.addressSpaceRegistry[a.Args[0]], a.Args[1], wgslType))
			p.declarations = append(p.declarations, *a)
		case AnnotationTypeProvider:
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
