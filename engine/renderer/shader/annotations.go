// annotations.go defines the @oxy: annotation syntax understood by the WGSL pre-processor.
// Annotations are single-line WGSL comments that inject shared struct and helper source,
// generate @group/@binding declarations and tag each bind group with the engine-side
// resource that feeds it. The scene reads the resulting declarations to decide which
// provider (camera, model or scene parameters) to bind at each group index.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix marks an annotation inside a WGSL line comment.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects a registered WGSL source block at the annotation site.
	// It is consumed entirely during pre-processing.
	//
	// Syntax: //@oxy:include <source_key>
	//
	// Example: //@oxy:include scene_params
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a @group/@binding variable declaration for a
	// registered struct and records it as a declaration.
	//
	// Syntax: //@oxy:group <group> <binding> <address_space> <var_name> <struct_key>
	//
	// Example: //@oxy:group 0 0 storage_uniform camera camera
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider tags a hand-written binding with the provider that owns it
	// without producing any WGSL output.
	//
	// Syntax: //@oxy:provider <group> <binding> <provider_identity>
	//
	// Example: //@oxy:provider 0 0 scene
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation is a single parsed @oxy: annotation.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args depends on Type:
	//   - include:  [0] = source key
	//   - group:    [0] = address space, [1] = var name, [2] = struct key
	//   - provider: [0] = provider identity
	Args []AnnotationArg

	// Line is the 1-based source line, used for error reporting.
	Line int

	// Group and Binding are set for group and provider annotations.
	Group   *int
	Binding *int
}

// ProviderIdentity returns the provider that feeds this declaration. Group annotations
// resolve through their struct key, provider annotations name it directly.
//
// Returns:
//   - AnnotationArg: the provider identity, or "" for include annotations and unmapped structs
func (a Annotation) ProviderIdentity() AnnotationArg {
	switch a.Type {
	case AnnotationTypeProvider:
		return a.Args[0]
	case AnnotationTypeBindingGroup:
		key := AnnotationArg(strings.TrimSuffix(strings.TrimPrefix(string(a.Args[2]), "array<"), ">"))
		return structProviders[key]
	default:
		return ""
	}
}

// AnnotationArg is a typed string used as an annotation argument.
type AnnotationArg string

// Source keys. Everything except toolbox is a struct and may be bound with @oxy:group.
const (
	// AnnotationArgCamera identifies the CameraUniform struct (engine/camera/assets).
	AnnotationArgCamera AnnotationArg = "camera"

	// annotationArgVertex identifies the VertexInput struct (engine/model/assets).
	annotationArgVertex AnnotationArg = "vertex"

	// AnnotationArgModelData identifies the per-model ModelData struct (engine/model/assets).
	AnnotationArgModelData AnnotationArg = "model_data"

	// AnnotationArgSceneParams identifies the per-frame SceneParams struct (engine/controls/assets).
	AnnotationArgSceneParams AnnotationArg = "scene_params"

	// annotationArgToolbox identifies the shared noise and palette helper functions.
	annotationArgToolbox AnnotationArg = "toolbox"
)

// Address spaces accepted by @oxy:group.
const (
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"
	annotationArgStorageTypeRead    AnnotationArg = "storage_read"
)

// Provider identities. The scene owns exactly one bind group provider per identity and
// model, and binds it wherever a pipeline declares that identity.
const (
	// AnnotationArgProviderCamera is the camera uniform provider.
	AnnotationArgProviderCamera AnnotationArg = "camera"

	// AnnotationArgProviderModel is the per-model transform provider.
	AnnotationArgProviderModel AnnotationArg = "model"

	// AnnotationArgProviderScene is the shared per-frame scene parameters provider.
	AnnotationArgProviderScene AnnotationArg = "scene"
)

// structProviders maps each bindable struct to the provider that owns buffers of that type.
var structProviders = map[AnnotationArg]AnnotationArg{
	AnnotationArgCamera:      AnnotationArgProviderCamera,
	AnnotationArgModelData:   AnnotationArgProviderModel,
	AnnotationArgSceneParams: AnnotationArgProviderScene,
}

var validIncludes = []AnnotationArg{
	AnnotationArgCamera,
	annotationArgVertex,
	AnnotationArgModelData,
	AnnotationArgSceneParams,
	annotationArgToolbox,
}

var validStructTypes = []AnnotationArg{
	AnnotationArgCamera,
	AnnotationArgModelData,
	AnnotationArgSceneParams,
}

var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
}

var validProviderIdentities = []AnnotationArg{
	AnnotationArgProviderCamera,
	AnnotationArgProviderModel,
	AnnotationArgProviderScene,
}

// parseAnnotation parses one WGSL line. Lines without the prefix return nil, nil.
//
// Parameters:
//   - line: the raw WGSL source line
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	_, after, ok := strings.Cut(strings.TrimSpace(line), annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case annotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validIncludes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown source %q in @oxy include annotation", lineNum, args[1])
		}
		return &Annotation{Type: annotationTypeInclude, Args: []AnnotationArg{AnnotationArg(args[1])}, Line: lineNum}, nil

	case AnnotationTypeBindingGroup:
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @oxy group annotation requires group, binding, address space, name and struct type", lineNum)
		}
		group, binding, err := parseGroupBinding(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @oxy group annotation", lineNum, args[3])
		}
		elem := strings.TrimSuffix(strings.TrimPrefix(args[5], "array<"), ">")
		if !slices.Contains(validStructTypes, AnnotationArg(elem)) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy group annotation", lineNum, args[5])
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil

	case AnnotationTypeProvider:
		if len(args) != 4 {
			return nil, fmt.Errorf("line %d: @oxy provider annotation requires group, binding and provider identity", lineNum)
		}
		group, binding, err := parseGroupBinding(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validProviderIdentities, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown provider identity %q in @oxy provider annotation", lineNum, args[3])
		}
		return &Annotation{
			Type:    AnnotationTypeProvider,
			Args:    []AnnotationArg{AnnotationArg(args[3])},
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil

	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}

func parseGroupBinding(groupArg, bindingArg string, lineNum int) (int, int, error) {
	group, err := strconv.Atoi(groupArg)
	if err != nil || group < 0 {
		return 0, 0, fmt.Errorf("line %d: invalid group number %q", lineNum, groupArg)
	}
	binding, err := strconv.Atoi(bindingArg)
	if err != nil || binding < 0 {
		return 0, 0, fmt.Errorf("line %d: invalid binding number %q", lineNum, bindingArg)
	}
	return group, binding, nil
}
