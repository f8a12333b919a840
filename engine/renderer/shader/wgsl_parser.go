package shader

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgslVertexFormats maps WGSL vertex attribute types to wgpu formats. Both the long and
// the short vector spellings are accepted.
var wgslVertexFormats = map[string]vertexFormatInfo{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2f":     {wgpu.VertexFormatFloat32x2, 8},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3f":     {wgpu.VertexFormatFloat32x3, 12},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4f":     {wgpu.VertexFormatFloat32x4, 16},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"i32":       {wgpu.VertexFormatSint32, 4},
	"vec2i":     {wgpu.VertexFormatSint32x2, 8},
	"vec2<i32>": {wgpu.VertexFormatSint32x2, 8},
	"vec4i":     {wgpu.VertexFormatSint32x4, 16},
	"vec4<i32>": {wgpu.VertexFormatSint32x4, 16},
	"u32":       {wgpu.VertexFormatUint32, 4},
	"vec2u":     {wgpu.VertexFormatUint32x2, 8},
	"vec2<u32>": {wgpu.VertexFormatUint32x2, 8},
	"vec4u":     {wgpu.VertexFormatUint32x4, 16},
	"vec4<u32>": {wgpu.VertexFormatUint32x4, 16},
}

var (
	// structBlockRegex captures a struct's name and body.
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	locationRegex  = regexp.MustCompile(`@location\((\d+)\)`)
	builtinRegex   = regexp.MustCompile(`@builtin\(\w+\)`)
	attributeRegex = regexp.MustCompile(`@\w+(?:\([^)]*\))?`)

	vertexEntryRegex   = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindingDeclRegex captures group, binding, optional address space, name and type from
	// declarations such as: @group(0) @binding(0) var<uniform> camera: CameraUniform;
	bindingDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseEntryPoint returns the name of the first entry function for the stage, or "".
//
// Parameters:
//   - source: WGSL source
//   - shaderType: the stage to look for
//
// Returns:
//   - string: the entry point name
func parseEntryPoint(source string, shaderType ShaderType) string {
	re := vertexEntryRegex
	if shaderType == ShaderTypeFragment {
		re = fragmentEntryRegex
	}
	if m := re.FindStringSubmatch(stripComments(source)); m != nil {
		return m[1]
	}
	return ""
}

// parseVertexLayouts builds one vertex buffer layout per vertex input struct, meaning a
// struct with @location members and no @builtin members. Structs using a type without
// a vertex format are skipped.
//
// Parameters:
//   - source: WGSL source
//
// Returns:
//   - map[int][]wgpu.VertexBufferLayout: layouts keyed by buffer slot, in source order
func parseVertexLayouts(source string) map[int][]wgpu.VertexBufferLayout {
	result := make(map[int][]wgpu.VertexBufferLayout)
	slot := 0
	for _, ps := range parseStructBlocks(stripComments(source)) {
		if !isVertexInputStruct(ps) {
			continue
		}
		layout, ok := buildVertexBufferLayout(ps)
		if !ok {
			continue
		}
		result[slot] = []wgpu.VertexBufferLayout{layout}
		slot++
	}
	return result
}

// parseBindGroupLayouts turns every buffer binding declaration into a layout entry with
// the given visibility. MinBindingSize is set from the bound struct's WGSL layout so the
// renderer can allocate buffers straight from the descriptor. Handle bindings (textures
// and samplers) are not used by this engine and are ignored.
//
// Parameters:
//   - source: WGSL source
//   - visibility: the stage that declared the bindings
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: layouts keyed by group, entries sorted by binding
//   - map[int]map[int]string: variable names keyed by group and binding
func parseBindGroupLayouts(source string, visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string) {
	cleaned := stripComments(source)
	sizes := computeStructSizes(parseStructBlocks(cleaned))

	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	names := make(map[int]map[int]string)
	for _, decl := range parseBindingDecls(cleaned) {
		bufType, ok := bufferBindingType(decl.addressSpace)
		if !ok {
			continue
		}
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    uint32(decl.binding),
			Visibility: visibility,
		}
		entry.Buffer.Type = bufType
		if layout, ok := resolveTypeLayout(decl.typeName, sizes); ok {
			entry.Buffer.MinBindingSize = layout.size
		}
		groups[decl.group] = append(groups[decl.group], entry)

		if names[decl.group] == nil {
			names[decl.group] = make(map[int]string)
		}
		names[decl.group][decl.binding] = decl.varName
	}

	result := make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for g, entries := range groups {
		slices.SortFunc(entries, func(a, b wgpu.BindGroupLayoutEntry) int {
			return int(a.Binding) - int(b.Binding)
		})
		result[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return result, names
}

func parseBindingDecls(cleaned string) []bindingDecl {
	matches := bindingDeclRegex.FindAllStringSubmatch(cleaned, -1)
	decls := make([]bindingDecl, 0, len(matches))
	for _, m := range matches {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		decls = append(decls, bindingDecl{
			group:        group,
			binding:      binding,
			addressSpace: strings.TrimSpace(m[3]),
			varName:      m[4],
			typeName:     strings.TrimSpace(m[5]),
		})
	}
	return decls
}

// bufferBindingType maps a var<> address space to a buffer binding type.
func bufferBindingType(addressSpace string) (wgpu.BufferBindingType, bool) {
	switch {
	case addressSpace == "uniform":
		return wgpu.BufferBindingTypeUniform, true
	case strings.HasPrefix(addressSpace, "storage") && strings.Contains(addressSpace, "read_write"):
		return wgpu.BufferBindingTypeStorage, true
	case strings.HasPrefix(addressSpace, "storage"):
		return wgpu.BufferBindingTypeReadOnlyStorage, true
	default:
		return wgpu.BufferBindingTypeUndefined, false
	}
}

// parseStructBlocks extracts every struct block from comment-free source.
func parseStructBlocks(cleaned string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(cleaned, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, m := range matches {
		structs = append(structs, parsedStruct{name: m[1], fields: parseStructFields(m[2])})
	}
	return structs
}

// parseStructFields splits a struct body into members, recording @location and @builtin.
func parseStructFields(body string) []parsedField {
	parts := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		field := parsedField{location: -1, isBuiltin: builtinRegex.MatchString(part)}
		if m := locationRegex.FindStringSubmatch(part); m != nil {
			field.location, _ = strconv.Atoi(m[1])
		}
		name, typeName, ok := strings.Cut(attributeRegex.ReplaceAllString(part, ""), ":")
		if !ok {
			continue
		}
		field.name = strings.TrimSpace(name)
		field.typeName = strings.TrimSpace(typeName)
		fields = append(fields, field)
	}
	return fields
}
