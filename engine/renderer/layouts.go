package renderer

import (
	"maps"
	"slices"

	"github.com/Carmen-Shannon/oxy-icosphere/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// sharedVisibility is applied to every merged entry. A provider such as the scene
// parameters is bound in several pipelines, and its bind group is only compatible with
// each pipeline layout when the layouts are identical, visibility included.
const sharedVisibility = wgpu.ShaderStageVertex | wgpu.ShaderStageFragment

// MergedBindGroupLayouts combines the bind group layouts of a pipeline's vertex and
// fragment shaders into one layout per group index. Entries declared by both stages are
// merged by binding; the larger MinBindingSize wins.
//
// Parameters:
//   - p: the pipeline whose shaders to merge
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: layouts keyed by group index
func MergedBindGroupLayouts(p pipeline.Pipeline) map[int]wgpu.BindGroupLayoutDescriptor {
	entries := make(map[int]map[uint32]wgpu.BindGroupLayoutEntry)
	for _, st := range []shader.ShaderType{shader.ShaderTypeVertex, shader.ShaderTypeFragment} {
		s := p.Shader(st)
		if s == nil {
			continue
		}
		for g, desc := range s.BindGroupLayoutDescriptors() {
			if entries[g] == nil {
				entries[g] = make(map[uint32]wgpu.BindGroupLayoutEntry)
			}
			for _, e := range desc.Entries {
				if existing, ok := entries[g][e.Binding]; ok {
					e.Buffer.MinBindingSize = max(e.Buffer.MinBindingSize, existing.Buffer.MinBindingSize)
				}
				e.Visibility = sharedVisibility
				entries[g][e.Binding] = e
			}
		}
	}

	merged := make(map[int]wgpu.BindGroupLayoutDescriptor, len(entries))
	for g, byBinding := range entries {
		sorted := make([]wgpu.BindGroupLayoutEntry, 0, len(byBinding))
		for _, b := range slices.Sorted(maps.Keys(byBinding)) {
			sorted = append(sorted, byBinding[b])
		}
		merged[g] = wgpu.BindGroupLayoutDescriptor{
			Label:   p.PipelineKey(),
			Entries: sorted,
		}
	}
	return merged
}
