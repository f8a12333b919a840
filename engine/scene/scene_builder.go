package scene

import (
	"github.com/Carmen-Shannon/oxy-icosphere/engine/renderer/pipeline"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithPipelines replaces the flat and disco pipelines built from the embedded shaders.
// The pipelines must keep the PipelineKeyFlat and PipelineKeyDisco keys; they are drawn
// in the order given.
//
// Parameters:
//   - pipelines: the pipelines to register
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithPipelines(pipelines ...pipeline.Pipeline) SceneBuilderOption {
	return func(s *scene) {
		s.pipelines = pipelines
	}
}

// WithAsyncRebuild chooses whether icosphere level changes are built on the rebuild pool
// and swapped in by a later frame (the default), or built inline during Prepare.
//
// Parameters:
//   - async: false to rebuild inline
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAsyncRebuild(async bool) SceneBuilderOption {
	return func(s *scene) {
		s.asyncRebuild = async
	}
}

// WithRebuildWorkers sets the number of worker goroutines used for asynchronous
// icosphere builds. Defaults to half the CPU count.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithRebuildWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 1 {
			n = 1
		}
		s.rebuildWorkers = n
	}
}
