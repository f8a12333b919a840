package controls

// ControlsBuilderOption is a functional option for configuring Controls via NewControls.
type ControlsBuilderOption func(*controls)

// WithSnapshot starts the panel from a full set of values, typically loaded from config.
//
// Parameters:
//   - s: the starting values
//
// Returns:
//   - ControlsBuilderOption: functional option to set every value
func WithSnapshot(s Snapshot) ControlsBuilderOption {
	return func(c *controls) {
		c.state = s
	}
}

// WithTessellations sets the starting subdivision level.
func WithTessellations(n int) ControlsBuilderOption {
	return func(c *controls) {
		c.state.Tessellations = n
	}
}

// WithColorRGB sets the starting icosphere color as 0-255 components.
func WithColorRGB(rgb [3]int) ControlsBuilderOption {
	return func(c *controls) {
		c.state.ColorRGB = rgb
	}
}

// WithNoise sets the starting background and fbm tuning values.
//
// Parameters:
//   - n: the noise parameters
//
// Returns:
//   - ControlsBuilderOption: functional option to set the noise parameters
func WithNoise(n NoiseParams) ControlsBuilderOption {
	return func(c *controls) {
		c.noise = n
	}
}

// WithLoadScenePending queues a Load Scene request so the first frame builds every object.
func WithLoadScenePending() ControlsBuilderOption {
	return func(c *controls) {
		c.loadPending = true
	}
}
