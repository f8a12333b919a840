package console

// ConsoleOption is a functional option applied to a console during construction via NewConsole.
type ConsoleOption func(*console)

// WithPresets enables the preset commands backed by store.
//
// Parameters:
//   - store: the preset store
//
// Returns:
//   - ConsoleOption: a function that attaches the store to a console
func WithPresets(store PresetStore) ConsoleOption {
	return func(c *console) {
		c.presets = store
	}
}

// WithQuit sets the function the quit command calls, usually the engine's Quit.
func WithQuit(fn func()) ConsoleOption {
	return func(c *console) {
		c.onQuit = fn
	}
}
