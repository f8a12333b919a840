package window

// WindowBuilderOption configures an engineWindow before its platform window is created.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the title bar text. The engine may later append frame statistics to it.
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the initial client area size. Non-positive dimensions keep the default.
//
// Parameters:
//   - width: initial width in pixels
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		if width > 0 {
			w.width = width
		}
		if height > 0 {
			w.height = height
		}
	}
}

// WithMinSize sets the smallest size the user can resize the window to. A non-positive
// dimension leaves that side unlimited.
//
// Parameters:
//   - width: minimum width in pixels, or 0
//   - height: minimum height in pixels, or 0
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMinSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth = sizeLimit(width)
		w.minHeight = sizeLimit(height)
	}
}

// WithMaxSize sets the largest size the user can resize the window to. A non-positive
// dimension leaves that side unlimited.
//
// Parameters:
//   - width: maximum width in pixels, or 0
//   - height: maximum height in pixels, or 0
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMaxSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.maxWidth = sizeLimit(width)
		w.maxHeight = sizeLimit(height)
	}
}

// sizeLimit maps "no limit" onto GLFW's sentinel.
func sizeLimit(v int) int {
	if v <= 0 {
		return glfwDontCare
	}
	return v
}
