package window

import "testing"

func TestNewEngineWindowDefaults(t *testing.T) {
	w := newEngineWindow()
	if w.width != 1280 || w.height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", w.width, w.height)
	}
	if w.minWidth != 320 || w.minHeight != 240 {
		t.Errorf("expected 320x240 minimum, got %dx%d", w.minWidth, w.minHeight)
	}
	if w.maxWidth != glfwDontCare || w.maxHeight != glfwDontCare {
		t.Errorf("expected no maximum, got %dx%d", w.maxWidth, w.maxHeight)
	}
}

func TestWithSizeIgnoresNonPositive(t *testing.T) {
	w := newEngineWindow(WithSize(0, 900))
	if w.width != 1280 || w.height != 900 {
		t.Errorf("expected 1280x900, got %dx%d", w.width, w.height)
	}
}

func TestSizeLimitsMapZeroToUnlimited(t *testing.T) {
	w := newEngineWindow(WithMinSize(0, 100), WithMaxSize(1920, -1))
	if w.minWidth != glfwDontCare || w.minHeight != 100 {
		t.Errorf("unexpected minimum %dx%d", w.minWidth, w.minHeight)
	}
	if w.maxWidth != 1920 || w.maxHeight != glfwDontCare {
		t.Errorf("unexpected maximum %dx%d", w.maxWidth, w.maxHeight)
	}
}

func TestInitialSizeClampedToLimits(t *testing.T) {
	w := newEngineWindow(WithSize(2000, 100), WithMinSize(640, 480), WithMaxSize(1600, 0))
	if w.width != 1600 || w.height != 480 {
		t.Errorf("expected 1600x480, got %dx%d", w.width, w.height)
	}
}

func TestWithTitle(t *testing.T) {
	if w := newEngineWindow(WithTitle("demo")); w.title != "demo" {
		t.Errorf("expected title demo, got %q", w.title)
	}
}
