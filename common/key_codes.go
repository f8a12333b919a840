package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyB     = 66 // B key (ASCII), toggles the animated background
	KeyC     = 67 // C key (ASCII), cycles the color palette
	KeyD     = 68 // D key (ASCII), toggles vertex deformation
	KeyG     = 71 // G key (ASCII), one tessellation level down
	KeyL     = 76 // L key (ASCII), reloads the scene
	KeyR     = 82 // R key (ASCII), resets the camera
	KeyT     = 84 // T key (ASCII), one tessellation level up
	KeySpace = 32 // Spacebar (ASCII)
	KeyEsc   = 256

	Key0 = 48 // 0 key (ASCII)
	Key8 = 56 // 8 key (ASCII)
)

// Mouse buttons as reported by GLFW.
const (
	MouseButtonLeft   = 0
	MouseButtonRight  = 1
	MouseButtonMiddle = 2
)
