package controls

import "github.com/Carmen-Shannon/oxy-icosphere/common"

// KeyBindings maps each bound key to a short description, used by the console help text.
var KeyBindings = map[int]string{
	common.KeyT: "tessellations +1",
	common.KeyG: "tessellations -1",
	common.KeyB: "toggle background",
	common.KeyD: "toggle deformation",
	common.KeyC: "cycle color",
	common.KeyL: "load scene",
}

// HandleKey applies the keyboard binding for key, if any.
//
// Parameters:
//   - c: the controls to update
//   - key: a GLFW key code
//
// Returns:
//   - bool: true if key is bound
func HandleKey(c Controls, key int) bool {
	switch {
	case key == common.KeyT:
		c.StepTessellations(1)
	case key == common.KeyG:
		c.StepTessellations(-1)
	case key == common.KeyB:
		c.ToggleBackground()
	case key == common.KeyD:
		c.ToggleDeformation()
	case key == common.KeyC:
		c.CycleColor()
	case key == common.KeyL:
		c.RequestLoadScene()
	case key >= common.Key0 && key <= common.Key8:
		_ = c.SetTessellations(key - common.Key0)
	default:
		return false
	}
	return true
}
