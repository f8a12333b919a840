package controls

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MinTessellations and MaxTessellations bound the icosphere subdivision slider.
	MinTessellations = 0
	MaxTessellations = 8

	// DefaultTessellations is the slider's starting value.
	DefaultTessellations = 5
)

// Control keys shared by Apply, Snapshot.ToMap and every remote surface.
const (
	KeyTessellations = "tesselations"
	KeyColorRGB      = "colorRGB"
	KeyBackground    = "Background"
	KeyDeformation   = "Deformation"
	KeyLoadScene     = "loadScene"

	// keyTessellationsAlias is the correctly spelled level key, accepted by Apply.
	keyTessellationsAlias = "tessellations"
)

// ErrInvalidValue is returned when a control is given a value outside its range or of the wrong type.
var ErrInvalidValue = errors.New("controls: invalid value")

// DefaultColorRGB is the starting icosphere color.
var DefaultColorRGB = [3]int{200, 50, 30}

// colorPalette is cycled by the color key binding, starting after DefaultColorRGB.
var colorPalette = [][3]int{
	{200, 50, 30},
	{30, 144, 255},
	{50, 205, 50},
	{255, 215, 0},
	{238, 130, 238},
}

// NoiseParams holds the background and fbm tuning values sent to both shaders.
type NoiseParams struct {
	BgSpeed float32 `json:"bgSpeed"`
	BgDist  float32 `json:"bgDist"`
	BgZoom  float32 `json:"bgZoom"`
	FbmFreq float32 `json:"fbmFreq"`
	FbmAmp  float32 `json:"fbmAmp"`
	FbmOct  int32   `json:"fbmOct"`
}

// DefaultNoiseParams returns the noise values the demo starts with.
func DefaultNoiseParams() NoiseParams {
	return NoiseParams{
		BgSpeed: 1.0,
		BgDist:  1.0,
		BgZoom:  2.0,
		FbmFreq: 2.0,
		FbmAmp:  0.5,
		FbmOct:  4,
	}
}

// Snapshot is a point-in-time copy of the user-facing controls. It is what presets store
// and what the remote panel broadcasts.
type Snapshot struct {
	Tessellations int    `json:"tesselations"`
	ColorRGB      [3]int `json:"colorRGB"`
	Background    bool   `json:"Background"`
	Deformation   bool   `json:"Deformation"`
}

// DefaultSnapshot returns the control values the demo starts with.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Tessellations: DefaultTessellations,
		ColorRGB:      DefaultColorRGB,
		Background:    true,
		Deformation:   true,
	}
}

// Validate checks every field against its allowed range.
//
// Returns:
//   - error: a wrapped ErrInvalidValue naming the first bad field, or nil
func (s Snapshot) Validate() error {
	if s.Tessellations < MinTessellations || s.Tessellations > MaxTessellations {
		return fmt.Errorf("%s %d outside [%d, %d]: %w", KeyTessellations, s.Tessellations, MinTessellations, MaxTessellations, ErrInvalidValue)
	}
	for i, c := range s.ColorRGB {
		if c < 0 || c > 255 {
			return fmt.Errorf("%s[%d] = %d outside [0, 255]: %w", KeyColorRGB, i, c, ErrInvalidValue)
		}
	}
	return nil
}

// ColorVec4 converts the 0-255 color into the normalized RGBA the shaders expect.
func (s Snapshot) ColorVec4() mgl32.Vec4 {
	return mgl32.Vec4{
		float32(s.ColorRGB[0]) / 255,
		float32(s.ColorRGB[1]) / 255,
		float32(s.ColorRGB[2]) / 255,
		1,
	}
}

// ToMap renders the snapshot with the shared control keys. Numbers are float64 so the map
// round-trips through JSON and protobuf Struct values unchanged.
func (s Snapshot) ToMap() map[string]any {
	return map[string]any{
		KeyTessellations: float64(s.Tessellations),
		KeyColorRGB: []any{
			float64(s.ColorRGB[0]),
			float64(s.ColorRGB[1]),
			float64(s.ColorRGB[2]),
		},
		KeyBackground:  s.Background,
		KeyDeformation: s.Deformation,
	}
}
