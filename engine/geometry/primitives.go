package geometry

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Rectangle builds a two-triangle quad in the z = 0 plane facing +Z.
//
// Parameters:
//   - center: center of the quad
//   - width, height: extents along X and Y, must be non-negative
//
// Returns:
//   - *Mesh: 4 vertices, 2 faces
//   - error: ErrInvalidArgument if either extent is negative
func Rectangle(center mgl32.Vec3, width, height float32) (*Mesh, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("rectangle %vx%v: %w", width, height, ErrInvalidArgument)
	}
	hw, hh := width/2, height/2
	nor := mgl32.Vec3{0, 0, 1}
	m := &Mesh{
		Positions: []mgl32.Vec3{
			center.Add(mgl32.Vec3{-hw, -hh, 0}),
			center.Add(mgl32.Vec3{hw, -hh, 0}),
			center.Add(mgl32.Vec3{hw, hh, 0}),
			center.Add(mgl32.Vec3{-hw, hh, 0}),
		},
		Normals: []mgl32.Vec3{nor, nor, nor, nor},
		Faces:   []Face{{0, 1, 2}, {0, 2, 3}},
	}
	return m, nil
}

// cubeSides lists each cube face as its outward normal plus two in-plane axes u and v
// with u x v = normal, so corners walked in (−u−v, +u−v, +u+v, −u+v) order are
// counter-clockwise from outside.
var cubeSides = []struct {
	normal, u, v mgl32.Vec3
}{
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
}

// Cube builds an axis-aligned cube with flat per-side normals: 24 vertices, 12 faces.
//
// Parameters:
//   - center: center of the cube
//   - scale: edge length, must be non-negative
//
// Returns:
//   - *Mesh: the cube
//   - error: ErrInvalidArgument if scale is negative
func Cube(center mgl32.Vec3, scale float32) (*Mesh, error) {
	if scale < 0 {
		return nil, fmt.Errorf("cube scale %v: %w", scale, ErrInvalidArgument)
	}
	m := &Mesh{
		Positions: make([]mgl32.Vec3, 0, 24),
		Normals:   make([]mgl32.Vec3, 0, 24),
		Faces:     make([]Face, 0, 12),
	}
	for _, s := range cubeSides {
		base := uint32(len(m.Positions))
		corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
		for _, c := range corners {
			p := s.normal.Add(s.u.Mul(c[0])).Add(s.v.Mul(c[1])).Mul(0.5)
			m.Positions = append(m.Positions, p)
			m.Normals = append(m.Normals, s.normal)
		}
		m.Faces = append(m.Faces, Face{base, base + 1, base + 2}, Face{base, base + 2, base + 3})
	}
	m.Transform(center, scale)
	return m, nil
}
