// Package geometry builds the procedural triangle meshes drawn by the demo scene:
// the subdivided icosphere, the full-screen background rectangle and the cube.
// Builders are pure functions; they never touch the GPU.
package geometry

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidArgument is returned when a builder receives a parameter outside its domain,
// such as a negative subdivision level.
var ErrInvalidArgument = errors.New("geometry: invalid argument")

// Face is an ordered triple of vertex indices, counter-clockwise when viewed from outside.
type Face [3]uint32

// Mesh is an indexed triangle mesh. The index of a vertex in Positions is its identity;
// Normals runs parallel to Positions.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Faces     []Face
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// FaceCount returns the number of triangles in the mesh.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// Indices flattens the face list into a triangle-list index slice.
//
// Returns:
//   - []uint32: three indices per face, in face order
func (m *Mesh) Indices() []uint32 {
	out := make([]uint32, 0, len(m.Faces)*3)
	for _, f := range m.Faces {
		out = append(out, f[0], f[1], f[2])
	}
	return out
}

// Transform scales every position by scale and then translates it by center, in place.
// Normals are left untouched.
func (m *Mesh) Transform(center mgl32.Vec3, scale float32) {
	for i, p := range m.Positions {
		m.Positions[i] = p.Mul(scale).Add(center)
	}
}
