package geometry

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// icosahedronFaces lists the 20 base triangles, counter-clockwise from outside.
var icosahedronFaces = []Face{
	{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
	{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
	{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
	{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
}

// edgeKey identifies an undirected edge by its (min, max) vertex index pair.
type edgeKey struct {
	lo, hi uint32
}

func newEdgeKey(a, b uint32) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{lo: a, hi: b}
}

// Icosahedron returns the 12-vertex, 20-face regular icosahedron on the unit sphere.
func Icosahedron() *Mesh {
	t := float32((1 + math.Sqrt(5)) / 2)
	raw := []mgl32.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	m := &Mesh{
		Positions: make([]mgl32.Vec3, len(raw)),
		Faces:     make([]Face, len(icosahedronFaces)),
	}
	for i, p := range raw {
		m.Positions[i] = p.Normalize()
	}
	copy(m.Faces, icosahedronFaces)
	return m
}

// Subdivide performs one midpoint subdivision pass over a unit-sphere mesh. Every edge
// gets exactly one midpoint, projected back onto the unit sphere, and every face is
// replaced by its three corner triangles followed by the center triangle.
//
// The returned mesh keeps all input vertices at their original indices and appends the
// new midpoints in creation order. Normals are not populated.
//
// Parameters:
//   - in: the mesh to subdivide, positions assumed to be unit length
//
// Returns:
//   - *Mesh: a new mesh with 4x the faces
func Subdivide(in *Mesh) *Mesh {
	out := &Mesh{
		Positions: make([]mgl32.Vec3, len(in.Positions), len(in.Positions)+len(in.Faces)*3/2),
		Faces:     make([]Face, 0, len(in.Faces)*4),
	}
	copy(out.Positions, in.Positions)

	midpoints := make(map[edgeKey]uint32, len(in.Faces)*3/2)
	midpoint := func(a, b uint32) uint32 {
		key := newEdgeKey(a, b)
		if idx, ok := midpoints[key]; ok {
			return idx
		}
		p := out.Positions[a].Add(out.Positions[b]).Mul(0.5).Normalize()
		idx := uint32(len(out.Positions))
		out.Positions = append(out.Positions, p)
		midpoints[key] = idx
		return idx
	}

	for _, f := range in.Faces {
		v1, v2, v3 := f[0], f[1], f[2]
		m1 := midpoint(v1, v2)
		m2 := midpoint(v2, v3)
		m3 := midpoint(v3, v1)
		out.Faces = append(out.Faces,
			Face{v1, m1, m3},
			Face{v2, m2, m1},
			Face{v3, m3, m2},
			Face{m1, m2, m3},
		)
	}
	return out
}

// Icosphere builds a sphere by subdividing the icosahedron level times, then scaling by
// radius and translating by center. Normals are the unit directions before scaling.
// The result has 10*4^level+2 vertices and 20*4^level faces.
//
// Parameters:
//   - center: world-space center of the sphere
//   - radius: sphere radius, zero collapses every vertex onto center
//   - level: number of subdivision passes, must be non-negative
//
// Returns:
//   - *Mesh: the built sphere
//   - error: ErrInvalidArgument if level is negative
func Icosphere(center mgl32.Vec3, radius float32, level int) (*Mesh, error) {
	if level < 0 {
		return nil, fmt.Errorf("icosphere level %d: %w", level, ErrInvalidArgument)
	}
	m := Icosahedron()
	for range level {
		m = Subdivide(m)
	}
	m.Normals = make([]mgl32.Vec3, len(m.Positions))
	copy(m.Normals, m.Positions)
	m.Transform(center, radius)
	return m, nil
}

// IcosphereCounts returns the vertex and face counts Icosphere produces for a level.
func IcosphereCounts(level int) (vertices, faces int) {
	pow := 1 << (2 * level)
	return 10*pow + 2, 20 * pow
}
