package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestRectangle(t *testing.T) {
	m, err := Rectangle(mgl32.Vec3{1, 1, 0}, 4, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.VertexCount() != 4 || m.FaceCount() != 2 {
		t.Fatalf("expected 4 vertices and 2 faces, got %d and %d", m.VertexCount(), m.FaceCount())
	}
	if m.Positions[0] != (mgl32.Vec3{-1, 0, 0}) || m.Positions[2] != (mgl32.Vec3{3, 2, 0}) {
		t.Errorf("unexpected corners: %v", m.Positions)
	}
	for i, f := range m.Faces {
		a, b, c := m.Positions[f[0]], m.Positions[f[1]], m.Positions[f[2]]
		if n := b.Sub(a).Cross(c.Sub(a)); n.Z() <= 0 {
			t.Errorf("face %d does not face +Z", i)
		}
	}

	if _, err := Rectangle(mgl32.Vec3{}, -1, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for negative width, got %v", err)
	}
}

func TestCube(t *testing.T) {
	center := mgl32.Vec3{0, -1.5, 0}
	m, err := Cube(center, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.VertexCount() != 24 || m.FaceCount() != 12 {
		t.Fatalf("expected 24 vertices and 12 faces, got %d and %d", m.VertexCount(), m.FaceCount())
	}
	for i, f := range m.Faces {
		a, b, c := m.Positions[f[0]], m.Positions[f[1]], m.Positions[f[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		centroid := a.Add(b).Add(c).Mul(1.0 / 3).Sub(center)
		if n.Dot(centroid) <= 0 {
			t.Errorf("face %d is wound clockwise from outside", i)
		}
		if n.Normalize().Dot(m.Normals[f[0]]) < 0.999 {
			t.Errorf("face %d geometric normal disagrees with vertex normal", i)
		}
	}
	for i, p := range m.Positions {
		d := p.Sub(center)
		for axis := 0; axis < 3; axis++ {
			if math.Abs(float64(d[axis])) > 0.5+1e-6 {
				t.Fatalf("vertex %d outside the unit cube: %v", i, p)
			}
		}
	}
}

func TestIndicesFlatten(t *testing.T) {
	m := Icosahedron()
	idx := m.Indices()
	if len(idx) != 60 {
		t.Fatalf("expected 60 indices, got %d", len(idx))
	}
	if idx[0] != 0 || idx[1] != 11 || idx[2] != 5 {
		t.Errorf("expected first face (0, 11, 5), got %v", idx[:3])
	}
}
