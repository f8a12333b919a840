package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// near compares with an absolute tolerance so float noise against an exact zero passes.
func near(got, want mgl32.Vec3) bool {
	return got.Sub(want).Len() < 1e-4
}

func TestDefaultControllerEye(t *testing.T) {
	cc := NewCameraController()
	if !near(cc.Position(), mgl32.Vec3{0, 0, 5}) {
		t.Errorf("expected default eye (0, 0, 5), got %v", cc.Position())
	}
	if cc.Target() != (mgl32.Vec3{}) {
		t.Errorf("expected default target at origin, got %v", cc.Target())
	}
}

func TestControllerFromEye(t *testing.T) {
	eye := mgl32.Vec3{3, 4, 0}
	cc := NewControllerFromEye(eye, mgl32.Vec3{})
	if !near(cc.Position(), eye) {
		t.Errorf("expected eye %v, got %v", eye, cc.Position())
	}
	if math.Abs(float64(cc.Radius()-5)) > 1e-5 {
		t.Errorf("expected radius 5, got %f", cc.Radius())
	}
}

func TestOrbitClampsElevation(t *testing.T) {
	cc := NewCameraController()
	cc.Orbit(0, 1e6)
	if cc.Elevation() > float32(math.Pi/2) {
		t.Errorf("elevation not clamped: %f", cc.Elevation())
	}
	if math.Abs(float64(cc.Position().Sub(cc.Target()).Len()-5)) > 1e-4 {
		t.Errorf("orbit changed the radius: %v", cc.Position())
	}
	cc.Reset()
	if !near(cc.Position(), mgl32.Vec3{0, 0, 5}) {
		t.Errorf("expected reset to restore the eye, got %v", cc.Position())
	}
}

func TestZoomClampsRadius(t *testing.T) {
	cc := NewCameraController(WithRadiusBounds(2, 10))
	cc.Zoom(1000)
	if cc.Radius() != 2 {
		t.Errorf("expected radius clamped to 2, got %f", cc.Radius())
	}
	cc.Zoom(-1000)
	if cc.Radius() != 10 {
		t.Errorf("expected radius clamped to 10, got %f", cc.Radius())
	}
}

func TestPanMovesTargetAndEye(t *testing.T) {
	cc := NewCameraController(WithPanSpeed(1))
	cc.PanRight(2)
	if !near(cc.Target(), mgl32.Vec3{2, 0, 0}) {
		t.Errorf("expected target (2, 0, 0), got %v", cc.Target())
	}
	if !near(cc.Position(), mgl32.Vec3{2, 0, 5}) {
		t.Errorf("expected eye (2, 0, 5), got %v", cc.Position())
	}
	cc.PanUp(1)
	if !near(cc.Target(), mgl32.Vec3{2, 1, 0}) {
		t.Errorf("expected target (2, 1, 0), got %v", cc.Target())
	}
}

func TestCameraProjectsOriginToCenter(t *testing.T) {
	c := NewCamera(WithController(NewCameraController()), WithAspect(16.0/9.0))
	clip := c.ViewProjectionMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	ndc := clip.Vec3().Mul(1 / clip.W())
	if math.Abs(float64(ndc.X())) > 1e-5 || math.Abs(float64(ndc.Y())) > 1e-5 {
		t.Errorf("expected origin at screen center, got %v", ndc)
	}
	if ndc.Z() < 0 || ndc.Z() > 1 {
		t.Errorf("expected WebGPU depth in [0, 1], got %f", ndc.Z())
	}
}

func TestSetAspectIgnoresNonPositive(t *testing.T) {
	c := NewCamera(WithController(NewCameraController()))
	c.SetAspect(2)
	c.SetAspect(0)
	if c.Aspect() != 2 {
		t.Errorf("expected aspect 2 to survive a zero update, got %f", c.Aspect())
	}
}

func TestUniformMarshal(t *testing.T) {
	c := NewCamera(WithController(NewCameraController()))
	u := c.Uniform()
	if u.Size() != 112 {
		t.Fatalf("expected uniform size 112, got %d", u.Size())
	}
	if !near(u.Eye.Vec3(), mgl32.Vec3{0, 0, 5}) || u.Eye.W() != 1 {
		t.Errorf("expected eye (0, 0, 5, 1), got %v", u.Eye)
	}
	if u.Up != (mgl32.Vec4{0, 1, 0, 0}) {
		t.Errorf("expected up (0, 1, 0, 0), got %v", u.Up)
	}
	if len(u.Marshal()) != 112 {
		t.Errorf("expected 112 marshalled bytes, got %d", len(u.Marshal()))
	}
	if c.BindGroupProvider() == nil {
		t.Error("expected a default bind group provider")
	}
}
