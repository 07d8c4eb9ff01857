package components

import (
	"testing"

	"github.com/spaghettifunk/preview/engine/math"
)

const epsilon = 1e-5

func newTestCamera() *Camera {
	return NewCamera(math.NewVec3(0, 0, 2), math.NewVec3Zero(), math.DegToRad(90), 0.1, 100)
}

func TestCameraViewIsCachedUntilMoved(t *testing.T) {
	c := newTestCamera()
	view := c.View()
	if c.IsDirty {
		t.Fatal("View() should clear the dirty flag")
	}

	// The target sits on the -Z axis of view space.
	p := math.NewVec4(0, 0, 0, 1).Transform(view)
	if !p.Compare(math.NewVec4(0, 0, -2, 1), epsilon) {
		t.Errorf("target in view space = %v", p)
	}

	c.SetPosition(math.NewVec3(0, 0, 4))
	if !c.IsDirty {
		t.Fatal("SetPosition should mark the view dirty")
	}
	p = math.NewVec4(0, 0, 0, 1).Transform(c.View())
	if !p.Compare(math.NewVec4(0, 0, -4, 1), epsilon) {
		t.Errorf("target in view space after move = %v", p)
	}
}

func TestNewMVPMapsTargetToScreenCenter(t *testing.T) {
	c := newTestCamera()
	m := NewMVP(math.NewMat4Identity(), c.View(), c.Projection(1))

	clip := math.NewVec4(0, 0, 0, 1).Transform(m.MVP)
	if clip.W <= 0 {
		t.Fatalf("clip.w = %v, the target is behind the camera", clip.W)
	}
	x, y, z := clip.X/clip.W, clip.Y/clip.W, clip.Z/clip.W
	if math.Abs(x) > epsilon || math.Abs(y) > epsilon {
		t.Errorf("target projects to (%v, %v), want the center", x, y)
	}
	if z < 0 || z > 1 {
		t.Errorf("depth %v outside 0..1", z)
	}

	// With a 90 degree field of view the edge of the view frustum at the
	// target distance sits at x = 2.
	edge := math.NewVec4(2, 0, 0, 1).Transform(m.MVP)
	if got := edge.X / edge.W; math.Abs(got-1) > epsilon {
		t.Errorf("frustum edge at ndc x = %v, want 1", got)
	}

	// The model matrix applies first.
	moved := NewMVP(math.NewMat4Translation(math.NewVec3(2, 0, 0)), c.View(), c.Projection(1))
	shifted := math.NewVec4(0, 0, 0, 1).Transform(moved.MVP)
	if !shifted.Compare(edge, epsilon) {
		t.Errorf("translated origin = %v, want %v", shifted, edge)
	}
}

func TestCameraProjectionAspect(t *testing.T) {
	c := newTestCamera()
	wide := c.Projection(2)
	if math.Abs(wide.Data[0]*2-wide.Data[5]) > epsilon {
		t.Errorf("x scale %v should be half of y scale %v", wide.Data[0], wide.Data[5])
	}
	if c.Projection(0) != c.Projection(1) {
		t.Error("non-positive aspect ratios fall back to 1")
	}
}

func TestCameraOrbitAndMove(t *testing.T) {
	c := newTestCamera()
	c.Orbit(math.DegToRad(90))
	if !c.Position.Compare(math.NewVec3(2, 0, 0), epsilon) {
		t.Errorf("orbited position = %v, want (2,0,0)", c.Position)
	}
	if !c.Target.Compare(math.NewVec3Zero(), epsilon) {
		t.Errorf("orbit moved the target to %v", c.Target)
	}

	c = newTestCamera()
	c.MoveForward(1)
	if !c.Position.Compare(math.NewVec3(0, 0, 1), epsilon) || !c.Target.Compare(math.NewVec3(0, 0, -1), epsilon) {
		t.Errorf("after MoveForward position=%v target=%v", c.Position, c.Target)
	}
	c.MoveRight(1)
	if !c.Position.Compare(math.NewVec3(1, 0, 1), epsilon) {
		t.Errorf("after MoveRight position=%v", c.Position)
	}
	c.MoveLeft(1)
	c.MoveBackward(1)
	if !c.Position.Compare(math.NewVec3(0, 0, 2), epsilon) {
		t.Errorf("moves did not cancel out: %v", c.Position)
	}
}
