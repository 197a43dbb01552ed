package rowan

import (
	"testing"

	"github.com/tanema/gween/ease"
)

func testCamera() *Camera {
	return NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
}

func TestCameraViewCentersPosition(t *testing.T) {
	c := testCamera()
	c.X, c.Y = 100, 50

	// The focused point lands on the viewport center.
	sx, sy := c.WorldToScreen(100, 50)
	if !closeTo(sx, 400) || !closeTo(sy, 300) {
		t.Errorf("focus maps to (%v, %v), want (400, 300)", sx, sy)
	}

	c.Zoom = 2
	sx, sy = c.WorldToScreen(110, 50)
	if !closeTo(sx, 420) || !closeTo(sy, 300) {
		t.Errorf("zoomed point maps to (%v, %v), want (420, 300)", sx, sy)
	}
}

func TestCameraScreenWorldRoundTrip(t *testing.T) {
	c := testCamera()
	c.X, c.Y = 37, -12
	c.Zoom = 1.7
	c.Rotation = 0.4

	wx, wy := c.ScreenToWorld(c.WorldToScreen(81, 43))
	if !closeTo(wx, 81) || !closeTo(wy, 43) {
		t.Errorf("round trip gave (%v, %v), want (81, 43)", wx, wy)
	}
}

func TestCameraBoundsClamp(t *testing.T) {
	c := testCamera()
	c.SetBounds(Rect{X: 0, Y: 0, Width: 1000, Height: 1000})

	c.X, c.Y = 0, 2000
	c.Update(0)
	// 800x600 visible at zoom 1: X in [400, 600], Y in [300, 700].
	if c.X != 400 || c.Y != 700 {
		t.Errorf("clamped to (%v, %v), want (400, 700)", c.X, c.Y)
	}

	// Zooming in shrinks the visible area and widens the legal range.
	c.Zoom = 2
	c.X = 250
	c.Update(0)
	if c.X != 250 {
		t.Errorf("X = %v, want 250 left alone at zoom 2", c.X)
	}

	c.ClearBounds()
	c.X = -500
	c.Update(0)
	if c.X != -500 {
		t.Error("cleared bounds should stop clamping")
	}
}

func TestCameraBoundsSmallerThanView(t *testing.T) {
	c := testCamera()
	c.SetBounds(Rect{X: 0, Y: 0, Width: 200, Height: 200})
	c.X, c.Y = 999, -999
	c.Update(0)
	if c.X != 100 || c.Y != 100 {
		t.Errorf("camera at (%v, %v), want centered on the small bounds", c.X, c.Y)
	}
}

func TestCameraFollow(t *testing.T) {
	c := testCamera()
	target := NewContainer("target")
	target.worldMatrix = MatrixTranslate(50, 20)

	c.Follow(target, 10, 0, 1)
	c.Update(0)
	if c.X != 60 || c.Y != 20 {
		t.Errorf("snap follow at (%v, %v), want (60, 20)", c.X, c.Y)
	}

	// Partial lerp closes half the gap per update.
	target.worldMatrix = MatrixTranslate(150, 20)
	c.Follow(target, 10, 0, 0.5)
	c.Update(0)
	if !closeTo(c.X, 110) {
		t.Errorf("lerped X = %v, want 110", c.X)
	}

	target.Destroy()
	x := c.X
	c.Update(0)
	if c.X != x {
		t.Error("destroyed targets must not move the camera")
	}

	c.Unfollow()
}

func TestCameraScrollTo(t *testing.T) {
	c := testCamera()
	c.ScrollTo(100, 200, 1, ease.Linear)

	c.Update(0.5)
	if !closeTo(c.X, 50) || !closeTo(c.Y, 100) {
		t.Errorf("midpoint = (%v, %v), want (50, 100)", c.X, c.Y)
	}
	c.Update(0.5)
	if !closeTo(c.X, 100) || !closeTo(c.Y, 200) {
		t.Errorf("end = (%v, %v), want (100, 200)", c.X, c.Y)
	}
	if c.scrollTween != nil {
		t.Error("finished scroll should drop its tween")
	}
}

func TestCameraApplyOnlyDirtiesOnChange(t *testing.T) {
	r, _, root := newTestScene(t)
	spr := NewSprite("spr", solidTexture(8, 8))
	root.AddChild(spr)
	c := testCamera()

	c.Apply(r)
	collect(t, r.Group())

	// Re-applying the same view is free.
	c.Apply(r)
	if root.Dirty() != 0 {
		t.Error("unchanged view re-dirtied the tree")
	}

	c.X = 100
	c.Apply(r)
	if !root.Dirty().Has(DirtyTransform) {
		t.Error("moved view should invalidate transforms")
	}
	r.stats = FrameStats{}
	collect(t, r.Group())
	// The viewport center minus the camera X, for a sprite at the origin.
	if got := r.Group().positions.Data[0]; !closeTo(float64(got), 300) {
		t.Errorf("sprite corner x = %v, want 300 under the moved view", got)
	}
}

func TestCameraVisibleBounds(t *testing.T) {
	c := testCamera()
	c.X, c.Y = 100, 100
	c.Zoom = 2

	got := c.VisibleBounds()
	want := Rect{X: -100, Y: -50, Width: 400, Height: 300}
	if !closeTo(got.X, want.X) || !closeTo(got.Y, want.Y) ||
		!closeTo(got.Width, want.Width) || !closeTo(got.Height, want.Height) {
		t.Errorf("visible bounds = %+v, want %+v", got, want)
	}

	// Rotation keeps the same area but grows the axis-aligned box.
	c.Rotation = 0.5
	rot := c.VisibleBounds()
	if rot.Width <= want.Width || rot.Height <= want.Height {
		t.Errorf("rotated bounds %+v should exceed %+v", rot, want)
	}
}
