package rowan

import (
	"testing"

	"github.com/tanema/gween/ease"
)

func TestTweenPosition(t *testing.T) {
	n := NewContainer("n")
	g := TweenPosition(n, 100, 50, 1, ease.Linear)

	g.Update(0.5)
	if !closeTo(n.X(), 50) || !closeTo(n.Y(), 25) {
		t.Errorf("midpoint = (%v, %v), want (50, 25)", n.X(), n.Y())
	}
	if g.Done {
		t.Error("tween should still be running")
	}

	g.Update(0.5)
	if n.X() != 100 || n.Y() != 50 {
		t.Errorf("end = (%v, %v), want (100, 50)", n.X(), n.Y())
	}
	if !g.Done {
		t.Error("tween should be done")
	}

	// Updates after completion are inert.
	g.Update(1)
	if n.X() != 100 {
		t.Error("finished tween moved the node")
	}
}

func TestTweenAlphaAndRotation(t *testing.T) {
	n := NewContainer("n")
	a := TweenAlpha(n, 0, 1, ease.Linear)
	rot := TweenRotation(n, 2, 1, ease.Linear)
	a.Update(1)
	rot.Update(1)
	if n.Alpha() != 0 {
		t.Errorf("alpha = %v, want 0", n.Alpha())
	}
	if n.Rotation() != 2 {
		t.Errorf("rotation = %v, want 2", n.Rotation())
	}
}

func TestTweenTint(t *testing.T) {
	n := NewContainer("n")
	g := TweenTint(n, Color{0, 0, 1, 0.5}, 1, ease.Linear)
	g.Update(1)
	got := n.Tint()
	if !closeTo(got.B, 1) || !closeTo(got.R, 0) || !closeTo(got.A, 0.5) {
		t.Errorf("tint = %v", got)
	}
}

func TestTweenScale(t *testing.T) {
	n := NewContainer("n")
	g := TweenScale(n, 3, 3, 1, ease.Linear)
	g.Update(1)
	if n.ScaleX() != 3 || n.ScaleY() != 3 {
		t.Errorf("scale = (%v, %v), want (3, 3)", n.ScaleX(), n.ScaleY())
	}
}

func TestTweenMarksDirtyThroughSetters(t *testing.T) {
	n := NewContainer("n")
	n.dirty = 0
	g := TweenPosition(n, 10, 0, 1, ease.Linear)
	g.Update(0.1)
	if !n.Dirty().Has(DirtyTransform) {
		t.Error("tween writes should go through the dirty-checked setters")
	}
}

func TestTweenStopsOnDestroyedTarget(t *testing.T) {
	n := NewContainer("n")
	g := TweenPosition(n, 10, 0, 1, ease.Linear)
	g.Update(0.25)
	n.Destroy()
	x := n.X()
	g.Update(0.25)
	if !g.Done {
		t.Error("tween should finish when its target is destroyed")
	}
	if n.X() != x {
		t.Error("tween wrote to a destroyed node")
	}
}
