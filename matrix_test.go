package rowan

import (
	"math"
	"testing"
)

func TestMatrixIdentity(t *testing.T) {
	m := MatrixTranslate(3, 4).Mul(MatrixScale(2, 2))
	if got := MatrixIdentity.Mul(m); got != m {
		t.Errorf("I*m = %v, want %v", got, m)
	}
	if got := m.Mul(MatrixIdentity); got != m {
		t.Errorf("m*I = %v, want %v", got, m)
	}
}

func TestMatrixCompositionOrder(t *testing.T) {
	// Translate after scale: the point is scaled first.
	m := MatrixTranslate(10, 0).Mul(MatrixScale(2, 2))
	x, y := m.Apply(3, 3)
	if x != 16 || y != 6 {
		t.Errorf("got (%v, %v), want (16, 6)", x, y)
	}
}

func TestMatrixRotate(t *testing.T) {
	m := MatrixRotate(math.Pi / 2)
	x, y := m.Apply(1, 0)
	if !closeTo(x, 0) || !closeTo(y, 1) {
		t.Errorf("quarter turn of (1,0) = (%v, %v), want (0, 1)", x, y)
	}
}

func TestMatrixInvertRoundTrip(t *testing.T) {
	m := MatrixTranslate(5, -3).Mul(MatrixRotate(0.7)).Mul(MatrixScale(2, 0.5))
	inv := m.Invert()
	x, y := m.Apply(11, 13)
	bx, by := inv.Apply(x, y)
	if !closeTo(bx, 11) || !closeTo(by, 13) {
		t.Errorf("round trip = (%v, %v), want (11, 13)", bx, by)
	}
}

func TestMatrixInvertSingular(t *testing.T) {
	if got := MatrixScale(0, 0).Invert(); got != MatrixIdentity {
		t.Errorf("singular inverse = %v, want identity fallback", got)
	}
}

func TestComposeLocalPivot(t *testing.T) {
	// The pivot point always lands on the node's position.
	m := composeLocal(100, 50, 2, 2, 0.9, 8, 8)
	x, y := m.Apply(8, 8)
	if !closeTo(x, 100) || !closeTo(y, 50) {
		t.Errorf("pivot maps to (%v, %v), want (100, 50)", x, y)
	}
}

func TestComposeLocalPlain(t *testing.T) {
	m := composeLocal(10, 20, 1, 1, 0, 0, 0)
	if m != MatrixTranslate(10, 20) {
		t.Errorf("plain translate = %v", m)
	}

	m = composeLocal(0, 0, 3, 4, 0, 0, 0)
	x, y := m.Apply(1, 1)
	if x != 3 || y != 4 {
		t.Errorf("scale = (%v, %v), want (3, 4)", x, y)
	}
}
