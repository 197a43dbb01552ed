package rowan

import "math"

// Matrix is a 2D affine transform in column-major [a, b, c, d, tx, ty] order:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Matrix [6]float64

// MatrixIdentity is the identity transform.
var MatrixIdentity = Matrix{1, 0, 0, 1, 0, 0}

// MatrixTranslate returns a translation matrix.
func MatrixTranslate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// MatrixScale returns a scale matrix.
func MatrixScale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// MatrixRotate returns a rotation matrix (angle in radians).
func MatrixRotate(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}

// Mul returns m * c (c applied first, then m).
func (m Matrix) Mul(c Matrix) Matrix {
	return Matrix{
		m[0]*c[0] + m[2]*c[1],
		m[1]*c[0] + m[3]*c[1],
		m[0]*c[2] + m[2]*c[3],
		m[1]*c[2] + m[3]*c[3],
		m[0]*c[4] + m[2]*c[5] + m[4],
		m[1]*c[4] + m[3]*c[5] + m[5],
	}
}

// Invert returns the inverse of m, or the identity if m is singular.
func (m Matrix) Invert() Matrix {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return MatrixIdentity
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Matrix{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// Apply transforms the point (x, y) by m.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// composeLocal builds a node's local matrix from its transform properties.
//
// Composition order: Translate(-pivot) -> Scale -> Rotate -> Translate(x, y).
func composeLocal(x, y, scaleX, scaleY, rotation, pivotX, pivotY float64) Matrix {
	sin, cos := math.Sincos(rotation)

	a := cos * scaleX
	b := sin * scaleX
	c := -sin * scaleY
	d := cos * scaleY

	preTx := -pivotX * scaleX
	preTy := -pivotY * scaleY

	return Matrix{
		a, b, c, d,
		cos*preTx - sin*preTy + x,
		sin*preTx + cos*preTy + y,
	}
}
