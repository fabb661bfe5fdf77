// Package matrix provides the 2D affine transformations used
// to render the CSS transform property.
package matrix

import (
	"errors"
	"math"

	"github.com/benoitkugler/cssbox/utils"
)

type fl = utils.Fl

// Transform encode a (2D) linear transformation
//
// The encoded transformation is given by :
//
//	x_new = a * x + c * y + e
//	y_new = b * x + d * y + f
type Transform struct {
	A, B, C, D, E, F fl
}

func New(a, b, c, d, e, f fl) Transform {
	return Transform{A: a, B: b, C: c, D: d, E: e, F: f}
}

// Identity returns a new matrix initialized to the identity.
func Identity() Transform {
	return New(1, 0, 0, 1, 0, 0)
}

// IsIdentity returns true for the identity transformation.
func (t Transform) IsIdentity() bool { return t == Identity() }

// Translation returns the translation by (tx, ty).
func Translation(tx, ty fl) Transform {
	return Transform{1, 0, 0, 1, tx, ty}
}

// Scaling returns the scaling by (sx, sy).
func Scaling(sx, sy fl) Transform {
	return Transform{sx, 0, 0, sy, 0, 0}
}

// Rotation returns a rotation of `radians`, from the positive X axis
// toward the positive Y axis (clockwise on screen).
func Rotation(radians fl) Transform {
	cos, sin := fl(math.Cos(float64(radians))), fl(math.Sin(float64(radians)))
	return Transform{cos, sin, -sin, cos, 0, 0}
}

// Skew returns a skew transformation
func Skew(thetax, thetay fl) Transform {
	c, b := fl(math.Tan(float64(thetax))), fl(math.Tan(float64(thetay)))
	return Transform{1, b, c, 1, 0, 0}
}

// Determinant returns the determinant of the matrix, which is
// non zero if and only if the transformation is reversible.
func (t Transform) Determinant() fl {
	return t.A*t.D - t.B*t.C
}

// Mul returns the transform T * U,
// which apply U then T.
func Mul(T, U Transform) Transform {
	return Transform{
		A: T.A*U.A + T.C*U.B,
		B: T.B*U.A + T.D*U.B,
		C: T.A*U.C + T.C*U.D,
		D: T.B*U.C + T.D*U.D,
		E: T.A*U.E + T.C*U.F + T.E,
		F: T.B*U.E + T.D*U.F + T.F,
	}
}

// Invert modify the matrix in place. Return an error
// if the transformation is not bijective.
func (T *Transform) Invert() error {
	det := T.Determinant()
	if det == 0 {
		return errors.New("transformation is not invertible")
	}
	T.A, T.D = T.D/det, T.A/det
	T.B = -T.B / det
	T.C = -T.C / det
	e := -(T.A*T.E + T.C*T.F)
	f := -(T.B*T.E + T.D*T.F)
	T.E, T.F = e, f
	return nil
}

// Apply transforms the point `(x, y)` by this matrix.
func (T Transform) Apply(x, y fl) (outX, outY fl) {
	outX = T.A*x + T.C*y + T.E
	outY = T.B*x + T.D*y + T.F
	return
}
