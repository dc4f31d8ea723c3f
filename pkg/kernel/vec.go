package kernel

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Epsilon is the float64 machine epsilon. It absorbs rounding error in
// vector equality and zero tests.
const Epsilon = 2.220446049250313e-16

// VecEqual reports whether a and b are equal component-wise within Epsilon.
func VecEqual(a, b v3.Vec) bool {
	return a.Equals(b, Epsilon)
}

// IsZero reports whether v has (numerically) zero length.
func IsZero(v v3.Vec) bool {
	return v.Length() < Epsilon
}

// len2 is the squared length of v.
func len2(v v3.Vec) float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func fmtVec(v v3.Vec) string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}
