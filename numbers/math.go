package numbers

import (
	"math"

	"github.com/Invicton-Labs/go-powerix/constraints"
)

// Abs is a generic function for finding the absolute value
func Abs[T constraints.Signed](v T) T {
	if v < 0 {
		return v * -1
	}
	return v
}

// AbsFloat is Abs for floating-point kinds. Unlike a sign test, it
// clears the sign bit of -0 and of negative NaNs.
func AbsFloat[T constraints.Float](v T) T {
	return T(math.Abs(float64(v)))
}
