package numbers

import (
	"math"

	"github.com/Invicton-Labs/go-powerix/constraints"
)

// IsFloatKind reports whether T is a floating-point kind. It works for
// named types too, where a type switch on the underlying value would not.
func IsFloatKind[T constraints.Numeric]() bool {
	// Integer division truncates 1/2 to zero.
	return T(1)/T(2) != 0
}

// NaN returns the not-a-number sentinel for T. Float kinds get IEEE NaN.
// Integer kinds have no such value, so their sentinel is zero.
func NaN[T constraints.Numeric]() T {
	if IsFloatKind[T]() {
		return T(math.NaN())
	}
	return 0
}

// IsSentinel reports whether v is the value NaN would return for T.
func IsSentinel[T constraints.Numeric](v T) bool {
	if IsFloatKind[T]() {
		return v != v
	}
	return v == 0
}
