package numbers

import (
	"math"

	"github.com/Invicton-Labs/go-powerix/constraints"
)

func Min[T constraints.Ordered](val1 T, vals ...T) T {
	m := val1
	for _, v := range vals {
		if v < m {
			m = v
		}
	}
	return m
}

func Max[T constraints.Ordered](val1 T, vals ...T) T {
	m := val1
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}

func IsNaN[T constraints.Float](x T) bool {
	return x != x
}

// IsInf reports whether f is an infinity, according to sign.
// If sign > 0, IsInf reports whether f is positive infinity.
// If sign < 0, IsInf reports whether f is negative infinity.
// If sign == 0, IsInf reports whether f is either infinity.
func IsInf[FT constraints.Float, ST constraints.Signed](f FT, sign ST) bool {
	v := float64(f)
	return sign >= 0 && v > math.MaxFloat64 || sign <= 0 && v < -math.MaxFloat64
}

// IsFinite reports whether x is neither NaN nor an infinity.
func IsFinite[T constraints.Float](x T) bool {
	return !IsNaN(x) && !IsInf(x, 0)
}
