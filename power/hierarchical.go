package power

import (
	"github.com/Invicton-Labs/go-powerix/constraints"
	"github.com/Invicton-Labs/go-powerix/numbers"
)

// Hierarchical computes base^exp by divide and conquer:
//
//	pow(b, e) = b^(e&1) * pow(b*b, e>>1)
//
// Each level of recursion halves the exponent, so the depth never exceeds
// the bit width of E (64 at most). A negative exponent gives numbers.NaN[B]().
func Hierarchical[B constraints.Numeric, E constraints.Integer](base B, exp E) B {
	switch {
	case exp < 0:
		return numbers.NaN[B]()
	case exp == 0:
		return 1
	case exp == 1:
		return base
	}
	return hierarchical(B(1), base, exp)
}

// hierarchical returns acc * base^exp for exp >= 1. The partial product is
// passed down rather than multiplied in on the way back up, so the products
// are formed in the same order as in Binary and float results match it
// bit for bit.
func hierarchical[B constraints.Numeric, E constraints.Integer](acc B, base B, exp E) B {
	if exp&1 == 1 {
		acc *= base
	}
	exp >>= 1
	if exp == 0 {
		return acc
	}
	return hierarchical(acc, base*base, exp)
}
