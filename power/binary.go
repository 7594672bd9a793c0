package power

import (
	"github.com/Invicton-Labs/go-powerix/constraints"
	"github.com/Invicton-Labs/go-powerix/numbers"
	"github.com/Invicton-Labs/go-stackerr"
)

// Binary computes base^exp by square-and-multiply, consuming the exponent's
// bits from the least significant one. It performs at most 2*log2(exp)
// multiplications. exp == 0 gives 1 (even for a zero base) and exp == 1 gives
// base unchanged. A negative exponent gives numbers.NaN[B]().
func Binary[B constraints.Numeric, E constraints.Integer](base B, exp E) B {
	if exp < 0 {
		return numbers.NaN[B]()
	}
	if exp == 1 {
		return base
	}
	result := B(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		exp >>= 1
		if exp == 0 {
			// Don't square past the last bit; the value is unused and
			// could only overflow.
			break
		}
		base *= base
	}
	return result
}

// BinaryChecked is Binary, but reports a negative exponent as
// ErrNegativeExponent instead of returning the sentinel.
func BinaryChecked[B constraints.Numeric, E constraints.Integer](base B, exp E) (B, stackerr.Error) {
	if exp < 0 {
		return numbers.NaN[B](), ErrNegativeExponent
	}
	return Binary(base, exp), nil
}
