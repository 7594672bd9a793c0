package power

import (
	"math"

	"github.com/Invicton-Labs/go-powerix/constraints"
	"github.com/Invicton-Labs/go-stackerr"
)

// Kernel computes base^exp for a non-negative integer exponent.
type Kernel[B constraints.Numeric, E constraints.Integer] func(base B, exp E) B

// ErrNegativeExponent is returned by the checked kernels when the exponent is negative.
var ErrNegativeExponent = stackerr.Errorf("negative exponents are not supported")

// Reference is the ground truth every other kernel is measured against. It
// delegates to math.Pow and accepts any exponent, including fractional and
// negative ones; special cases are those of math.Pow.
func Reference[B constraints.Numeric, E constraints.Numeric](base B, exp E) float64 {
	return math.Pow(float64(base), float64(exp))
}
