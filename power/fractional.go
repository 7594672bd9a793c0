package power

import (
	"math"

	"github.com/Invicton-Labs/go-powerix/constraints"
)

// TwoThirds is the exponent approximated by the TwoThirds* functions.
const TwoThirds = 2.0 / 3.0

// maxScaleFloor keeps range reduction from multiplying its way to +Inf.
const maxScaleFloor = 1e300

// TwoThirdsCbrt computes x^(2/3) as cbrt(x*x). Negative inputs give NaN, even
// though cbrt(x*x) is real for them, so that all three approximations share
// the same domain. x*x overflows to +Inf for |x| above roughly 1.3e154.
func TwoThirdsCbrt[T constraints.Numeric](x T) float64 {
	v := float64(x)
	if v < 0 {
		return math.NaN()
	}
	return math.Cbrt(v * v)
}

// TwoThirdsExpLog computes x^(2/3) as exp(2/3 * log(x)). Negative inputs give
// NaN and zero gives zero, both straight from math.Log and math.Exp.
func TwoThirdsExpLog[T constraints.Numeric](x T) float64 {
	return math.Exp(TwoThirds * math.Log(float64(x)))
}

// TwoThirdsSeries computes x^(2/3) with DefaultSeries.
func TwoThirdsSeries[T constraints.Numeric](x T) float64 {
	return DefaultSeries.Pow(float64(x))
}

// Series approximates x^(2/3) around the nearest perfect cube n^3 with the
// binomial expansion
//
//	x^(2/3) = n^2 * (1+z)^(2/3),  z = x/n^3 - 1
//	(1+z)^a = sum over k of term_k,  term_0 = 1,  term_k = term_(k-1) * (a-k+1)/k * z
//
// truncated to a fixed number of terms. There is no convergence check: the
// truncation error grows with |z|, i.e. with the distance from x to the
// nearest cube, and the series diverges once |z| >= 1.
type Series struct {
	// Terms is the number of summed terms, the leading 1 included.
	// Values below 1 are treated as 1.
	Terms int

	// ScaleFloor enables range reduction. Inputs below it are multiplied
	// by 8 (exact in binary floating point) until they reach it, and the
	// result is divided by 4 for each step. Larger inputs have larger
	// nearest cubes and a smaller |z|: with a floor of 1000, n >= 10 and
	// |z| stays below 0.16. Zero disables range reduction.
	ScaleFloor float64
}

// DefaultSeries sums 10 terms (nine corrections after the leading 1), which
// keeps the relative error under 1e-9 with its range reduction.
var DefaultSeries = Series{
	Terms:      10,
	ScaleFloor: 1000,
}

func (s Series) Pow(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return math.NaN()
	case x == 0:
		return 0
	case math.IsInf(x, 1):
		return x
	}

	floor := math.Min(s.ScaleFloor, maxScaleFloor)
	steps := 0
	for x < floor {
		x *= 8
		steps++
	}

	n := math.Max(1, math.Round(math.Cbrt(x)))
	// n^3 is never formed on its own: for x near the top of the float
	// range it can round up to +Inf.
	z := x/(n*n)/n - 1

	terms := s.Terms
	if terms < 1 {
		terms = 1
	}
	sum, term := 1.0, 1.0
	for k := 1; k < terms; k++ {
		term *= (TwoThirds - float64(k-1)) / float64(k) * z
		sum += term
	}
	return math.Ldexp(n*n*sum, -2*steps)
}

// SeriesKernel adapts s.Pow to any numeric input kind.
func SeriesKernel[T constraints.Numeric](s Series) func(x T) float64 {
	return func(x T) float64 {
		return s.Pow(float64(x))
	}
}
