package bench

import (
	"fmt"

	"github.com/Invicton-Labs/go-powerix/constraints"
	"github.com/Invicton-Labs/go-powerix/numbers"
)

// Dataset is the fixed grid of bases and exponents a case runs over. Every
// base is paired with every exponent.
type Dataset[B constraints.Numeric, E constraints.Numeric] struct {
	Name      string
	Bases     []B
	Exponents []E
}

// Samples returns the number of (base, exponent) pairs in one pass.
func (d Dataset[B, E]) Samples() int {
	return len(d.Bases) * len(d.Exponents)
}

// FractionalDataset is the set of inputs an x^(2/3) case runs over.
type FractionalDataset[T constraints.Numeric] struct {
	Name   string
	Inputs []T
}

func (d FractionalDataset[T]) Samples() int {
	return len(d.Inputs)
}

var (
	integerBases     = []int64{2, 3, 5, 7, 11}
	integerExponents = []int64{0, 1, 2, 3, 5, 10, 15}
	floatBases       = []float64{0.1, 0.5, 1.3, 2.7, 5.9}
	floatExponents   = []float64{0, 0.5, 1, 2.3, 5.7, 10, 15}
	fractionalInts   = []int64{1, 2, 3, 5, 8, 13, 21, 34, 55, 89}
	fractionalFloats = []float64{0.1, 0.5, 1, 2, 3, 5, 8, 13, 21, 34}
)

func convert[To constraints.Numeric, From constraints.Numeric](in []From) []To {
	out := make([]To, len(in))
	for i, v := range in {
		out[i] = To(v)
	}
	return out
}

// kindName returns the Go name of T, such as "int64" or "float32".
func kindName[T any]() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

// IntegerDataset returns the integer bases with the integer exponents.
// The largest result, 11^15, fits every kind from int64 up; narrower kinds
// wrap, as their kernels do.
func IntegerDataset[B constraints.Integer, E constraints.Integer]() Dataset[B, E] {
	return Dataset[B, E]{
		Name:      "integers",
		Bases:     convert[B](integerBases),
		Exponents: convert[E](integerExponents),
	}
}

// FloatDataset returns the floating-point bases with the integer exponents.
func FloatDataset[B constraints.Float, E constraints.Integer]() Dataset[B, E] {
	return Dataset[B, E]{
		Name:      "floats",
		Bases:     convert[B](floatBases),
		Exponents: convert[E](integerExponents),
	}
}

// FloatExponentDataset returns the bases of B's kind, integer or float, with
// the non-integral exponent grid. Only power.Reference accepts it.
func FloatExponentDataset[B constraints.Numeric, E constraints.Float]() Dataset[B, E] {
	bases := convert[B](integerBases)
	if numbers.IsFloatKind[B]() {
		bases = convert[B](floatBases)
	}
	return Dataset[B, E]{
		Name:      "float_exponents",
		Bases:     bases,
		Exponents: convert[E](floatExponents),
	}
}

// datasetKind names the kinds of a dataset: the base kind, followed by the
// exponent kind when exponents are not integers.
func datasetKind[B constraints.Numeric, E constraints.Numeric]() string {
	if numbers.IsFloatKind[E]() {
		return kindName[B]() + "_" + kindName[E]()
	}
	return kindName[B]()
}

// FractionalIntegerDataset returns the integer inputs for x^(2/3).
func FractionalIntegerDataset[T constraints.Integer]() FractionalDataset[T] {
	return FractionalDataset[T]{
		Name:   "fractional_integers",
		Inputs: convert[T](fractionalInts),
	}
}

// FractionalFloatDataset returns the floating-point inputs for x^(2/3).
func FractionalFloatDataset[T constraints.Float]() FractionalDataset[T] {
	return FractionalDataset[T]{
		Name:   "fractional_floats",
		Inputs: convert[T](fractionalFloats),
	}
}
