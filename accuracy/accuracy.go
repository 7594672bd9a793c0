// Package accuracy scores a computed value against a reference value.
package accuracy

import (
	"github.com/Invicton-Labs/go-powerix/numbers"
)

// Error is the deviation of a candidate value from a reference value.
type Error struct {
	Absolute float64 `json:"absolute_error" yaml:"absolute_error"`
	Relative float64 `json:"relative_error" yaml:"relative_error"`
}

// Compute returns |reference - candidate| and that difference relative to
// |reference|.
//
// A zero reference has no meaningful relative error, and its Relative is
// reported as 0. That 0 says nothing about the candidate: Compute(0, 5)
// has a Relative of 0 too. Identical inputs, infinities included, are
// always {0, 0}. A NaN on either side makes both fields NaN.
func Compute(reference float64, candidate float64) Error {
	if reference == candidate {
		return Error{}
	}
	abs := numbers.AbsFloat(reference - candidate)
	rel := 0.0
	if reference != 0 {
		rel = abs / numbers.AbsFloat(reference)
	}
	return Error{
		Absolute: abs,
		Relative: rel,
	}
}

// IsFinite reports whether both fields are finite numbers.
func (e Error) IsFinite() bool {
	return numbers.IsFinite(e.Absolute) && numbers.IsFinite(e.Relative)
}
