package accuracy

import "github.com/Invicton-Labs/go-powerix/numbers"

// Worst tracks the largest absolute and relative errors seen over a dataset.
// The two maxima are tracked independently and may come from different
// samples.
//
// Errors that are not finite (a NaN or infinite result on either side) do
// not take part in the maxima; they are counted by NonFinite instead, so a
// single overflow does not hide the precision of every other sample.
//
// The zero value is ready for use. A Worst is not safe for concurrent use.
type Worst struct {
	max       Error
	samples   int
	nonFinite int
}

func (w *Worst) Observe(e Error) {
	w.samples++
	if !e.IsFinite() {
		w.nonFinite++
		return
	}
	w.max.Absolute = numbers.Max(w.max.Absolute, e.Absolute)
	w.max.Relative = numbers.Max(w.max.Relative, e.Relative)
}

// ObservePair computes the error of candidate against reference, observes it,
// and returns it.
func (w *Worst) ObservePair(reference float64, candidate float64) Error {
	e := Compute(reference, candidate)
	w.Observe(e)
	return e
}

// Merge folds the observations of other into w.
func (w *Worst) Merge(other Worst) {
	w.samples += other.samples
	w.nonFinite += other.nonFinite
	w.max.Absolute = numbers.Max(w.max.Absolute, other.max.Absolute)
	w.max.Relative = numbers.Max(w.max.Relative, other.max.Relative)
}

// Max returns the largest finite errors observed, or {0, 0} if there were none.
func (w Worst) Max() Error {
	return w.max
}

// Samples returns the number of observed errors, finite or not.
func (w Worst) Samples() int {
	return w.samples
}

// NonFinite returns the number of observed errors left out of Max.
func (w Worst) NonFinite() int {
	return w.nonFinite
}
