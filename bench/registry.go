package bench

import (
	"math"

	"github.com/Invicton-Labs/go-powerix/constraints"
	"github.com/Invicton-Labs/go-powerix/power"
)

// Kernel names used in case names.
const (
	KernelReference        = "reference"
	KernelBinary           = "binary"
	KernelHierarchical     = "hierarchical"
	KernelSmallExponent    = "small_exponent"
	KernelMemo             = "memo"
	KernelMemoSingleFlight = "memo_singleflight"
	KernelBoundedMemo      = "bounded_memo"
	KernelPowTwoThirds     = "pow_two_thirds"
	KernelCbrt             = "cbrt"
	KernelExpLog           = "exp_log"
	KernelSeries           = "series"
)

// integerCases registers every integer-exponent kernel over dataset. Each
// memoized case gets its own cache, reporting to metrics under its case name.
func integerCases[B constraints.Numeric, E constraints.Integer](cfg Config, metrics *Metrics, dataset Dataset[B, E]) []Case {
	kind := kindName[B]()
	observer := func(kernel string) power.MemoOption {
		return power.WithObserver(metrics.MemoObserver(kernel + "/" + kind))
	}

	memo := power.NewMemo[B, E](nil, observer(KernelMemo))
	single := power.NewMemo[B, E](nil, power.WithSingleFlight(), observer(KernelMemoSingleFlight))
	bounded := power.NewBoundedMemo[B, E](nil, cfg.BoundedCacheBytes, 0, observer(KernelBoundedMemo))

	return []Case{
		NewReferenceCase(dataset),
		NewIntegerCase(KernelBinary, power.Binary[B, E], dataset),
		NewIntegerCase(KernelHierarchical, power.Hierarchical[B, E], dataset),
		NewIntegerCase(KernelSmallExponent, power.SmallExponent[B, E], dataset),
		withStats(NewIntegerCase(KernelMemo, memo.Kernel(), dataset), memo.Stats),
		withStats(NewIntegerCase(KernelMemoSingleFlight, single.Kernel(), dataset), single.Stats),
		withStats(NewIntegerCase(KernelBoundedMemo, bounded.Kernel(), dataset), bounded.Stats),
	}
}

func fractionalCases[T constraints.Numeric](cfg Config, dataset FractionalDataset[T]) []Case {
	series := power.Series{
		Terms:      cfg.SeriesTerms,
		ScaleFloor: cfg.SeriesScaleFloor,
	}
	reference := func(x T) float64 {
		return math.Pow(float64(x), power.TwoThirds)
	}
	return []Case{
		NewFractionalCase(KernelPowTwoThirds, reference, dataset),
		NewFractionalCase(KernelCbrt, power.TwoThirdsCbrt[T], dataset),
		NewFractionalCase(KernelExpLog, power.TwoThirdsExpLog[T], dataset),
		NewFractionalCase(KernelSeries, power.SeriesKernel[T](series), dataset),
	}
}

// withStats attaches a cache statistics source to a case's results.
func withStats(c Case, stats func() power.MemoStats) Case {
	if s, ok := c.(interface{ setStats(func() power.MemoStats) }); ok {
		s.setStats(stats)
	}
	return c
}

func (c *caseInfo) setStats(stats func() power.MemoStats) {
	c.stats = stats
}

// DefaultCases returns every kernel over every dataset that applies to it,
// ordered by dataset and then kernel. Float exponents are only measured for
// the reference, the one kernel that accepts them. metrics may be nil.
func DefaultCases(cfg Config, metrics *Metrics) []Case {
	cases := []Case{}
	cases = append(cases, integerCases(cfg, metrics, IntegerDataset[int16, int16]())...)
	cases = append(cases, integerCases(cfg, metrics, IntegerDataset[int32, int32]())...)
	cases = append(cases, integerCases(cfg, metrics, IntegerDataset[int64, int64]())...)
	cases = append(cases, integerCases(cfg, metrics, IntegerDataset[uint32, uint32]())...)
	cases = append(cases, integerCases(cfg, metrics, IntegerDataset[uint64, uint64]())...)
	cases = append(cases, integerCases(cfg, metrics, FloatDataset[float32, int32]())...)
	cases = append(cases, integerCases(cfg, metrics, FloatDataset[float64, int32]())...)
	cases = append(cases,
		NewReferenceCase(FloatExponentDataset[float32, float32]()),
		NewReferenceCase(FloatExponentDataset[float64, float64]()),
		NewReferenceCase(FloatExponentDataset[int32, float64]()),
		NewReferenceCase(FloatExponentDataset[float64, float32]()),
		NewReferenceCase(FloatExponentDataset[float32, float64]()),
	)
	cases = append(cases, fractionalCases(cfg, FractionalIntegerDataset[int32]())...)
	cases = append(cases, fractionalCases(cfg, FractionalFloatDataset[float32]())...)
	cases = append(cases, fractionalCases(cfg, FractionalFloatDataset[float64]())...)
	return cases
}
