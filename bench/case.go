package bench

import (
	"context"
	"math"
	"path"
	"time"

	"github.com/Invicton-Labs/go-powerix/accuracy"
	"github.com/Invicton-Labs/go-powerix/collections"
	"github.com/Invicton-Labs/go-powerix/constraints"
	"github.com/Invicton-Labs/go-powerix/power"
	"github.com/Invicton-Labs/go-stackerr"
)

// MeasureInput controls how long a case is measured for.
type MeasureInput struct {
	// Duration is the minimum wall time spent running passes.
	Duration time.Duration
	// MinPasses is the minimum number of complete passes over the dataset.
	MinPasses int
}

// Result is the outcome of measuring one case.
type Result struct {
	Case      string           `json:"case" yaml:"case"`
	Kernel    string           `json:"kernel" yaml:"kernel"`
	Kind      string           `json:"kind" yaml:"kind"`
	Samples   int              `json:"samples" yaml:"samples"`
	Passes    int              `json:"passes" yaml:"passes"`
	NsPerOp   float64          `json:"ns_per_op" yaml:"ns_per_op"`
	Worst     accuracy.Error   `json:"worst" yaml:"worst"`
	NonFinite int              `json:"non_finite" yaml:"non_finite"`
	Cache     *power.MemoStats `json:"cache,omitempty" yaml:"cache,omitempty"`
}

// Case is one kernel bound to one dataset.
type Case interface {
	// Name is "<kernel>/<kind>", unique within a registry.
	Name() string
	Kernel() string
	Kind() string
	Samples() int
	Measure(ctx context.Context, input MeasureInput) (Result, stackerr.Error)
}

type caseInfo struct {
	kernel string
	kind   string
	stats  func() power.MemoStats
}

func (c caseInfo) Name() string   { return c.kernel + "/" + c.kind }
func (c caseInfo) Kernel() string { return c.kernel }
func (c caseInfo) Kind() string   { return c.kind }

func (c caseInfo) result(samples int) Result {
	r := Result{
		Case:    c.Name(),
		Kernel:  c.kernel,
		Kind:    c.kind,
		Samples: samples,
	}
	if c.stats != nil {
		stats := c.stats()
		r.Cache = &stats
	}
	return r
}

type integerCase[B constraints.Numeric, E constraints.Integer] struct {
	caseInfo
	kernel  power.Kernel[B, E]
	dataset Dataset[B, E]
}

// NewIntegerCase binds an integer-exponent kernel to a dataset. Its accuracy
// is measured against power.Reference.
func NewIntegerCase[B constraints.Numeric, E constraints.Integer](kernelName string, kernel power.Kernel[B, E], dataset Dataset[B, E]) Case {
	return &integerCase[B, E]{
		caseInfo: caseInfo{
			kernel: kernelName,
			kind:   kindName[B](),
		},
		kernel:  kernel,
		dataset: dataset,
	}
}

func (c *integerCase[B, E]) Samples() int {
	return c.dataset.Samples()
}

func (c *integerCase[B, E]) Measure(ctx context.Context, input MeasureInput) (Result, stackerr.Error) {
	var worst accuracy.Worst
	for _, b := range c.dataset.Bases {
		for _, e := range c.dataset.Exponents {
			worst.ObservePair(power.Reference(b, e), float64(c.kernel(b, e)))
		}
	}

	passes, elapsed, err := timePasses(ctx, input, func() (acc uint64) {
		for _, b := range c.dataset.Bases {
			for _, e := range c.dataset.Exponents {
				acc += bitsOf(c.kernel(b, e))
			}
		}
		return acc
	})
	if err != nil {
		return Result{}, err
	}

	r := c.result(c.Samples())
	r.Passes = passes
	r.NsPerOp = nsPerOp(elapsed, passes, c.Samples())
	r.Worst = worst.Max()
	r.NonFinite = worst.NonFinite()
	return r, nil
}

type referenceCase[B constraints.Numeric, E constraints.Numeric] struct {
	caseInfo
	dataset Dataset[B, E]
}

// NewReferenceCase times power.Reference over dataset, which may have
// integer or float exponents. Results stay float64, never converted back to
// B, so the case is the exact baseline for every kind, including integer
// kinds whose results overflow B.
func NewReferenceCase[B constraints.Numeric, E constraints.Numeric](dataset Dataset[B, E]) Case {
	return &referenceCase[B, E]{
		caseInfo: caseInfo{
			kernel: KernelReference,
			kind:   datasetKind[B, E](),
		},
		dataset: dataset,
	}
}

func (c *referenceCase[B, E]) Samples() int {
	return c.dataset.Samples()
}

func (c *referenceCase[B, E]) Measure(ctx context.Context, input MeasureInput) (Result, stackerr.Error) {
	var worst accuracy.Worst
	for _, b := range c.dataset.Bases {
		for _, e := range c.dataset.Exponents {
			worst.ObservePair(math.Pow(float64(b), float64(e)), power.Reference(b, e))
		}
	}

	passes, elapsed, err := timePasses(ctx, input, func() (acc uint64) {
		for _, b := range c.dataset.Bases {
			for _, e := range c.dataset.Exponents {
				acc += math.Float64bits(power.Reference(b, e))
			}
		}
		return acc
	})
	if err != nil {
		return Result{}, err
	}

	r := c.result(c.Samples())
	r.Passes = passes
	r.NsPerOp = nsPerOp(elapsed, passes, c.Samples())
	r.Worst = worst.Max()
	r.NonFinite = worst.NonFinite()
	return r, nil
}

type fractionalCase[T constraints.Numeric] struct {
	caseInfo
	fn      func(x T) float64
	dataset FractionalDataset[T]
}

// NewFractionalCase binds an x^(2/3) approximation to a dataset. Its accuracy
// is measured against math.Pow(x, 2/3).
func NewFractionalCase[T constraints.Numeric](kernelName string, fn func(x T) float64, dataset FractionalDataset[T]) Case {
	return &fractionalCase[T]{
		caseInfo: caseInfo{
			kernel: kernelName,
			kind:   kindName[T](),
		},
		fn:      fn,
		dataset: dataset,
	}
}

func (c *fractionalCase[T]) Samples() int {
	return c.dataset.Samples()
}

func (c *fractionalCase[T]) Measure(ctx context.Context, input MeasureInput) (Result, stackerr.Error) {
	var worst accuracy.Worst
	for _, x := range c.dataset.Inputs {
		worst.ObservePair(math.Pow(float64(x), power.TwoThirds), c.fn(x))
	}

	passes, elapsed, err := timePasses(ctx, input, func() (acc uint64) {
		for _, x := range c.dataset.Inputs {
			acc += math.Float64bits(c.fn(x))
		}
		return acc
	})
	if err != nil {
		return Result{}, err
	}

	r := c.result(c.Samples())
	r.Passes = passes
	r.NsPerOp = nsPerOp(elapsed, passes, c.Samples())
	r.Worst = worst.Max()
	r.NonFinite = worst.NonFinite()
	return r, nil
}

// SelectCases returns the cases whose names match at least one of the glob
// patterns (see path.Match), in their original order. No patterns selects
// every case.
func SelectCases(cases []Case, patterns []string) ([]Case, stackerr.Error) {
	if len(patterns) == 0 {
		return collections.CopySlice(cases), nil
	}
	var matchErr stackerr.Error
	selected := collections.FilterSlice(cases, func(c Case) bool {
		for _, p := range patterns {
			ok, err := path.Match(p, c.Name())
			if err != nil {
				matchErr = stackerr.Errorf("invalid case pattern %q: %v", p, err)
				return false
			}
			if ok {
				return true
			}
		}
		return false
	})
	if matchErr != nil {
		return nil, matchErr
	}
	return selected, nil
}
