package bench

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/Invicton-Labs/go-powerix/constraints"
	"github.com/Invicton-Labs/go-powerix/dateutils"
	"github.com/Invicton-Labs/go-powerix/numbers"
	"github.com/Invicton-Labs/go-stackerr"
)

// sink receives the folded results of every measured pass, so that kernel
// calls cannot be optimized away.
var sink atomic.Uint64

func bitsOf[B constraints.Numeric](v B) uint64 {
	if numbers.IsFloatKind[B]() {
		return math.Float64bits(float64(v))
	}
	return uint64(v)
}

// timePasses runs pass repeatedly until input.Duration has elapsed and at
// least input.MinPasses passes have completed, and returns the number of
// passes and the time they took.
func timePasses(ctx context.Context, input MeasureInput, pass func() uint64) (passes int, elapsed time.Duration, err stackerr.Error) {
	minPasses := numbers.Max(input.MinPasses, 1)
	waiter := dateutils.Waiter(ctx, input.Duration, true)

	var acc uint64
	start := time.Now()
	for passes < minPasses || !dateutils.Expired(waiter) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return passes, time.Since(start), stackerr.Wrap(ctxErr)
		}
		acc += pass()
		passes++
	}
	elapsed = time.Since(start)
	sink.Add(acc)
	return passes, elapsed, nil
}

func nsPerOp(elapsed time.Duration, passes int, samples int) float64 {
	ops := passes * samples
	if ops == 0 {
		return 0
	}
	return float64(elapsed.Nanoseconds()) / float64(ops)
}
