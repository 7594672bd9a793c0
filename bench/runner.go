package bench

import (
	"context"
	"time"

	"github.com/Invicton-Labs/go-powerix/debugging"
	"github.com/Invicton-Labs/go-powerix/gensync"
	"github.com/Invicton-Labs/go-powerix/log"
	"github.com/Invicton-Labs/go-stackerr"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Runner measures a set of cases.
type Runner struct {
	cfg     Config
	cases   []Case
	metrics *Metrics
}

// NewRunner creates a runner over cases. metrics may be nil.
func NewRunner(cfg Config, cases []Case, metrics *Metrics) *Runner {
	return &Runner{
		cfg:     cfg,
		cases:   cases,
		metrics: metrics,
	}
}

// Run measures every case selected by the config and returns the report.
// The first failing case cancels the others.
func (r *Runner) Run(ctx context.Context) (*Report, stackerr.Error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}
	selected, err := SelectCases(r.cases, r.cfg.Cases)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, stackerr.Errorf("no cases match %v", r.cfg.Cases)
	}

	runID := uuid.New().String()
	logger := log.FromContext(ctx).With("run_id", runID)
	ctx = log.LogContext(ctx, logger)
	startedAt := time.Now()
	logger.Infow("Starting run", "cases", len(selected), "parallelism", r.cfg.Parallelism)

	monitor := debugging.StartMemoryMonitor(ctx, time.Duration(r.cfg.MemoryInterval))
	var results gensync.Slice[Result]
	input := r.cfg.MeasureInput()

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.cfg.Parallelism)
	for _, c := range selected {
		c := c
		group.Go(func() (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = stackerr.FromRecover(rec)
				}
			}()
			res, merr := c.Measure(groupCtx, input)
			if merr != nil {
				return merr
			}
			results.Append(res)
			r.metrics.ObserveResult(res)
			logger.Debugw("Measured case",
				"case", res.Case,
				"passes", res.Passes,
				"ns_per_op", res.NsPerOp,
				"max_relative_error", res.Worst.Relative,
			)
			return nil
		})
	}
	waitErr := group.Wait()
	peak := monitor.Stop()
	if waitErr != nil {
		return nil, stackerr.Wrap(waitErr)
	}

	r.metrics.ObserveMemory(peak)
	report := newReport(runID, startedAt, results.Load())
	report.PeakReservedBytes = peak.Reserved
	report.PeakInUseBytes = peak.InUse
	logger.Infow("Finished run",
		"cases", len(report.Results),
		"duration", time.Duration(report.Duration),
		"peak_in_use_mib", peak.InUseMiB(),
	)
	return report, nil
}
