package bench

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Invicton-Labs/go-powerix/aws/s3"
	"github.com/Invicton-Labs/go-powerix/collections"
	"github.com/Invicton-Labs/go-powerix/log"
	"github.com/Invicton-Labs/go-stackerr"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

// Report is the outcome of a run.
type Report struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Duration  Duration  `json:"duration"`
	// Results are sorted by case name.
	Results []Result `json:"results"`

	PeakReservedBytes uint64 `json:"peak_reserved_bytes"`
	PeakInUseBytes    uint64 `json:"peak_in_use_bytes"`
}

func newReport(runID string, startedAt time.Time, results []Result) *Report {
	results = collections.CopySlice(results)
	collections.SortSliceByKeyInPlace(results, func(r Result) string {
		return r.Case
	})
	return &Report{
		RunID:     runID,
		StartedAt: startedAt,
		Duration:  Duration(time.Since(startedAt)),
		Results:   results,
	}
}

func formatError(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func formatCache(r Result) string {
	if r.Cache == nil {
		return "-"
	}
	return fmt.Sprintf("%s/%s", humanize.Comma(int64(r.Cache.Hits)), humanize.Comma(int64(r.Cache.Misses)))
}

// WriteTable writes the results as a text table followed by a summary of
// the run.
func (r *Report) WriteTable(w io.Writer) stackerr.Error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Case", "Samples", "Passes", "ns/op", "Max Abs Err", "Max Rel Err", "Non-Finite", "Cache Hits/Misses"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, res := range r.Results {
		table.Append([]string{
			res.Case,
			humanize.Comma(int64(res.Samples)),
			humanize.Comma(int64(res.Passes)),
			strconv.FormatFloat(res.NsPerOp, 'f', 2, 64),
			formatError(res.Worst.Absolute),
			formatError(res.Worst.Relative),
			strconv.Itoa(res.NonFinite),
			formatCache(res),
		})
	}
	table.Render()

	if _, err := fmt.Fprintf(w, "Run %s: %d cases in %s, peak memory %s reserved, %s in use\n",
		r.RunID,
		len(r.Results),
		time.Duration(r.Duration).Round(time.Millisecond),
		humanize.IBytes(r.PeakReservedBytes),
		humanize.IBytes(r.PeakInUseBytes),
	); err != nil {
		return stackerr.Wrap(err)
	}
	return nil
}

func (r *Report) WriteJSON(w io.Writer) stackerr.Error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return stackerr.Wrap(err)
	}
	return nil
}

// Write writes the report in the named format.
func (r *Report) Write(w io.Writer, format string) stackerr.Error {
	switch format {
	case FormatTable:
		return r.WriteTable(w)
	case FormatJSON:
		return r.WriteJSON(w)
	default:
		return stackerr.Errorf("unknown report format %q", format)
	}
}

// Publish uploads the report as JSON to an S3 object.
func (r *Report) Publish(ctx context.Context, arn string) stackerr.Error {
	data, err := json.Marshal(r)
	if err != nil {
		return stackerr.Wrap(err)
	}
	if err := s3.PutObject(ctx, arn, data, &s3.PutObjectArgs{
		ContentType: aws.String("application/json"),
	}); err != nil {
		return err
	}
	log.FromContext(ctx).Infow("Published report", "run_id", r.RunID, "arn", arn)
	return nil
}
