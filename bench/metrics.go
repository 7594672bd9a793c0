package bench

import (
	"github.com/Invicton-Labs/go-powerix/debugging"
	"github.com/Invicton-Labs/go-powerix/power"
	"github.com/Invicton-Labs/go-stackerr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "powerix"

// Metrics collects the outcome of a run in a private Prometheus registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	memoHits         *prometheus.CounterVec
	memoMisses       *prometheus.CounterVec
	nsPerOp          *prometheus.GaugeVec
	maxAbsoluteError *prometheus.GaugeVec
	maxRelativeError *prometheus.GaugeVec
	nonFiniteSamples *prometheus.GaugeVec
	peakMemoryBytes  *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	caseLabels := []string{"case", "kernel", "kind"}
	return &Metrics{
		registry: registry,
		memoHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "memo_hits_total",
				Help:      "Lookups answered from a memo cache",
			},
			[]string{"case"},
		),
		memoMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "memo_misses_total",
				Help:      "Lookups a memo cache had to compute",
			},
			[]string{"case"},
		),
		nsPerOp: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "case_ns_per_op",
				Help:      "Mean nanoseconds per kernel call",
			},
			caseLabels,
		),
		maxAbsoluteError: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "case_max_absolute_error",
				Help:      "Largest finite absolute error against the reference",
			},
			caseLabels,
		),
		maxRelativeError: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "case_max_relative_error",
				Help:      "Largest finite relative error against the reference",
			},
			caseLabels,
		),
		nonFiniteSamples: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "case_non_finite_samples",
				Help:      "Samples whose error was NaN or infinite",
			},
			caseLabels,
		),
		peakMemoryBytes: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "peak_memory_bytes",
				Help:      "Peak memory seen during the run",
			},
			[]string{"type"},
		),
	}
}

type memoObserver struct {
	hit  prometheus.Counter
	miss prometheus.Counter
}

func (o memoObserver) Hit()  { o.hit.Inc() }
func (o memoObserver) Miss() { o.miss.Inc() }

// MemoObserver returns an observer counting the hits and misses of the memo
// cache used by the named case.
func (m *Metrics) MemoObserver(caseName string) power.MemoObserver {
	if m == nil {
		return nil
	}
	return memoObserver{
		hit:  m.memoHits.WithLabelValues(caseName),
		miss: m.memoMisses.WithLabelValues(caseName),
	}
}

func (m *Metrics) ObserveResult(r Result) {
	if m == nil {
		return
	}
	labels := []string{r.Case, r.Kernel, r.Kind}
	m.nsPerOp.WithLabelValues(labels...).Set(r.NsPerOp)
	m.maxAbsoluteError.WithLabelValues(labels...).Set(r.Worst.Absolute)
	m.maxRelativeError.WithLabelValues(labels...).Set(r.Worst.Relative)
	m.nonFiniteSamples.WithLabelValues(labels...).Set(float64(r.NonFinite))
}

func (m *Metrics) ObserveMemory(peak debugging.MemoryPeak) {
	if m == nil {
		return
	}
	m.peakMemoryBytes.WithLabelValues("reserved").Set(float64(peak.Reserved))
	m.peakMemoryBytes.WithLabelValues("in_use").Set(float64(peak.InUse))
}

// Gatherer exposes the registry, for serving or inspecting the metrics.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the metrics in the Prometheus text format, as read by
// the node exporter's textfile collector.
func (m *Metrics) WriteTextfile(filename string) stackerr.Error {
	if err := prometheus.WriteToTextfile(filename, m.registry); err != nil {
		return stackerr.Wrap(err)
	}
	return nil
}
