package bench

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Invicton-Labs/go-powerix/accuracy"
	"github.com/Invicton-Labs/go-powerix/power"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quickConfig() Config {
	cfg := DefaultConfig()
	cfg.Duration = 0
	cfg.MinPasses = 2
	return cfg
}

func TestDatasets(t *testing.T) {
	ints := IntegerDataset[int16, uint8]()
	assert.Equal(t, []int16{2, 3, 5, 7, 11}, ints.Bases)
	assert.Equal(t, []uint8{0, 1, 2, 3, 5, 10, 15}, ints.Exponents)
	assert.Equal(t, 35, ints.Samples())

	floats := FloatDataset[float32, int32]()
	assert.Equal(t, float32(1.3), floats.Bases[2])
	assert.Equal(t, 35, floats.Samples())

	assert.Equal(t, 10, FractionalIntegerDataset[int32]().Samples())
	assert.Equal(t, []float64{0.1, 0.5, 1, 2, 3, 5, 8, 13, 21, 34}, FractionalFloatDataset[float64]().Inputs)
	assert.Equal(t, float32(0.1), FractionalFloatDataset[float32]().Inputs[0])

	mixed := FloatExponentDataset[int32, float64]()
	assert.Equal(t, []int32{2, 3, 5, 7, 11}, mixed.Bases)
	assert.Equal(t, []float64{0, 0.5, 1, 2.3, 5.7, 10, 15}, mixed.Exponents)
	assert.Equal(t, float32(2.3), FloatExponentDataset[float64, float32]().Exponents[3])
	assert.Equal(t, []float32{0.1, 0.5, 1.3, 2.7, 5.9}, FloatExponentDataset[float32, float64]().Bases)

	assert.Equal(t, "int32_float64", datasetKind[int32, float64]())
	assert.Equal(t, "float32", datasetKind[float32, int32]())
}

func TestDefaultCases(t *testing.T) {
	cases := DefaultCases(DefaultConfig(), nil)
	// Seven integer-exponent kernels over seven kinds, the reference over
	// five float-exponent pairings, four fractional kernels over three kinds.
	require.Len(t, cases, 7*7+5+4*3)

	names := map[string]bool{}
	for _, c := range cases {
		assert.False(t, names[c.Name()], "duplicate case %s", c.Name())
		names[c.Name()] = true
		assert.Equal(t, c.Kernel()+"/"+c.Kind(), c.Name())
		assert.Greater(t, c.Samples(), 0)
	}
	for _, name := range []string{"binary/int16", "memo_singleflight/uint64", "bounded_memo/float32", "series/int32", "pow_two_thirds/float64",
		"reference/float32_float32", "reference/float64_float64", "reference/int32_float64",
		"reference/float64_float32", "reference/float32_float64", "series/float32", "exp_log/float32"} {
		assert.True(t, names[name], name)
	}
}

func TestSelectCases(t *testing.T) {
	cases := DefaultCases(DefaultConfig(), nil)

	all, err := SelectCases(cases, nil)
	require.NoError(t, err)
	assert.Len(t, all, len(cases))

	selected, err := SelectCases(cases, []string{"binary/*", "cbrt/float64"})
	require.NoError(t, err)
	require.Len(t, selected, 8)
	assert.Equal(t, "binary/int16", selected[0].Name())
	assert.Equal(t, "cbrt/float64", selected[7].Name())

	none, err := SelectCases(cases, []string{"nothing/*"})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = SelectCases(cases, []string{"[binary"})
	assert.Error(t, err)
}

func caseByName(t *testing.T, cases []Case, name string) Case {
	t.Helper()
	for _, c := range cases {
		if c.Name() == name {
			return c
		}
	}
	t.Fatalf("no case named %s", name)
	return nil
}

func TestMeasure(t *testing.T) {
	cfg := quickConfig()
	cases := DefaultCases(cfg, nil)
	ctx := context.Background()

	t.Run("exact integer kernel", func(t *testing.T) {
		res, err := caseByName(t, cases, "hierarchical/int64").Measure(ctx, cfg.MeasureInput())
		require.NoError(t, err)
		assert.Equal(t, "hierarchical/int64", res.Case)
		assert.Equal(t, "hierarchical", res.Kernel)
		assert.Equal(t, "int64", res.Kind)
		assert.Equal(t, 35, res.Samples)
		assert.GreaterOrEqual(t, res.Passes, 2)
		assert.Greater(t, res.NsPerOp, 0.0)
		assert.Equal(t, 0.0, res.Worst.Absolute)
		assert.Nil(t, res.Cache)
	})

	t.Run("float kernel", func(t *testing.T) {
		res, err := caseByName(t, cases, "small_exponent/float64").Measure(ctx, cfg.MeasureInput())
		require.NoError(t, err)
		assert.Less(t, res.Worst.Relative, 1e-12)
		assert.Equal(t, 0, res.NonFinite)
	})

	t.Run("memo reports its cache", func(t *testing.T) {
		res, err := caseByName(t, cases, "memo/float64").Measure(ctx, cfg.MeasureInput())
		require.NoError(t, err)
		require.NotNil(t, res.Cache)
		assert.Equal(t, 35, res.Cache.Entries)
		assert.Equal(t, uint64(35), res.Cache.Misses)
		assert.Greater(t, res.Cache.Hits, uint64(0))
	})

	t.Run("reference is exact for every kind", func(t *testing.T) {
		// 11^15 does not fit int16, int32 or uint32; the reference must still
		// report no error rather than whatever a narrowing conversion gives.
		for _, name := range []string{"reference/int16", "reference/int32", "reference/uint32", "reference/float32"} {
			res, err := caseByName(t, cases, name).Measure(ctx, cfg.MeasureInput())
			require.NoError(t, err)
			assert.Equal(t, 0.0, res.Worst.Absolute, name)
			assert.Equal(t, 0, res.NonFinite, name)
			assert.Equal(t, 35, res.Samples, name)
		}
	})

	t.Run("float exponents", func(t *testing.T) {
		for _, name := range []string{"reference/float32_float32", "reference/int32_float64", "reference/float64_float32"} {
			res, err := caseByName(t, cases, name).Measure(ctx, cfg.MeasureInput())
			require.NoError(t, err)
			assert.Equal(t, "reference", res.Kernel)
			assert.Equal(t, 35, res.Samples, name)
			assert.Equal(t, accuracy.Error{}, res.Worst, name)
			assert.Nil(t, res.Cache)
		}
	})

	t.Run("fractional series", func(t *testing.T) {
		for _, name := range []string{"series/int32", "series/float32", "series/float64", "exp_log/float64", "cbrt/int32", "cbrt/float32"} {
			res, err := caseByName(t, cases, name).Measure(ctx, cfg.MeasureInput())
			require.NoError(t, err)
			assert.Less(t, res.Worst.Relative, 1e-6, name)
			assert.Equal(t, 10, res.Samples)
		}
	})

	t.Run("custom kernel", func(t *testing.T) {
		off := func(base float64, exp int32) float64 { return power.Binary(base, exp) * 1.5 }
		c := NewIntegerCase("off", off, FloatDataset[float64, int32]())
		res, err := c.Measure(ctx, cfg.MeasureInput())
		require.NoError(t, err)
		assert.InDelta(t, 0.5, res.Worst.Relative, 1e-9)
	})

	t.Run("cancelled", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := caseByName(t, cases, "binary/int32").Measure(cancelled, cfg.MeasureInput())
		assert.Error(t, err)
	})
}

func TestRunner(t *testing.T) {
	cfg := quickConfig()
	cfg.Parallelism = 4
	cfg.Cases = []string{"binary/*", "memo/int64"}
	metrics := NewMetrics()

	report, err := NewRunner(cfg, DefaultCases(cfg, metrics), metrics).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 8)
	assert.NotEmpty(t, report.RunID)
	assert.Greater(t, report.PeakInUseBytes, uint64(0))
	for i := 1; i < len(report.Results); i++ {
		assert.Less(t, report.Results[i-1].Case, report.Results[i].Case)
	}

	file := filepath.Join(t.TempDir(), "powerix.prom")
	require.NoError(t, metrics.WriteTextfile(file))
	text, rerr := os.ReadFile(file)
	require.NoError(t, rerr)
	assert.Contains(t, string(text), `powerix_memo_misses_total{case="memo/int64"} 35`)
	assert.Contains(t, string(text), `powerix_case_ns_per_op{case="binary/uint32",kernel="binary",kind="uint32"}`)
	assert.Contains(t, string(text), `powerix_peak_memory_bytes{type="in_use"}`)

	t.Run("no matching cases", func(t *testing.T) {
		cfg := quickConfig()
		cfg.Cases = []string{"missing/*"}
		_, err := NewRunner(cfg, DefaultCases(cfg, nil), nil).Run(context.Background())
		assert.Error(t, err)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := quickConfig()
		cfg.Parallelism = 0
		_, err := NewRunner(cfg, DefaultCases(cfg, nil), nil).Run(context.Background())
		assert.Error(t, err)
	})
}

func TestReportOutput(t *testing.T) {
	cfg := quickConfig()
	cfg.Cases = []string{"memo/int32", "exp_log/float64"}
	report, err := NewRunner(cfg, DefaultCases(cfg, nil), nil).Run(context.Background())
	require.NoError(t, err)

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, report.Write(&buf, FormatTable))
		out := buf.String()
		assert.Contains(t, out, "MAX REL ERR")
		assert.Contains(t, out, "memo/int32")
		assert.Contains(t, out, "exp_log/float64")
		assert.Contains(t, out, "Run "+report.RunID)
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, report.Write(&buf, FormatJSON))
		decoded := map[string]any{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, report.RunID, decoded["run_id"])
		results := decoded["results"].([]any)
		require.Len(t, results, 2)
		assert.Equal(t, "exp_log/float64", results[0].(map[string]any)["case"])
		assert.Contains(t, results[1].(map[string]any), "cache")
	})

	t.Run("unknown format", func(t *testing.T) {
		assert.Error(t, report.Write(&bytes.Buffer{}, "xml"))
	})
}
