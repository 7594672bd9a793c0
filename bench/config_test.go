package bench

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinPasses = 0
	cfg.Parallelism = -1
	cfg.SeriesTerms = 0
	cfg.SeriesScaleFloor = math.NaN()
	cfg.Format = "xml"
	cfg.Cases = []string{"[bad"}
	cfg.ReportARN = "arn:aws:s3:::bucket-only"
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"min_passes", "parallelism", "series_terms", "series_scale_floor", "format", "[bad", "report_arn", "loud"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestDecodeConfig(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		cfg := DefaultConfig()
		require.NoError(t, DecodeConfig([]byte(`
duration: 50ms
parallelism: 2
cases: ["binary/*"]
log:
  level: debug
`), ".yaml", &cfg))
		assert.Equal(t, Duration(50*time.Millisecond), cfg.Duration)
		assert.Equal(t, 2, cfg.Parallelism)
		assert.Equal(t, []string{"binary/*"}, cfg.Cases)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, 3, cfg.MinPasses, "unset fields keep their defaults")
	})

	t.Run("empty yaml", func(t *testing.T) {
		cfg := DefaultConfig()
		require.NoError(t, DecodeConfig(nil, ".yml", &cfg))
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("json", func(t *testing.T) {
		cfg := DefaultConfig()
		require.NoError(t, DecodeConfig([]byte(`{"duration":"1s","series_terms":4,"format":"json"}`), ".JSON", &cfg))
		assert.Equal(t, Duration(time.Second), cfg.Duration)
		assert.Equal(t, 4, cfg.SeriesTerms)
		assert.Equal(t, FormatJSON, cfg.Format)
	})

	t.Run("errors", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.Error(t, DecodeConfig([]byte(`unknown: 1`), ".yaml", &cfg))
		assert.Error(t, DecodeConfig([]byte(`{"unknown":1}`), ".json", &cfg))
		assert.Error(t, DecodeConfig([]byte(`duration: soon`), ".yaml", &cfg))
		assert.Error(t, DecodeConfig([]byte(`a = 1`), ".toml", &cfg))
	})
}

func TestLoadConfigFromFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "powerix.yaml")
	require.NoError(t, os.WriteFile(file, []byte("min_passes: 9\nformat: json\n"), 0o600))

	cfg, err := LoadConfig(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.MinPasses)
	assert.Equal(t, FormatJSON, cfg.Format)

	_, err = LoadConfig(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigFromUrl(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/configs/powerix.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"parallelism": 2}`))
	}))
	defer server.Close()

	cfg, err := LoadConfig(context.Background(), server.URL+"/configs/powerix.json?version=2")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Parallelism)

	_, err = LoadConfig(context.Background(), server.URL+"/configs/missing.json")
	assert.Error(t, err)
}

func TestFlags(t *testing.T) {
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--min-passes=7", "--cases=binary/*,memo/*", "--duration=10ms"}))

	cfg := DefaultConfig()
	cfg.Parallelism = 3
	require.NoError(t, cfg.ApplyFlags(fs))
	assert.Equal(t, 7, cfg.MinPasses)
	assert.Equal(t, []string{"binary/*", "memo/*"}, cfg.Cases)
	assert.Equal(t, Duration(10*time.Millisecond), cfg.Duration)
	assert.Equal(t, 3, cfg.Parallelism, "flags that were not set leave the config alone")
}
