package bench

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Invicton-Labs/go-powerix/aws/s3"
	"github.com/Invicton-Labs/go-powerix/aws/ssm"
	"github.com/Invicton-Labs/go-powerix/collections"
	"github.com/Invicton-Labs/go-powerix/genjson"
	"github.com/Invicton-Labs/go-powerix/log"
	retryablehttp "github.com/Invicton-Labs/go-powerix/retryable-http"
	"github.com/Invicton-Labs/go-stackerr"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Report formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Duration is a time.Duration read from and written as a string such as
// "250ms" in YAML and JSON.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

type LogConfig struct {
	Level       string `json:"level" yaml:"level"`
	Development bool   `json:"development" yaml:"development"`
}

// NewInput converts the config into input for log.New.
func (c LogConfig) NewInput(name string) (log.NewInput, stackerr.Error) {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		return log.NewInput{}, err
	}
	return log.NewInput{
		Name:          name,
		Level:         level,
		IsDevelopment: c.Development,
	}, nil
}

// Config controls a benchmark run.
type Config struct {
	// Duration is the minimum time spent measuring each case.
	Duration Duration `json:"duration" yaml:"duration"`
	// MinPasses is the minimum number of passes over each case's dataset.
	MinPasses int `json:"min_passes" yaml:"min_passes"`
	// Parallelism is the number of cases measured at the same time.
	// Values above 1 finish sooner but make timings noisier.
	Parallelism int `json:"parallelism" yaml:"parallelism"`
	// Cases are glob patterns over case names; empty means every case.
	Cases []string `json:"cases" yaml:"cases"`

	SeriesTerms       int     `json:"series_terms" yaml:"series_terms"`
	SeriesScaleFloor  float64 `json:"series_scale_floor" yaml:"series_scale_floor"`
	BoundedCacheBytes int64   `json:"bounded_cache_bytes" yaml:"bounded_cache_bytes"`

	// MemoryInterval is how often memory usage is sampled during a run.
	MemoryInterval Duration `json:"memory_interval" yaml:"memory_interval"`

	Format string `json:"format" yaml:"format"`
	// ReportARN is an S3 object ARN the JSON report is uploaded to.
	ReportARN string `json:"report_arn" yaml:"report_arn"`
	// MetricsFile is a path the Prometheus text-format metrics are written to.
	MetricsFile string `json:"metrics_file" yaml:"metrics_file"`

	Log LogConfig `json:"log" yaml:"log"`
}

func DefaultConfig() Config {
	return Config{
		Duration:          Duration(200 * time.Millisecond),
		MinPasses:         3,
		Parallelism:       1,
		SeriesTerms:       10,
		SeriesScaleFloor:  1000,
		BoundedCacheBytes: 1 << 20,
		MemoryInterval:    Duration(10 * time.Millisecond),
		Format:            FormatTable,
		Log: LogConfig{
			Level: zapcore.InfoLevel.String(),
		},
	}
}

// LoadConfig reads a config from a local .yaml, .yml or .json file, or from
// an S3 object ARN or http(s) URL with one of those extensions, or from an
// SSM parameter ARN holding YAML or JSON, over DefaultConfig. Fields
// missing from the file keep their defaults. Unknown fields are an error.
func LoadConfig(ctx context.Context, location string) (Config, stackerr.Error) {
	cfg := DefaultConfig()

	data, ext, err := fetchConfig(ctx, location)
	if err != nil {
		return cfg, err
	}
	if err := DecodeConfig(data, ext, &cfg); err != nil {
		return cfg, err
	}
	log.FromContext(ctx).Debugw("Loaded config", "location", location)
	return cfg, nil
}

// fetchConfig reads the raw config and returns it with the extension that
// names its format.
func fetchConfig(ctx context.Context, location string) ([]byte, string, stackerr.Error) {
	switch {
	case s3.IsObjectArn(location):
		_, key, err := s3.ParseObjectArn(location)
		if err != nil {
			return nil, "", err
		}
		data, err := s3.GetObject(ctx, location)
		return data, path.Ext(key), err
	case ssm.IsParameterArn(location):
		// YAML is a superset of JSON, so either can be stored.
		value, err := ssm.GetSsmParameter(ctx, location)
		return []byte(value), ".yaml", err
	case retryablehttp.IsHttpUrl(location):
		u, cerr := url.Parse(location)
		if cerr != nil {
			return nil, "", stackerr.Wrap(cerr)
		}
		client := retryablehttp.NewClient(retryablehttp.NewClientInput{
			MaxRetries: 3,
			Timeout:    30 * time.Second,
		})
		data, err := retryablehttp.Get(ctx, client, location)
		return data, path.Ext(u.Path), err
	default:
		data, cerr := os.ReadFile(location)
		if cerr != nil {
			return nil, "", stackerr.Wrap(cerr)
		}
		return data, filepath.Ext(location), nil
	}
}

// DecodeConfig decodes data over cfg, choosing the format from a file
// extension such as ".yaml" or ".json".
func DecodeConfig(data []byte, ext string, cfg *Config) stackerr.Error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return stackerr.Wrap(err)
		}
		return nil
	case ".json":
		return genjson.UnmarshalInto(data, cfg)
	default:
		return stackerr.Errorf("unsupported config format %q (expected .yaml, .yml or .json)", ext)
	}
}

// Flag names registered by BindFlags.
const (
	FlagDuration          = "duration"
	FlagMinPasses         = "min-passes"
	FlagParallelism       = "parallelism"
	FlagCases             = "cases"
	FlagSeriesTerms       = "series-terms"
	FlagSeriesScaleFloor  = "series-scale-floor"
	FlagBoundedCacheBytes = "bounded-cache-bytes"
	FlagFormat            = "format"
	FlagReportARN         = "report-arn"
	FlagMetricsFile       = "metrics-file"
)

// BindFlags registers a flag for each run setting, with the defaults of
// DefaultConfig. Use ApplyFlags to copy the flags that were set onto a
// loaded config.
func BindFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()
	fs.Duration(FlagDuration, time.Duration(d.Duration), "minimum time spent measuring each case")
	fs.Int(FlagMinPasses, d.MinPasses, "minimum number of passes over each dataset")
	fs.Int(FlagParallelism, d.Parallelism, "number of cases measured at the same time")
	fs.StringSlice(FlagCases, d.Cases, "glob patterns selecting cases by name, such as 'binary/*'")
	fs.Int(FlagSeriesTerms, d.SeriesTerms, "number of terms summed by the series kernel")
	fs.Float64(FlagSeriesScaleFloor, d.SeriesScaleFloor, "range reduction floor of the series kernel, 0 to disable")
	fs.Int64(FlagBoundedCacheBytes, d.BoundedCacheBytes, "byte budget of the bounded memo cache")
	fs.String(FlagFormat, d.Format, "report format: table or json")
	fs.String(FlagReportARN, d.ReportARN, "S3 object ARN to upload the JSON report to")
	fs.String(FlagMetricsFile, d.MetricsFile, "path to write Prometheus text-format metrics to")
}

// ApplyFlags copies every flag registered by BindFlags that was set on the
// command line onto c.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) stackerr.Error {
	var errs error
	set := func(name string, apply func() error) {
		if fs.Lookup(name) == nil || !fs.Changed(name) {
			return
		}
		errs = multierr.Append(errs, apply())
	}
	set(FlagDuration, func() error {
		v, err := fs.GetDuration(FlagDuration)
		c.Duration = Duration(v)
		return err
	})
	set(FlagMinPasses, func() (err error) {
		c.MinPasses, err = fs.GetInt(FlagMinPasses)
		return err
	})
	set(FlagParallelism, func() (err error) {
		c.Parallelism, err = fs.GetInt(FlagParallelism)
		return err
	})
	set(FlagCases, func() (err error) {
		c.Cases, err = fs.GetStringSlice(FlagCases)
		return err
	})
	set(FlagSeriesTerms, func() (err error) {
		c.SeriesTerms, err = fs.GetInt(FlagSeriesTerms)
		return err
	})
	set(FlagSeriesScaleFloor, func() (err error) {
		c.SeriesScaleFloor, err = fs.GetFloat64(FlagSeriesScaleFloor)
		return err
	})
	set(FlagBoundedCacheBytes, func() (err error) {
		c.BoundedCacheBytes, err = fs.GetInt64(FlagBoundedCacheBytes)
		return err
	})
	set(FlagFormat, func() (err error) {
		c.Format, err = fs.GetString(FlagFormat)
		return err
	})
	set(FlagReportARN, func() (err error) {
		c.ReportARN, err = fs.GetString(FlagReportARN)
		return err
	})
	set(FlagMetricsFile, func() (err error) {
		c.MetricsFile, err = fs.GetString(FlagMetricsFile)
		return err
	})
	if errs != nil {
		return stackerr.Wrap(errs)
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() stackerr.Error {
	var errs error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = multierr.Append(errs, stackerr.Errorf(format, args...))
		}
	}

	check(c.Duration >= 0, "duration must not be negative, got %s", time.Duration(c.Duration))
	check(c.MinPasses >= 1, "min_passes must be at least 1, got %d", c.MinPasses)
	check(c.Parallelism >= 1, "parallelism must be at least 1, got %d", c.Parallelism)
	check(c.SeriesTerms >= 1, "series_terms must be at least 1, got %d", c.SeriesTerms)
	check(c.SeriesScaleFloor >= 0 && !math.IsInf(c.SeriesScaleFloor, 0),
		"series_scale_floor must be a finite number of at least 0, got %v", c.SeriesScaleFloor)
	check(c.BoundedCacheBytes > 0, "bounded_cache_bytes must be positive, got %d", c.BoundedCacheBytes)
	check(c.MemoryInterval > 0, "memory_interval must be positive, got %s", time.Duration(c.MemoryInterval))
	check(collections.SliceContains([]string{FormatTable, FormatJSON}, c.Format),
		"format must be %q or %q, got %q", FormatTable, FormatJSON, c.Format)
	for _, p := range c.Cases {
		_, err := path.Match(p, "")
		check(err == nil, "invalid case pattern %q", p)
	}
	if c.ReportARN != "" {
		_, _, err := s3.ParseObjectArn(c.ReportARN)
		check(err == nil, "report_arn %q is not an S3 object ARN", c.ReportARN)
	}
	_, err := log.ParseLevel(c.Log.Level)
	check(err == nil, "log level %q is not valid", c.Log.Level)

	if errs != nil {
		return stackerr.Wrap(errs)
	}
	return nil
}

// MeasureInput returns the per-case measurement settings.
func (c Config) MeasureInput() MeasureInput {
	return MeasureInput{
		Duration:  time.Duration(c.Duration),
		MinPasses: c.MinPasses,
	}
}
