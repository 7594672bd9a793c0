package main

import (
	"github.com/Invicton-Labs/go-powerix/bench"
	"github.com/Invicton-Labs/go-powerix/log"
	"github.com/Invicton-Labs/go-stackerr"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

const (
	flagConfig   = "config"
	flagLogLevel = "log-level"
	flagDev      = "dev"
)

type rootOptions struct {
	configLocation string
	logLevel       string
	development    bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "powerix",
		Short:         "Benchmark integer and fractional power kernels",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configLocation, flagConfig, "", "config file (.yaml, .yml or .json), S3 object ARN, SSM parameter ARN or http(s) URL")
	cmd.PersistentFlags().StringVar(&opts.logLevel, flagLogLevel, "", "log level, overriding the config")
	cmd.PersistentFlags().BoolVar(&opts.development, flagDev, false, "human-readable development logging")

	cmd.AddCommand(newRunCommand(opts), newListCommand(opts))
	return cmd
}

// loadConfig reads the config named by --config, or the defaults, then
// applies command-line overrides and sets up the default logger. Logs go to
// the command's error stream so that stdout carries only the report.
func (o *rootOptions) loadConfig(cmd *cobra.Command, commandName string) (bench.Config, stackerr.Error) {
	cfg := bench.DefaultConfig()
	if o.configLocation != "" {
		var err stackerr.Error
		if cfg, err = bench.LoadConfig(cmd.Context(), o.configLocation); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return cfg, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.development {
		cfg.Log.Development = true
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	input, err := cfg.Log.NewInput("powerix")
	if err != nil {
		return cfg, err
	}
	input.Output = zapcore.Lock(zapcore.AddSync(cmd.ErrOrStderr()))
	if err := log.InitDefault(input); err != nil {
		return cfg, err
	}
	if err := log.SweetenDefaultLogger(map[string]any{"command": commandName}); err != nil {
		return cfg, err
	}
	return cfg, nil
}
