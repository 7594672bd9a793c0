package main

import (
	"github.com/Invicton-Labs/go-powerix/bench"
	"github.com/Invicton-Labs/go-powerix/log"
	"github.com/Invicton-Labs/go-stackerr"
	"github.com/spf13/cobra"
)

func newRunCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Measure the selected cases and print a report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runBenchmarks(cmd, root); err != nil {
				return err
			}
			return nil
		},
	}
	bench.BindFlags(cmd.Flags())
	return cmd
}

func runBenchmarks(cmd *cobra.Command, root *rootOptions) stackerr.Error {
	cfg, err := root.loadConfig(cmd, "run")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	metrics := bench.NewMetrics()
	report, err := bench.NewRunner(cfg, bench.DefaultCases(cfg, metrics), metrics).Run(ctx)
	if err != nil {
		return err
	}
	if err := report.Write(cmd.OutOrStdout(), cfg.Format); err != nil {
		return err
	}
	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			return err
		}
		log.Infow("Wrote metrics", "file", cfg.MetricsFile)
	}
	if cfg.ReportARN != "" {
		if err := report.Publish(ctx, cfg.ReportARN); err != nil {
			return err
		}
	}
	return nil
}
