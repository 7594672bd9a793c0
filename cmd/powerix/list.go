package main

import (
	"fmt"

	"github.com/Invicton-Labs/go-powerix/bench"
	"github.com/Invicton-Labs/go-stackerr"
	"github.com/spf13/cobra"
)

func newListCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the names of the cases a run would measure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := listCases(cmd, root); err != nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringSlice(bench.FlagCases, nil, "glob patterns selecting cases by name, such as 'binary/*'")
	return cmd
}

func listCases(cmd *cobra.Command, root *rootOptions) stackerr.Error {
	cfg, err := root.loadConfig(cmd, "list")
	if err != nil {
		return err
	}
	cases, err := bench.SelectCases(bench.DefaultCases(cfg, nil), cfg.Cases)
	if err != nil {
		return err
	}
	for _, c := range cases {
		if _, werr := fmt.Fprintln(cmd.OutOrStdout(), c.Name()); werr != nil {
			return stackerr.Wrap(werr)
		}
	}
	return nil
}
