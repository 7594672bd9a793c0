package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	os.Exit(runMain(newRootCommand(), os.Stderr))
}

// runMain executes cmd and reports a failure on errOut. Commands return
// their errors instead of logging them, so each failure is printed once.
func runMain(cmd *cobra.Command, errOut io.Writer) int {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(errOut, "Error:", err)
		return 1
	}
	return 0
}
