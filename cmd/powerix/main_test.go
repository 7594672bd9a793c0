package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeWithStderr(t, args...)
	return out, err
}

func executeWithStderr(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), stderr.String(), err
}

func TestList(t *testing.T) {
	out, err := execute(t, "list", "--log-level=error")
	require.NoError(t, err)
	names := strings.Fields(out)
	assert.Len(t, names, 66)
	assert.Contains(t, names, "hierarchical/uint64")

	out, err = execute(t, "list", "--cases=series/*", "--log-level=error")
	require.NoError(t, err)
	assert.Equal(t, []string{"series/int32", "series/float32", "series/float64"}, strings.Fields(out))

	out, err = execute(t, "list", "--cases=reference/*_*", "--log-level=error")
	require.NoError(t, err)
	assert.Len(t, strings.Fields(out), 5)
}

func TestRun(t *testing.T) {
	metricsFile := filepath.Join(t.TempDir(), "powerix.prom")
	out, err := execute(t, "run",
		"--log-level=error",
		"--duration=0s",
		"--min-passes=1",
		"--cases=small_exponent/*",
		"--format=json",
		"--metrics-file="+metricsFile,
	)
	require.NoError(t, err)

	report := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Len(t, report["results"], 7)

	_, err = os.Stat(metricsFile)
	assert.NoError(t, err)
}

func TestRunWithConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "powerix.yaml")
	require.NoError(t, os.WriteFile(file, []byte("duration: 0s\nmin_passes: 1\ncases: [\"cbrt/*\"]\nlog:\n  level: error\n"), 0o600))

	out, err := execute(t, "run", "--config="+file)
	require.NoError(t, err)
	assert.Contains(t, out, "cbrt/int32")
	assert.Contains(t, out, "cbrt/float64")
	assert.NotContains(t, out, "binary/")
}

func TestInvalidFlags(t *testing.T) {
	_, err := execute(t, "run", "--log-level=error", "--parallelism=0")
	assert.Error(t, err)

	_, err = execute(t, "list", "--config=missing.toml")
	assert.Error(t, err)
}

func TestRunLogsToErrorStream(t *testing.T) {
	out, stderr, err := executeWithStderr(t, "run",
		"--duration=0s",
		"--min-passes=1",
		"--cases=binary/int64",
		"--format=json",
	)
	require.NoError(t, err)

	report := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(out), &report), "stdout must hold only the report")
	assert.Contains(t, stderr, "Starting run")
	assert.Contains(t, stderr, `"command":"run"`)
}

func TestFailureReportedOnce(t *testing.T) {
	var stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"run", "--duration=0s", "--cases=no_such_kernel/*"})

	assert.Equal(t, 1, runMain(cmd, &stderr))
	assert.Equal(t, 1, strings.Count(stderr.String(), "no cases match"), stderr.String())
	assert.Equal(t, 0, runMain(newRootCommandWithArgs("list", "--cases=cbrt/*"), &stderr))
}

func newRootCommandWithArgs(args ...string) *cobra.Command {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return cmd
}
