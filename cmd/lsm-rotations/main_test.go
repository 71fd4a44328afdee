package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpang/trace-report-tools/internal/lsmreport"
	"github.com/fpang/trace-report-tools/internal/sheet"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_RejectsArguments(t *testing.T) {
	out, err := execute(t, "state.json")
	require.Error(t, err)
	assert.Contains(t, out, "Usage:")
}

func rotationLog(counts ...int) string {
	var b strings.Builder
	for i, n := range counts {
		b.WriteString(strings.Repeat("1.5M ops completed\n", n))
		fmt.Fprintf(&b, "FIFO rotation count becomes from %d to %d\n", i, i+1)
	}
	return b.String()
}

func TestRootCmd_WritesRotationCounts(t *testing.T) {
	dir := t.TempDir()
	logs := filepath.Join(dir, "task_logs")
	require.NoError(t, os.Mkdir(logs, 0o755))

	state := `{"tasks": {
  "0": {"label": "lsm-fifo", "status": {"Done": {"result": "Success"}}},
  "1": {"label": "btree", "status": {"Done": {"result": "Success"}}}
}}`
	statePath := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(statePath, []byte(state), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(logs, "0.log"), []byte(rotationLog(2, 1)), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(logs, "1.log"), []byte(rotationLog(4)), 0o644))

	output := filepath.Join(dir, "counts.xlsx")
	t.Setenv("PUEUE_STATE_PATH", statePath)
	t.Setenv("PUEUE_LOGS_DIR", logs)
	t.Setenv("LSM_ROTATIONS_XLSX", output)
	t.Setenv("LSM_LABEL_MARKER", "lsm")
	t.Setenv("TRACETOOLS_ENCODING", "utf-8")
	t.Setenv("TRACETOOLS_S3_BUCKET", "")

	_, err := execute(t)
	require.NoError(t, err)

	rows, err := sheet.ReadRows(output, lsmreport.SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Task"}, {"lsm-fifo", "2", "1"}}, rows)
}
