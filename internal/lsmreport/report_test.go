package lsmreport

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpang/trace-report-tools/internal/pueue"
	"github.com/fpang/trace-report-tools/internal/sheet"
)

// gridSink records cells in memory.
type gridSink map[[2]int]any

func (g gridSink) SetCell(row, col int, value any) error {
	g[[2]int{row, col}] = value
	return nil
}

func segmentLog(counts ...int) string {
	var b strings.Builder
	for i, n := range counts {
		b.WriteString(strings.Repeat("0.5M ops completed\n", n))
		fmt.Fprintf(&b, "FIFO rotation count becomes from %d to %d\n", i, i+1)
	}
	return b.String()
}

const state = `{"tasks": {
  "3": {"label": "LSM-fifo-a", "status": {"Done": {"result": "Success"}}},
  "1": {"label": "btree", "status": {"Done": {"result": "Success"}}},
  "2": {"label": "lsm-fifo-b", "status": {"Done": {"result": "Success"}}},
  "4": {"label": "lsm-fifo-c", "status": {"Done": {"result": "Failed"}}},
  "5": {"label": "lsm-fifo-nolog", "status": {"Done": {"result": "Success"}}}
}}`

func setup(t *testing.T) (string, []pueue.Task) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "3.log"), []byte(segmentLog(3, 5, 0)+"1.0M ops completed\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.log"), []byte(segmentLog(9)), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "4.log"), []byte(segmentLog(9)), 0o644))

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(segmentLog(2)))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2.log.gz"), buf.Bytes(), 0o644))

	tasks, err := pueue.ParseState([]byte(state))
	require.NoError(t, err)
	return dir, tasks
}

func TestBuild(t *testing.T) {
	dir, tasks := setup(t)

	rows := Build(tasks, Options{LogsDir: dir, LabelMarker: "lsm"})

	require.Len(t, rows, 3)
	assert.Equal(t, Row{TaskID: "3", Label: "LSM-fifo-a", Counts: []int{3, 5, 0}}, rows[0])
	assert.Equal(t, Row{TaskID: "2", Label: "lsm-fifo-b", Counts: []int{2}}, rows[1])
	assert.Equal(t, "5", rows[2].TaskID)
	assert.Empty(t, rows[2].Counts, "missing log means no rotations")
}

func TestLogPath(t *testing.T) {
	dir, _ := setup(t)

	assert.Equal(t, filepath.Join(dir, "3.log"), LogPath(dir, "3"))
	assert.Equal(t, filepath.Join(dir, "2.log.gz"), LogPath(dir, "2"))
	assert.Equal(t, filepath.Join(dir, "99.log"), LogPath(dir, "99"))
}

func TestWrite(t *testing.T) {
	grid := gridSink{}
	rows := []Row{
		{Label: "lsm-a", Counts: []int{3, 5, 0}},
		{Label: "lsm-b"},
	}

	require.NoError(t, Write(grid, rows))

	assert.Equal(t, gridSink{
		{1, 1}: "Task",
		{2, 1}: "lsm-a",
		{2, 2}: 3,
		{2, 3}: 5,
		{2, 4}: 0,
		{3, 1}: "lsm-b",
	}, grid)
}

func TestWrite_Workbook(t *testing.T) {
	dir, tasks := setup(t)
	rows := Build(tasks, Options{LogsDir: dir, LabelMarker: "lsm"})

	w, err := sheet.New(SheetName)
	require.NoError(t, err)
	require.NoError(t, Write(w, rows))

	out := filepath.Join(t.TempDir(), "counts.xlsx")
	require.NoError(t, w.SaveAs(out))
	require.NoError(t, w.Close())

	got, err := sheet.ReadRows(out, SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Task"},
		{"LSM-fifo-a", "3", "5", "0"},
		{"lsm-fifo-b", "2"},
		{"lsm-fifo-nolog"},
	}, got)
}
