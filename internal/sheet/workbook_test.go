package sheet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func save(t *testing.T, w *Workbook) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, w.SaveAs(path))
	require.NoError(t, w.Close())
	return path
}

func TestWorkbook_SetCell(t *testing.T) {
	w, err := New("Counts")
	require.NoError(t, err)
	assert.Equal(t, "Counts", w.Name())

	require.NoError(t, w.SetCell(1, 1, "Task"))
	require.NoError(t, w.SetCell(2, 1, "lsm-a"))
	require.NoError(t, w.SetCell(2, 2, 3))
	require.NoError(t, w.SetCell(2, 3, 5))

	rows, err := ReadRows(save(t, w), "Counts")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Task"}, {"lsm-a", "3", "5"}}, rows)
}

func TestWorkbook_AppendRowAfterTitle(t *testing.T) {
	w, err := New("Summary")
	require.NoError(t, err)

	require.NoError(t, w.MergeTitle("B1", "D1", "trace_0"))
	require.NoError(t, w.AppendRow("", "<= 2KB", "> 2KB", "All"))
	require.NoError(t, w.AppendRow("Average key size", "10.00", "20.00", "15.00"))
	require.NoError(t, w.SetColumnWidth("A", 45))

	path := save(t, w)
	rows, err := ReadRows(path, "Summary")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"", "trace_0"}, rows[0])
	assert.Equal(t, []string{"", "<= 2KB", "> 2KB", "All"}, rows[1])
	assert.Equal(t, "Average key size", rows[2][0])

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	merged, err := f.GetMergeCells("Summary")
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "B1", merged[0].GetStartAxis())
	assert.Equal(t, "D1", merged[0].GetEndAxis())

	width, err := f.GetColWidth("Summary", "A")
	require.NoError(t, err)
	assert.Equal(t, 45.0, width)
}

func TestWorkbook_Bytes(t *testing.T) {
	w, err := New("Counts")
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.SetCell(1, 1, "Task"))
	data, err := w.Bytes()
	require.NoError(t, err)
	// xlsx is a zip container.
	assert.Equal(t, []byte("PK"), data[:2])
}

func TestWorkbook_InvalidCoordinates(t *testing.T) {
	w, err := New("Counts")
	require.NoError(t, err)
	defer w.Close()

	assert.Error(t, w.SetCell(0, 1, "x"))
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Twitter trace_0", "Twitter trace_0"},
		{"a/b:c", "a_b_c"},
		{"", "Sheet"},
		{"'quoted'", "quoted"},
		{"0123456789012345678901234567890123", "0123456789012345678901234567890"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeName(tt.in), tt.in)
	}
}
