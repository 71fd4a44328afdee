package trace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpang/trace-report-tools/internal/source"
)

func readAll(t *testing.T, input string) ([]Record, int) {
	t.Helper()
	var recs []Record
	skipped, err := Each(strings.NewReader(input), func(r Record) {
		recs = append(recs, r)
	})
	require.NoError(t, err)
	return recs, skipped
}

func TestReader(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Record
		skipped int
	}{
		{
			name:  "header",
			input: "key,op,size,op_count,key_size\na,get,100,1,10\n",
			want:  []Record{{Key: "a", Op: "get", Size: 100, OpCount: 1, KeySize: 10}},
		},
		{
			name:  "no header",
			input: "a,get,100,1,10\nb,set,3000,2,20\n",
			want: []Record{
				{Key: "a", Op: "get", Size: 100, OpCount: 1, KeySize: 10},
				{Key: "b", Op: "set", Size: 3000, OpCount: 2, KeySize: 20},
			},
		},
		{
			name:  "reordered header with extra column",
			input: "key,size,key_size,ttl,op,op_count\na,100,10,60,get,1\n",
			want:  []Record{{Key: "a", Op: "get", Size: 100, OpCount: 1, KeySize: 10}},
		},
		{
			name:    "malformed rows skipped",
			input:   "a,get,100,1,10\nshort,row\nb,get,big,1,10\n\nc,get,5,1,1\n",
			want:    []Record{{Key: "a", Op: "get", Size: 100, OpCount: 1, KeySize: 10}, {Key: "c", Op: "get", Size: 5, OpCount: 1, KeySize: 1}},
			skipped: 2,
		},
		{
			name:  "empty",
			input: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, skipped := readAll(t, tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.skipped, skipped)
		})
	}
}

func TestReader_IncompleteHeader(t *testing.T) {
	_, err := Each(strings.NewReader("key,op\na,get\n"), func(Record) {})
	assert.Error(t, err)
}

func TestRecord_ValueSize(t *testing.T) {
	assert.Equal(t, int64(90), Record{Size: 100, KeySize: 10}.ValueSize())
}

func TestEachFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,get,100,1,10\n"), 0o644))

	n := 0
	skipped, err := EachFile(path, source.Options{}, func(Record) { n++ })
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Zero(t, skipped)

	_, err = EachFile(filepath.Join(t.TempDir(), "missing.csv"), source.Options{}, func(Record) {})
	assert.Error(t, err)
}
