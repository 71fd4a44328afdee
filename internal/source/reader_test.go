package source

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
)

const sample = "1.2M ops completed\nFIFO rotation count becomes from 0 to 1\n"

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func readAll(t *testing.T, path string, opts Options) string {
	t.Helper()
	rc, err := Open(path, opts)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestOpen_Plain(t *testing.T) {
	path := writeFile(t, "task.log", []byte(sample))
	assert.Equal(t, sample, readAll(t, path, Options{}))
}

func TestOpen_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := writeFile(t, "task.log.gz", buf.Bytes())
	assert.Equal(t, sample, readAll(t, path, Options{}))
}

func TestOpen_Zstd(t *testing.T) {
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = zw.Write([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	// Detection is by content, so a misleading extension still works.
	path := writeFile(t, "task.log", buf.Bytes())
	assert.Equal(t, sample, readAll(t, path, Options{}))
}

func TestOpen_InvalidUTF8IsReplaced(t *testing.T) {
	data := []byte("before \xff\xfe after\n")
	path := writeFile(t, "bad.log", data)

	got := readAll(t, path, Options{Encoding: EncodingUTF8})
	assert.True(t, strings.HasPrefix(got, "before "))
	assert.True(t, strings.HasSuffix(got, " after\n"))
	assert.Contains(t, got, "�")
}

func TestOpen_ExplicitCharset(t *testing.T) {
	encoded, err := korean.EUCKR.NewEncoder().String("엑셀 파일\n")
	require.NoError(t, err)
	path := writeFile(t, "report.txt", []byte(encoded))

	assert.Equal(t, "엑셀 파일\n", readAll(t, path, Options{Encoding: "euc-kr"}))
}

func TestOpen_AutoKeepsASCII(t *testing.T) {
	path := writeFile(t, "task.log", []byte(sample))
	assert.Equal(t, sample, readAll(t, path, Options{Encoding: EncodingAuto}))
}

func TestOpen_AutoEmptyFile(t *testing.T) {
	path := writeFile(t, "empty.log", nil)
	assert.Equal(t, "", readAll(t, path, Options{Encoding: EncodingAuto}))
}

func TestOpen_UnsupportedEncoding(t *testing.T) {
	path := writeFile(t, "task.log", []byte(sample))
	_, err := Open(path, Options{Encoding: "klingon-7"})
	assert.ErrorIs(t, err, ErrUnsupportedEncoding)
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.log"), Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCheckEncoding(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"", false},
		{"UTF-8", false},
		{"auto", false},
		{"euc-kr", false},
		{" windows-1252 ", false},
		{"no-such-charset", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckEncoding(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedEncoding)
				return
			}
			assert.NoError(t, err)
		})
	}
}
