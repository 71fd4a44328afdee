// Package trace reads key/value operation traces and summarises their object
// sizes.
package trace

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/trace-report-tools/internal/source"
)

// Columns of a trace row when the file has no header.
var defaultColumns = []string{"key", "op", "size", "op_count", "key_size"}

// Record is one trace row.
type Record struct {
	Key     string
	Op      string
	Size    int64
	OpCount int64
	KeySize int64
}

// ValueSize is the object size minus the key size.
func (r Record) ValueSize() int64 {
	return r.Size - r.KeySize
}

// columnIndex maps column names to field positions.
type columnIndex map[string]int

func newColumnIndex(names []string) columnIndex {
	idx := make(columnIndex, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if _, ok := idx[name]; !ok {
			idx[name] = i
		}
	}
	return idx
}

// width is the number of fields a row needs to carry every column.
func (c columnIndex) width() int {
	n := 0
	for _, col := range defaultColumns {
		if i, ok := c[col]; ok && i+1 > n {
			n = i + 1
		}
	}
	return n
}

func (c columnIndex) complete() bool {
	for _, col := range defaultColumns {
		if _, ok := c[col]; !ok {
			return false
		}
	}
	return true
}

func (c columnIndex) record(fields []string) (Record, error) {
	if len(fields) < c.width() {
		return Record{}, fmt.Errorf("expected %d fields, got %d", c.width(), len(fields))
	}

	num := func(col string) (int64, error) {
		v := strings.TrimSpace(fields[c[col]])
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q", col, v)
		}
		return n, nil
	}

	rec := Record{Key: fields[c["key"]], Op: fields[c["op"]]}
	var err error
	if rec.Size, err = num("size"); err != nil {
		return Record{}, err
	}
	if rec.OpCount, err = num("op_count"); err != nil {
		return Record{}, err
	}
	if rec.KeySize, err = num("key_size"); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Reader yields the records of a trace. The first row is treated as a header
// when its first field is "key"; otherwise rows are read in the default
// column order key,op,size,op_count,key_size. Malformed rows are skipped and
// counted.
type Reader struct {
	csv     *csv.Reader
	cols    columnIndex
	started bool
	line    int
	skipped int
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	return &Reader{csv: cr, cols: newColumnIndex(defaultColumns)}
}

// Skipped returns the number of malformed rows skipped so far.
func (r *Reader) Skipped() int {
	return r.skipped
}

// Next returns the next well-formed record, or io.EOF at the end of input.
func (r *Reader) Next() (Record, error) {
	for {
		fields, err := r.csv.Read()
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		r.line++

		var perr *csv.ParseError
		if errors.As(err, &perr) {
			r.skip(perr)
			continue
		}
		if err != nil {
			return Record{}, fmt.Errorf("failed to read trace: %w", err)
		}

		if !r.started {
			r.started = true
			if len(fields) > 0 && strings.TrimSpace(fields[0]) == "key" {
				cols := newColumnIndex(fields)
				if !cols.complete() {
					return Record{}, fmt.Errorf("trace header is missing columns: %s", strings.Join(fields, ","))
				}
				r.cols = cols
				continue
			}
		}

		rec, err := r.cols.record(fields)
		if err != nil {
			r.skip(err)
			continue
		}
		return rec, nil
	}
}

func (r *Reader) skip(err error) {
	r.skipped++
	log.Debug().Err(err).Int("line", r.line).Msg("Skipping malformed trace row")
}

// Each calls fn for every record of the trace read from r and returns the
// number of skipped rows.
func Each(r io.Reader, fn func(Record)) (int, error) {
	tr := NewReader(r)
	for {
		rec, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return tr.Skipped(), nil
		}
		if err != nil {
			return tr.Skipped(), err
		}
		fn(rec)
	}
}

// EachFile opens the trace at path and calls fn for each record.
func EachFile(path string, opts source.Options, fn func(Record)) (int, error) {
	rc, err := source.Open(path, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to open trace: %w", err)
	}
	defer rc.Close()

	skipped, err := Each(rc, fn)
	if err != nil {
		return skipped, fmt.Errorf("%s: %w", path, err)
	}
	return skipped, nil
}
