// Package source opens the text inputs of the report tools: process logs,
// statistics reports and trace CSVs. Inputs may be gzip or zstd compressed
// and may contain bytes that are not valid in the expected charset; neither
// condition aborts a scan.
package source

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names understood by Options.
const (
	EncodingUTF8 = "utf-8"
	EncodingAuto = "auto"
)

// sniffSize is how much of the decompressed stream charset detection looks at.
const sniffSize = 64 * 1024

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// ErrUnsupportedEncoding is returned when Options.Encoding names a charset
// that has no decoder.
var ErrUnsupportedEncoding = errors.New("unsupported encoding")

// Options configures how a source is decoded.
type Options struct {
	// Encoding is EncodingUTF8 (also the zero value), EncodingAuto, or an
	// explicit charset label such as "euc-kr" or "windows-1252".
	Encoding string
}

// Open opens path for reading as UTF-8 text. Compressed files are detected
// by their magic bytes, not their extension.
func Open(path string, opts Options) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r, closer, err := decompress(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open compressed stream %s: %w", path, err)
	}

	decoded, err := decode(r, opts.Encoding)
	if err != nil {
		closer()
		f.Close()
		return nil, err
	}

	return &readCloser{Reader: decoded, close: func() error {
		closer()
		return f.Close()
	}}, nil
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r *readCloser) Close() error { return r.close() }

// decompress wraps r in a gzip or zstd decoder when the stream starts with
// the matching magic number.
func decompress(r io.Reader) (io.Reader, func(), error) {
	br := bufio.NewReaderSize(r, sniffSize)
	head, _ := br.Peek(len(zstdMagic))

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, err
		}
		return zr, func() { zr.Close() }, nil
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	default:
		return br, func() {}, nil
	}
}

// CheckEncoding reports whether name is an encoding Open can decode.
func CheckEncoding(name string) error {
	_, err := lookup(name)
	return err
}

// lookup resolves an Options.Encoding value. A nil encoding with a nil
// error means auto detection.
func lookup(name string) (encoding.Encoding, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	switch name {
	case "", EncodingUTF8, "utf8":
		return unicode.UTF8, nil
	case EncodingAuto:
		return nil, nil
	default:
		enc, err := htmlindex.Get(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, name)
		}
		return enc, nil
	}
}

// decode returns a reader that yields UTF-8. Invalid sequences become U+FFFD.
func decode(r io.Reader, name string) (io.Reader, error) {
	enc, err := lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		br := bufio.NewReaderSize(r, sniffSize)
		sample, _ := br.Peek(sniffSize)
		return transform.NewReader(br, detect(sample).NewDecoder()), nil
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// detect guesses the charset of sample, falling back to UTF-8 when the
// detector has no answer or names a charset without a decoder.
func detect(sample []byte) encoding.Encoding {
	if len(sample) == 0 {
		return unicode.UTF8
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil || result == nil {
		return unicode.UTF8
	}

	enc, err := htmlindex.Get(strings.ToLower(result.Charset))
	if err != nil {
		log.Debug().
			Str("charset", result.Charset).
			Int("confidence", result.Confidence).
			Msg("Detected charset has no decoder, using utf-8")
		return unicode.UTF8
	}

	log.Debug().
		Str("charset", result.Charset).
		Int("confidence", result.Confidence).
		Msg("Detected input charset")
	return enc
}
