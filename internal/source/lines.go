package source

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// Lines calls fn for every line of r with the trailing "\n" or "\r\n"
// removed. Lines have no length limit. Iteration stops early when fn returns
// false.
func Lines(r io.Reader, fn func(line string) bool) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			if !fn(line) {
				return nil
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// ReadLines opens path with Open and feeds its lines to fn.
func ReadLines(path string, opts Options, fn func(line string) bool) error {
	rc, err := Open(path, opts)
	if err != nil {
		return err
	}
	defer rc.Close()

	return Lines(rc, fn)
}
