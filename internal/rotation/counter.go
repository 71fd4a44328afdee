// Package rotation counts LSM "ops completed" progress markers between
// consecutive FIFO rotation markers in a benchmark process log.
package rotation

import (
	"errors"
	"io"
	"io/fs"
	"regexp"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/fpang/trace-report-tools/internal/source"
)

var (
	opsCompletedPattern = regexp.MustCompile(`[0-9]*\.[0-9]*M ops completed`)
	rotationPattern     = regexp.MustCompile(`FIFO rotation count becomes from (\d+) to (\d+)`)
)

// Segment is the stretch of log between two rotation markers.
type Segment struct {
	// Ops is the number of ops-completed markers in the segment.
	Ops int
	// From and To are the rotation counts reported by the closing marker.
	From, To int
}

// Counter is the state of a single forward scan over a log.
// The zero value is ready to use.
type Counter struct {
	current  int
	segments []Segment
}

// Observe feeds one log line to the counter. A line that carries both
// markers counts as progress first and then closes the segment.
func (c *Counter) Observe(line string) {
	if opsCompletedPattern.MatchString(line) {
		c.current++
	}

	m := rotationPattern.FindStringSubmatch(line)
	if m == nil {
		return
	}
	from, _ := strconv.Atoi(m[1])
	to, _ := strconv.Atoi(m[2])
	c.segments = append(c.segments, Segment{Ops: c.current, From: from, To: to})
	c.current = 0
}

// Segments returns the closed segments in log order.
func (c *Counter) Segments() []Segment {
	return c.segments
}

// Counts returns the ops count of every closed segment in log order. Progress
// after the last rotation marker is not included.
func (c *Counter) Counts() []int {
	counts := make([]int, len(c.segments))
	for i, s := range c.segments {
		counts[i] = s.Ops
	}
	return counts
}

// Pending returns the progress seen since the last rotation marker.
func (c *Counter) Pending() int {
	return c.current
}

// Scan runs a Counter over every line of r.
func Scan(r io.Reader) (*Counter, error) {
	c := &Counter{}
	err := source.Lines(r, func(line string) bool {
		c.Observe(line)
		return true
	})
	return c, err
}

// CountFile returns the per-segment ops counts of the log at path. A missing
// or unreadable log yields an empty sequence; a read failure part-way through
// keeps the segments closed before it.
func CountFile(path string, opts source.Options) []int {
	rc, err := source.Open(path, opts)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("path", path).Msg("Log file not found, no rotations")
		} else {
			log.Warn().Err(err).Str("path", path).Msg("Failed to open log file, no rotations")
		}
		return []int{}
	}
	defer rc.Close()

	c, err := Scan(rc)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Log read stopped early")
	}

	for i, s := range c.Segments() {
		log.Debug().
			Str("path", path).
			Int("segment", i).
			Int("ops", s.Ops).
			Int("from", s.From).
			Int("to", s.To).
			Msg("Rotation segment")
	}
	log.Debug().
		Str("path", path).
		Int("segments", len(c.Segments())).
		Int("dropped", c.Pending()).
		Msg("Log scan complete")

	return c.Counts()
}
