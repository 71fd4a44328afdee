// Package sizestats reads the three-section key/value size statistics report
// produced by trace-info and renders it as a summary table.
package sizestats

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/fpang/trace-report-tools/internal/source"
)

// Section is one of the report's size buckets.
type Section int

const (
	SectionNone Section = iota
	SectionUnder2KB
	SectionOver2KB
	SectionAll
)

// Sections lists the real sections in report order.
var Sections = []Section{SectionUnder2KB, SectionOver2KB, SectionAll}

func (s Section) String() string {
	switch s {
	case SectionUnder2KB:
		return "Under2KB"
	case SectionOver2KB:
		return "Over2KB"
	case SectionAll:
		return "All"
	default:
		return "None"
	}
}

// Header returns the line that opens the section in a report.
func (s Section) Header() string {
	switch s {
	case SectionUnder2KB:
		return "=== Under 2KB ==="
	case SectionOver2KB:
		return "=== Over 2KB ==="
	case SectionAll:
		return "=== All ==="
	default:
		return ""
	}
}

// Metric names a statistic within a section.
type Metric string

const (
	AvgKeySize    Metric = "Average key size"
	AvgValueSize  Metric = "Average value size"
	AvgObjectSize Metric = "Average object size"
	Footprint1    Metric = "Footprint1"
	Footprint2    Metric = "Footprint2"
	UniqueKeys    Metric = "Unique key count"
	TotalKeys     Metric = "Total key count"
)

// Metrics lists every metric in report order.
var Metrics = []Metric{AvgKeySize, AvgValueSize, AvgObjectSize, Footprint1, Footprint2, UniqueKeys, TotalKeys}

var metricPatterns = map[Metric]*regexp.Regexp{
	AvgKeySize:    regexp.MustCompile(`Average key size\s*:\s*([\d\.]+)`),
	AvgValueSize:  regexp.MustCompile(`Average value size\s*:\s*([\d\.]+)`),
	AvgObjectSize: regexp.MustCompile(`Average object size\s*:\s*([\d\.]+)`),
	Footprint1:    regexp.MustCompile(`Footprint1 \(sum of object size\)\s*:\s*([\d]+)`),
	Footprint2:    regexp.MustCompile(`Footprint2 \(sum of average of duplicated key\)\s*:\s*([\d]+)`),
	UniqueKeys:    regexp.MustCompile(`Unique key count\s*:\s*([\d]+)`),
	TotalKeys:     regexp.MustCompile(`Total key count\s*:\s*([\d]+)`),
}

// DefaultValue is reported for metrics the report did not contain.
const DefaultValue = "0"

// Stats holds the raw metric strings of each section.
type Stats struct {
	values map[Section]map[Metric]string
}

// NewStats returns an empty Stats.
func NewStats() *Stats {
	s := &Stats{values: make(map[Section]map[Metric]string, len(Sections))}
	for _, sec := range Sections {
		s.values[sec] = make(map[Metric]string)
	}
	return s
}

// Set stores a raw metric value. Values for SectionNone are dropped.
func (s *Stats) Set(sec Section, m Metric, value string) {
	if values, ok := s.values[sec]; ok {
		values[m] = value
	}
}

// Lookup returns the raw value of a metric and whether the report had it.
func (s *Stats) Lookup(sec Section, m Metric) (string, bool) {
	v, ok := s.values[sec][m]
	return v, ok
}

// Get returns the raw value of a metric, or DefaultValue when absent.
func (s *Stats) Get(sec Section, m Metric) string {
	if v, ok := s.Lookup(sec, m); ok {
		return v
	}
	return DefaultValue
}

// Len returns how many metric values were found across all sections.
func (s *Stats) Len() int {
	n := 0
	for _, values := range s.values {
		n += len(values)
	}
	return n
}

// parser attributes metric lines to the section opened by the latest header.
type parser struct {
	current Section
	stats   *Stats
}

func (p *parser) feed(line string) {
	line = strings.TrimSpace(line)

	for _, sec := range Sections {
		if strings.HasPrefix(line, sec.Header()) {
			p.current = sec
			return
		}
	}
	if p.current == SectionNone {
		return
	}

	for _, m := range Metrics {
		if match := metricPatterns[m].FindStringSubmatch(line); match != nil {
			p.stats.Set(p.current, m, match[1])
		}
	}
}

// Parse reads a statistics report. Lines before the first section header
// are ignored; when a metric appears twice in a section the later line wins.
func Parse(r io.Reader) (*Stats, error) {
	p := &parser{stats: NewStats()}
	err := source.Lines(r, func(line string) bool {
		p.feed(line)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return p.stats, nil
}

// ParseFile opens and parses the report at path.
func ParseFile(path string, opts source.Options) (*Stats, error) {
	p := &parser{stats: NewStats()}
	err := source.ReadLines(path, opts, func(line string) bool {
		p.feed(line)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", path, err)
	}
	return p.stats, nil
}
