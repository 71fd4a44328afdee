package trace

import (
	"bufio"
	"fmt"
	"io"

	"github.com/fpang/trace-report-tools/internal/sizestats"
)

// SmallObjectLimit is the largest object size counted as under 2KB.
const SmallObjectLimit = 2048

type keyAgg struct {
	sum   int64
	count int64
}

// Accumulator collects size totals for one group of records.
type Accumulator struct {
	keySize    int64
	valueSize  int64
	objectSize int64
	count      int64
	keys       map[string]*keyAgg
}

func newAccumulator() *Accumulator {
	return &Accumulator{keys: make(map[string]*keyAgg)}
}

// Add records one object.
func (a *Accumulator) Add(rec Record) {
	a.keySize += rec.KeySize
	a.valueSize += rec.ValueSize()
	a.objectSize += rec.Size
	a.count++

	agg, ok := a.keys[rec.Key]
	if !ok {
		agg = &keyAgg{}
		a.keys[rec.Key] = agg
	}
	agg.sum += rec.Size
	agg.count++
}

// Summary is the computed statistics of an Accumulator.
type Summary struct {
	AvgKeySize    float64
	AvgValueSize  float64
	AvgObjectSize float64
	// Footprint1 is the sum of all object sizes.
	Footprint1 int64
	// Footprint2 is the sum over unique keys of the key's integer average
	// object size.
	Footprint2 int64
	UniqueKeys int64
	TotalKeys  int64
}

// Summary computes the group's statistics. An empty group is all zeros.
func (a *Accumulator) Summary() Summary {
	if a.count == 0 {
		return Summary{}
	}

	var fp2 int64
	for _, agg := range a.keys {
		fp2 += agg.sum / agg.count
	}

	n := float64(a.count)
	return Summary{
		AvgKeySize:    float64(a.keySize) / n,
		AvgValueSize:  float64(a.valueSize) / n,
		AvgObjectSize: float64(a.objectSize) / n,
		Footprint1:    a.objectSize,
		Footprint2:    fp2,
		UniqueKeys:    int64(len(a.keys)),
		TotalKeys:     a.count,
	}
}

// Info splits records into the under 2KB, over 2KB and all groups.
type Info struct {
	under *Accumulator
	over  *Accumulator
	all   *Accumulator
}

// NewInfo returns an empty Info.
func NewInfo() *Info {
	return &Info{under: newAccumulator(), over: newAccumulator(), all: newAccumulator()}
}

// Add records one object in All and in its size group.
func (i *Info) Add(rec Record) {
	i.all.Add(rec)
	if rec.Size <= SmallObjectLimit {
		i.under.Add(rec)
	} else {
		i.over.Add(rec)
	}
}

// Summary returns the statistics of a section.
func (i *Info) Summary(sec sizestats.Section) Summary {
	switch sec {
	case sizestats.SectionUnder2KB:
		return i.under.Summary()
	case sizestats.SectionOver2KB:
		return i.over.Summary()
	case sizestats.SectionAll:
		return i.all.Summary()
	default:
		return Summary{}
	}
}

// WriteReport writes the three sections in the text format read by
// sizestats.Parse.
func (i *Info) WriteReport(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, sec := range sizestats.Sections {
		s := i.Summary(sec)
		fmt.Fprintln(bw, sec.Header())
		fmt.Fprintf(bw, "  %-21s: %.2f\n", sizestats.AvgKeySize, s.AvgKeySize)
		fmt.Fprintf(bw, "  %-21s: %.2f\n", sizestats.AvgValueSize, s.AvgValueSize)
		fmt.Fprintf(bw, "  %-21s: %.2f\n", sizestats.AvgObjectSize, s.AvgObjectSize)
		fmt.Fprintf(bw, "  %-46s: %d\n", "Footprint1 (sum of object size)", s.Footprint1)
		fmt.Fprintf(bw, "  %-46s: %d\n", "Footprint2 (sum of average of duplicated key)", s.Footprint2)
		fmt.Fprintf(bw, "  %-46s: %d\n", sizestats.UniqueKeys, s.UniqueKeys)
		fmt.Fprintf(bw, "  %-46s: %d\n", sizestats.TotalKeys, s.TotalKeys)
		fmt.Fprintln(bw)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
