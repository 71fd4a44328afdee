package trace

import (
	"bufio"
	"fmt"
	"io"
	"math/bits"
)

const (
	// minBinShift is log2 of the smallest bin bound (64 bytes).
	minBinShift = 6
	// NumBins covers bounds 64 B through 1 MiB.
	NumBins = 15
)

// BinIndex returns the histogram bin of an object size: ceil(log2(size)) - 6,
// clamped to [0, NumBins-1].
func BinIndex(size int64) int {
	if size <= 1<<minBinShift {
		return 0
	}
	idx := bits.Len64(uint64(size-1)) - minBinShift
	if idx >= NumBins {
		return NumBins - 1
	}
	return idx
}

// BinBound returns the upper size bound of bin i.
func BinBound(i int) int64 {
	return 1 << (minBinShift + i)
}

// Histogram counts objects per power-of-two size bin.
type Histogram struct {
	counts [NumBins]uint64
}

// Add counts one record.
func (h *Histogram) Add(rec Record) {
	h.counts[BinIndex(rec.Size)]++
}

// Counts returns the per-bin counts.
func (h *Histogram) Counts() []uint64 {
	out := make([]uint64, NumBins)
	copy(out, h.counts[:])
	return out
}

// Total returns the number of objects counted.
func (h *Histogram) Total() uint64 {
	var n uint64
	for _, c := range h.counts {
		n += c
	}
	return n
}

// WriteTo writes one "<bound> <count>" line per bin.
func (h *Histogram) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for i, c := range h.counts {
		k, _ := fmt.Fprintf(bw, "%d %d\n", BinBound(i), c)
		n += int64(k)
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("failed to write histogram: %w", err)
	}
	return n, nil
}
