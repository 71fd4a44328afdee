package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const ruleWidth = 44

// FormatDurationShort formats a duration in a short format (M:SS or H:MM:SS).
func FormatDurationShort(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// FormatBytes renders a byte count in IEC units ("1.5 MiB").
func FormatBytes(n uint64) string {
	return humanize.IBytes(n)
}

// Banner writes a title framed by double rules.
func Banner(w io.Writer, title string) {
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, rule)
}

// Rule writes a single separator line.
func Rule(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("-", ruleWidth))
}

// KV writes a "Label: value" line.
func KV(w io.Writer, label string, value any) {
	fmt.Fprintf(w, "%s: %v\n", label, value)
}
