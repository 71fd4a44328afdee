package sizestats

import "fmt"

// Column headers of the summary table.
var tableHeader = []any{"", "<= 2KB", "> 2KB", "All"}

// Column widths of the summary table.
const (
	labelColumnWidth = 45
	valueColumnWidth = 16
)

// Sink receives the summary table.
type Sink interface {
	MergeTitle(first, last, title string) error
	AppendRow(values ...any) error
	SetColumnWidth(col string, width float64) error
}

// Rows returns the nine data rows of the summary table. Each row is a label
// followed by the Under 2KB, Over 2KB and All values.
func Rows(s *Stats) [][]any {
	raw := func(m Metric) []any {
		return []any{string(m), s.Get(SectionUnder2KB, m), s.Get(SectionOver2KB, m), s.Get(SectionAll, m)}
	}

	gb := func(label string, m Metric) ([]any, []any) {
		under := toInt(s.Get(SectionUnder2KB, m))
		over := toInt(s.Get(SectionOver2KB, m))
		all := toInt(s.Get(SectionAll, m))
		return []any{label, BytesToGB(under), BytesToGB(over), BytesToGB(all)},
			[]any{"", Percent(under, all), Percent(over, all), "100%"}
	}

	commas := func(label string, m Metric) []any {
		row := []any{label}
		for _, sec := range Sections {
			row = append(row, WithCommas(toInt(s.Get(sec, m))))
		}
		return row
	}

	fp1, fp1Pct := gb("Sum of the size of all objects (GB)", Footprint1)
	fp2, fp2Pct := gb("Sum of the average size of objects (GB)", Footprint2)

	return [][]any{
		raw(AvgKeySize),
		raw(AvgValueSize),
		raw(AvgObjectSize),
		fp1,
		fp1Pct,
		fp2,
		fp2Pct,
		commas("# of unique keys", UniqueKeys),
		commas("# of total objects", TotalKeys),
	}
}

// WriteTable lays the summary out on sink: the title merged across B1:D1,
// the column header row, then Rows.
func WriteTable(sink Sink, title string, s *Stats) error {
	if err := sink.MergeTitle("B1", "D1", title); err != nil {
		return err
	}
	if err := sink.AppendRow(tableHeader...); err != nil {
		return err
	}
	for _, row := range Rows(s) {
		if err := sink.AppendRow(row...); err != nil {
			return fmt.Errorf("failed to write %q row: %w", row[0], err)
		}
	}

	if err := sink.SetColumnWidth("A", labelColumnWidth); err != nil {
		return err
	}
	for _, col := range []string{"B", "C", "D"} {
		if err := sink.SetColumnWidth(col, valueColumnWidth); err != nil {
			return err
		}
	}
	return nil
}
