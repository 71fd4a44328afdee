// Package sheet writes single-sheet xlsx workbooks for the report tools.
package sheet

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// defaultSheet is the sheet excelize creates in a new file.
const defaultSheet = "Sheet1"

// TitleStyle is applied by MergeTitle.
var TitleStyle = &excelize.Style{
	Font:      &excelize.Font{Bold: true, Size: 14},
	Alignment: &excelize.Alignment{Horizontal: "center"},
}

// Workbook is a workbook with one active sheet. Rows and columns are 1-based.
type Workbook struct {
	file   *excelize.File
	name   string
	maxRow int
}

// New creates a workbook whose only sheet is called name.
func New(name string) (*Workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(defaultSheet, name); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet %q: %w", name, err)
	}
	return &Workbook{file: f, name: name}, nil
}

// Name returns the sheet name.
func (w *Workbook) Name() string {
	return w.name
}

// SetCell writes value at (row, col).
func (w *Workbook) SetCell(row, col int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := w.file.SetCellValue(w.name, cell, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", cell, err)
	}
	w.touch(row)
	return nil
}

// AppendRow writes values starting in column A of the row below the last
// row written so far.
func (w *Workbook) AppendRow(values ...any) error {
	row := w.maxRow + 1
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(w.name, cell, &values); err != nil {
		return fmt.Errorf("failed to append row %d: %w", row, err)
	}
	w.touch(row)
	return nil
}

// MergeTitle merges the range first:last (e.g. "B1", "D1"), writes title in
// it and applies TitleStyle.
func (w *Workbook) MergeTitle(first, last, title string) error {
	if err := w.file.MergeCell(w.name, first, last); err != nil {
		return fmt.Errorf("failed to merge %s:%s: %w", first, last, err)
	}
	if err := w.file.SetCellValue(w.name, first, title); err != nil {
		return fmt.Errorf("failed to set title: %w", err)
	}

	style, err := w.file.NewStyle(TitleStyle)
	if err != nil {
		return fmt.Errorf("failed to create title style: %w", err)
	}
	if err := w.file.SetCellStyle(w.name, first, last, style); err != nil {
		return fmt.Errorf("failed to style title: %w", err)
	}

	_, row, err := excelize.CellNameToCoordinates(last)
	if err != nil {
		return err
	}
	w.touch(row)
	return nil
}

// SetColumnWidth sets the width of a column given by letter ("A").
func (w *Workbook) SetColumnWidth(col string, width float64) error {
	return w.file.SetColWidth(w.name, col, col, width)
}

// SaveAs writes the workbook to path.
func (w *Workbook) SaveAs(path string) error {
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// Bytes returns the serialized workbook.
func (w *Workbook) Bytes() ([]byte, error) {
	buf, err := w.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Close releases the workbook's resources.
func (w *Workbook) Close() error {
	return w.file.Close()
}

func (w *Workbook) touch(row int) {
	if row > w.maxRow {
		w.maxRow = row
	}
}

// ReadRows opens the xlsx file at path and returns the cell text of the named
// sheet.
func ReadRows(path, name string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetRows(name)
}

// maxNameLen is the longest sheet name Excel accepts.
const maxNameLen = 31

var nameReplacer = strings.NewReplacer(
	"[", "_", "]", "_", ":", "_", "*", "_", "?", "_", "/", "_", "\\", "_",
)

// SafeName turns s into a valid sheet name: forbidden characters become
// underscores and the result is cut to 31 characters. An empty result
// becomes "Sheet".
func SafeName(s string) string {
	s = strings.Trim(nameReplacer.Replace(s), "'")
	if r := []rune(s); len(r) > maxNameLen {
		s = string(r[:maxNameLen])
	}
	if strings.TrimSpace(s) == "" {
		return "Sheet"
	}
	return s
}
