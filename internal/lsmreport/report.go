// Package lsmreport builds the per-task FIFO rotation table: one row per
// successful LSM benchmark task, holding the number of ops-completed markers
// logged between consecutive rotations.
package lsmreport

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/fpang/trace-report-tools/internal/pueue"
	"github.com/fpang/trace-report-tools/internal/rotation"
	"github.com/fpang/trace-report-tools/internal/source"
)

// SheetName is the name of the report's only sheet.
const SheetName = "LSM_FifoRotation_Counts"

// HeaderLabel is written in the first cell of the header row.
const HeaderLabel = "Task"

// logSuffixes are tried in order when resolving a task's log file.
var logSuffixes = []string{".log", ".log.gz", ".log.zst"}

// Row is one line of the report.
type Row struct {
	TaskID string
	Label  string
	Counts []int
}

// Options configures Build.
type Options struct {
	// LogsDir holds one "<task-id>.log" file per task.
	LogsDir string
	// LabelMarker selects tasks by label, ignoring case.
	LabelMarker string
	Source      source.Options
}

// Sink receives report cells. Rows and columns are 1-based.
type Sink interface {
	SetCell(row, col int, value any) error
}

// LogPath returns the log file for taskID. When no log exists under any known
// suffix the plain ".log" path is returned.
func LogPath(logsDir, taskID string) string {
	for _, suffix := range logSuffixes {
		path := filepath.Join(logsDir, taskID+suffix)
		if _, err := os.Stat(path); err == nil {
			return path
		} else if !errors.Is(err, fs.ErrNotExist) {
			log.Debug().Err(err).Str("path", path).Msg("Failed to stat log candidate")
		}
	}
	return filepath.Join(logsDir, taskID+logSuffixes[0])
}

// Build selects qualifying tasks and counts the rotations in each task's log.
// Row order follows task order.
func Build(tasks []pueue.Task, opts Options) []Row {
	selected := pueue.Select(tasks, opts.LabelMarker)

	rows := make([]Row, 0, len(selected))
	for _, t := range selected {
		path := LogPath(opts.LogsDir, t.ID)
		counts := rotation.CountFile(path, opts.Source)

		log.Info().
			Str("task", t.ID).
			Str("label", t.Label).
			Str("log", path).
			Int("rotations", len(counts)).
			Msg("Task log scanned")

		rows = append(rows, Row{TaskID: t.ID, Label: t.Label, Counts: counts})
	}
	return rows
}

// Write lays rows out on sink: the header cell in A1, then one row per task
// with the label in column 1 and the counts in columns 2..N.
func Write(sink Sink, rows []Row) error {
	if err := sink.SetCell(1, 1, HeaderLabel); err != nil {
		return err
	}
	for i, r := range rows {
		excelRow := i + 2
		if err := sink.SetCell(excelRow, 1, r.Label); err != nil {
			return err
		}
		for j, n := range r.Counts {
			if err := sink.SetCell(excelRow, j+2, n); err != nil {
				return err
			}
		}
	}
	return nil
}
