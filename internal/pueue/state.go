// Package pueue reads the task list out of a pueue daemon state document
// (state.json) and selects the finished benchmark tasks worth reporting.
package pueue

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/trace-report-tools/internal/jsonutil"
)

// Status names used by pueue. Only StatusDone matters for reporting.
const (
	StatusDone = "Done"
	ResultOK   = "Success"
)

// ErrMalformedState is returned when the state document is not valid JSON.
var ErrMalformedState = errors.New("malformed pueue state")

// Task is one entry of the state document's task map.
type Task struct {
	// ID is the key of the task in the "tasks" map.
	ID    string
	Label string
	// Status is the status variant name ("Done", "Running", "Queued", ...).
	Status string
	// Result is the Done result when it is a plain string ("Success",
	// "Killed", ...). Structured results such as {"Failed": 1} leave it empty.
	Result string
	// finished reports whether the Done variant carried a non-empty payload.
	finished bool
}

// rawTask mirrors the fields read from a task entry. Status is either a bare
// string ("Queued") or a single-key object ({"Done": {...}}).
type rawTask struct {
	Label  any `json:"label"`
	Status any `json:"status"`
}

// Qualifies reports whether the task finished successfully and its label
// contains marker, ignoring case.
func (t Task) Qualifies(marker string) bool {
	if t.Status != StatusDone || !t.finished {
		return false
	}
	if t.Result != ResultOK {
		return false
	}
	if t.Label == "" {
		return false
	}
	return strings.Contains(strings.ToLower(t.Label), strings.ToLower(marker))
}

// LoadState reads the state document at path and returns its tasks in
// document order. Entries that cannot be interpreted as tasks are skipped.
func LoadState(path string) ([]Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pueue state: %w", err)
	}
	return ParseState(data)
}

// ParseState parses a state document held in memory.
func ParseState(data []byte) ([]Task, error) {
	fields, err := jsonutil.ObjectFields(data, "tasks")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}

	tasks := make([]Task, 0, len(fields))
	for _, f := range fields {
		var raw rawTask
		if err := f.Decode(&raw); err != nil {
			log.Warn().Err(err).Str("task", f.Key).Msg("Skipping malformed task entry")
			continue
		}
		tasks = append(tasks, newTask(f.Key, raw))
	}
	return tasks, nil
}

func newTask(id string, raw rawTask) Task {
	t := Task{ID: id}
	t.Label, _ = raw.Label.(string)

	switch status := raw.Status.(type) {
	case string:
		t.Status = status
	case map[string]any:
		if payload, ok := status[StatusDone]; ok {
			t.Status = StatusDone
			if done, ok := payload.(map[string]any); ok && len(done) > 0 {
				t.finished = true
				t.Result, _ = done["result"].(string)
			}
			break
		}
		for name := range status {
			t.Status = name
		}
	}
	return t
}

// Select returns the tasks that qualify for the report, keeping their order.
func Select(tasks []Task, marker string) []Task {
	var selected []Task
	for _, t := range tasks {
		if !t.Qualifies(marker) {
			log.Debug().
				Str("task", t.ID).
				Str("label", t.Label).
				Str("status", t.Status).
				Str("result", t.Result).
				Msg("Skipping task")
			continue
		}
		selected = append(selected, t)
	}
	return selected
}
