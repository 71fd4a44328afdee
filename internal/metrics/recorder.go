// Package metrics accumulates per-run counters for the trace report tools
// and emits them as a single structured log event when the run ends.
package metrics

import (
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Units attached to recorded values.
const (
	UnitMilliseconds = "Milliseconds"
	UnitCount        = "Count"
	UnitBytes        = "Bytes"
	UnitNone         = "None"
)

// metricDef holds the unit and current value of a single metric.
type metricDef struct {
	Unit  string
	Value float64
}

// Recorder accumulates metrics and properties for a single run.
// It is NOT safe for concurrent use.
type Recorder struct {
	tool       string
	started    time.Time
	metrics    map[string]*metricDef
	properties map[string]string
}

// New creates a Recorder for the named tool. The run duration is measured
// from this call.
func New(tool string) *Recorder {
	return &Recorder{
		tool:       tool,
		started:    time.Now(),
		metrics:    make(map[string]*metricDef),
		properties: make(map[string]string),
	}
}

// Metric sets a named metric value with a unit.
func (r *Recorder) Metric(name string, value float64, unit string) *Recorder {
	r.metrics[name] = &metricDef{Unit: unit, Value: value}
	return r
}

// Add increments a count metric by n, creating it if needed.
func (r *Recorder) Add(name string, n int) *Recorder {
	m, ok := r.metrics[name]
	if !ok {
		m = &metricDef{Unit: UnitCount}
		r.metrics[name] = m
	}
	m.Value += float64(n)
	return r
}

// Count is a convenience for Add(name, 1).
func (r *Recorder) Count(name string) *Recorder {
	return r.Add(name, 1)
}

// Value returns the current value of a metric, or 0 if it was never recorded.
func (r *Recorder) Value(name string) float64 {
	if m, ok := r.metrics[name]; ok {
		return m.Value
	}
	return 0
}

// Property adds a non-metric field to the summary event.
func (r *Recorder) Property(key, value string) *Recorder {
	r.properties[key] = value
	return r
}

// Flush logs the run summary on the global logger.
func (r *Recorder) Flush() {
	r.FlushTo(log.Logger)
}

// FlushTo logs the run summary on logger, including the run's elapsed time.
// Count metrics are written as integers; other units keep their unit as a
// field name suffix.
func (r *Recorder) FlushTo(logger zerolog.Logger) {
	r.Metric("elapsed", float64(time.Since(r.started).Milliseconds()), UnitMilliseconds)
	evt := logger.Info().Str("tool", r.tool)

	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m := r.metrics[name]
		switch m.Unit {
		case UnitCount:
			evt = evt.Int64(name, int64(m.Value))
		case UnitNone:
			evt = evt.Float64(name, m.Value)
		default:
			evt = evt.Float64(name+m.Unit, m.Value)
		}
	}

	for k, v := range r.properties {
		evt = evt.Str(k, v)
	}

	evt.Msg("Run summary")
}

// Fatal logs the run summary marked as failed and returns a fatal event on
// the global logger. Sending the event exits the process.
func (r *Recorder) Fatal() *zerolog.Event {
	r.failTo(log.Logger)
	return log.Fatal()
}

func (r *Recorder) failTo(logger zerolog.Logger) {
	r.Property("status", "failed")
	r.FlushTo(logger)
}
