package logging

import (
	"runtime"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StartupLogger collects a tool's inputs, outputs and effective configuration,
// then emits a single structured zerolog event describing the run before any
// work starts.
type StartupLogger struct {
	name    string
	inputs  map[string]string
	outputs map[string]string
	config  map[string]string
}

// NewStartupLogger creates a StartupLogger for the named tool
// (e.g. "lsm-rotations", "stats-to-xlsx").
func NewStartupLogger(name string) *StartupLogger {
	return &StartupLogger{
		name:    name,
		inputs:  make(map[string]string),
		outputs: make(map[string]string),
		config:  make(map[string]string),
	}
}

// Input registers an input file or directory.
func (s *StartupLogger) Input(label, path string) *StartupLogger {
	s.inputs[label] = path
	return s
}

// Output registers an output file.
func (s *StartupLogger) Output(label, path string) *StartupLogger {
	s.outputs[label] = path
	return s
}

// Config registers a non-sensitive configuration key-value pair.
func (s *StartupLogger) Config(key, value string) *StartupLogger {
	s.config[key] = value
	return s
}

// Log emits a single structured INFO log event with all collected information.
func (s *StartupLogger) Log() {
	s.event(log.Info()).Msg("Tool started")
}

func (s *StartupLogger) event(evt *zerolog.Event) *zerolog.Event {
	evt = evt.Dict("tool", zerolog.Dict().
		Str("name", s.name).
		Str("goVersion", runtime.Version()).
		Str("arch", runtime.GOARCH))

	if len(s.inputs) > 0 {
		evt = evt.Dict("inputs", dictFromMap(s.inputs))
	}
	if len(s.outputs) > 0 {
		evt = evt.Dict("outputs", dictFromMap(s.outputs))
	}
	if len(s.config) > 0 {
		evt = evt.Dict("config", dictFromMap(s.config))
	}
	return evt
}

// dictFromMap converts a map[string]string into a zerolog Dict with keys in
// sorted order.
func dictFromMap(m map[string]string) *zerolog.Event {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d := zerolog.Dict()
	for _, k := range keys {
		d = d.Str(k, m[k])
	}
	return d
}
