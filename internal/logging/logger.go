package logging

import (
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RunID identifies the current process in every log line. It is set by Init.
var RunID string

// Init initializes the global logger. level is one of debug, info, warn,
// error (default: info). Output goes to stderr so stdout stays free for tool
// results.
func Init(level string) {
	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	RunID = uuid.NewString()[:8]
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().
		Str("run", RunID).
		Logger()
}
