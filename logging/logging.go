// Package logging configures the process-wide zerolog logger. The rest of
// this module calls the package-level github.com/rs/zerolog/log logger
// directly, the way the teacher's solver and turn-player packages do,
// rather than threading a logger value through every constructor.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level mirrors the small set of severities an embedder can select:
// spec.md's three-severity log sink (info/warning/error) plus zerolog's
// debug level for the throughput and search-progress chatter this module
// emits internally.
type Level = zerolog.Level

const (
	LevelDebug = zerolog.DebugLevel
	LevelInfo  = zerolog.InfoLevel
	LevelWarn  = zerolog.WarnLevel
	LevelError = zerolog.ErrorLevel
)

// Configure installs lvl as the global zerolog level and writes through w.
// Pretty selects zerolog's human-readable ConsoleWriter over newline-
// delimited JSON; an embedder running under a log collector should pass
// false. Configure is safe to call more than once, e.g. once at process
// start and again if an operator changes the level at runtime.
func Configure(lvl Level, w io.Writer, pretty bool) {
	if w == nil {
		w = os.Stderr
	}
	zerolog.SetGlobalLevel(lvl)
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}
