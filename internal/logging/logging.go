// Package logging builds the operator logger shared by the CLI commands.
package logging

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Level names accepted by ParseLevel.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Config holds logger configuration.
type Config struct {
	Out     io.Writer
	Level   string // debug, info, warn, error (empty = info)
	NoColor bool
}

// ParseLevel maps a level name to a zerolog level. Unknown names are info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(name) {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// LevelFor returns the level name selected by the quiet and verbose flags.
// Quiet wins when both are set.
func LevelFor(quiet, verbose bool) string {
	switch {
	case quiet:
		return LevelError
	case verbose:
		return LevelDebug
	default:
		return LevelInfo
	}
}

// New creates a console logger writing to cfg.Out.
// The level is set on the logger, not globally, so tests can run loggers
// side by side.
func New(cfg Config) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:        cfg.Out,
		NoColor:    cfg.NoColor,
		TimeFormat: "15:04:05",
	}
	return zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
