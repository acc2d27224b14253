// Package logging builds the zerolog logger shared by every ffclip component.
//
// Console output is meant for humans (short timestamps), JSON output for log
// shippers. Components receive the logger by injection and derive their own
// with a "component" field.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"ffclip/config"
)

const consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// New returns a logger configured from cfg, writing to stdout.
func New(cfg *config.Config) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter is New with an explicit sink.
func NewWithWriter(cfg *config.Config, out io.Writer) zerolog.Logger {
	zerolog.ErrorFieldName = "err"

	w := out
	if !strings.EqualFold(strings.TrimSpace(cfg.LogFormat), "json") {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: consoleTimeFormat}
	}
	return zerolog.New(w).
		Level(ParseLevel(cfg.LogLevel, zerolog.InfoLevel)).
		With().Timestamp().Logger()
}

// ParseLevel maps a config string to a zerolog level, falling back to def.
func ParseLevel(s string, def zerolog.Level) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled", "none":
		return zerolog.Disabled
	default:
		return def
	}
}
