// Package logging builds the logrus logger shared by the scanner.
package logging

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// New returns a logger writing to w (stderr when nil) at the given level
// ("debug", "info", "warn", "error") and format ("json" or "text").
func New(level, format string, w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	l := log.New()
	l.SetOutput(w)
	l.SetLevel(parseLevel(level))
	switch strings.ToLower(format) {
	case "json":
		l.SetFormatter(&log.JSONFormatter{})
	default:
		l.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return l
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}
