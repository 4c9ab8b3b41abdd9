package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"
)

// newLogger creates a charm logger with timestamp formatting that also
// serves as the slog handler of the daemon subsystems.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// parseLevel maps a config log_level to a charm level. verbose forces debug.
func parseLevel(name string, verbose bool) log.Level {
	if verbose {
		return log.DebugLevel
	}
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

func slogger(l *log.Logger, component string) *slog.Logger {
	return slog.New(l).With("component", component)
}
