// Package cli implements the skyline command-line interface.
//
// # Commands
//
//   - serve: run the engine and the HTTP server
//   - watch: run the engine in the terminal
//   - collect: take one snapshot and print it as JSON or TOML
//   - render: draw one frame of a snapshot to SVG, JSON, PNG, PDF or DOT
//   - history: list recent snapshot summaries
//   - config: show or create the config file
//   - cache: manage the frame cache
//
// All commands support --verbose (-v) for debug logging and --config (-c)
// to pick a config file.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Collected 42 entities (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
