// Package cli implements the imgconv command-line interface.
//
// The CLI is built using cobra and logs through charmbracelet/log.  The same
// logger backs the converter's structured logging via log/slog, so pipeline
// events and command output share one format.
//
// # Commands
//
//   - convert: convert one image file and save it as <base>.<format>
//   - preview: write an HTML page showing the file unconverted
//   - serve: run the HTML form host
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.  Without it
// the level comes from the config file's log_level.
package cli

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Skryldev/image-converter/core"
	"github.com/Skryldev/image-converter/hooks"
)

// newLogger creates a new logger with timestamp formatting.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// coreLogger adapts l to core.Logger through slog.
func coreLogger(l *log.Logger) core.Logger {
	return hooks.NewSlogLogger(slog.New(l))
}

// parseLevel maps a config log_level to a charm level, defaulting to info.
func parseLevel(s string) log.Level {
	level, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// progress logs completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Converted photo.png (12ms)".
func (p *progress) done(msg string, keyvals ...interface{}) {
	p.logger.Info(msg+" ("+time.Since(p.start).Round(time.Millisecond).String()+")", keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the command logger, or log.Default() when none
// is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
