// Package logging builds the structured loggers used by mdcode.
package logging

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Field names for structured logging.
const (
	FieldError  = "error"
	FieldSource = "source"
	FieldBlocks = "blocks"
	FieldInline = "inline"
	FieldEngine = "engine"
	FieldLang   = "lang"
	FieldIndex  = "index"
	FieldRegion = "region"
	FieldConfig = "config"
	FieldDir    = "dir"
	FieldExit   = "exit_code"
)

// New creates a logger writing to w at the given level.
// Valid levels: "debug", "info", "warn", "error". Anything else means info.
func New(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
		Prefix:          "mdcode",
	})

	logger.SetLevel(ParseLevel(level))

	return logger
}

// ParseLevel maps a level name to a log level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

type contextKey struct{}

// WithLogger returns a context carrying logger.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger stored in ctx, or the charmbracelet default.
func FromContext(ctx context.Context) *log.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(contextKey{}).(*log.Logger); ok && logger != nil {
			return logger
		}
	}

	return log.Default()
}
