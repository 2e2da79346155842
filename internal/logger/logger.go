// Package logger wraps zerolog with a process-wide logger and a run-scoped
// logger carried in the context.
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey string

const (
	RunIDKey  ctxKey = "run_id"
	LoggerKey ctxKey = "logger"
)

var globalLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Init configures the global logger. Output goes to stderr because stdout
// carries the rendered report.
func Init(level string, jsonFormat bool) {
	InitWithWriter(os.Stderr, level, jsonFormat)
}

// InitWithWriter is Init with an explicit destination.
func InitWithWriter(out io.Writer, level string, jsonFormat bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	output := out
	if !jsonFormat {
		output = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	globalLogger = zerolog.New(output).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "epicgantt").
		Logger()
}

// Global returns the global logger.
func Global() *zerolog.Logger {
	return &globalLogger
}

// Get returns the logger stored in ctx, or the global one.
func Get(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return &globalLogger
	}
	if l, ok := ctx.Value(LoggerKey).(*zerolog.Logger); ok {
		return l
	}
	return &globalLogger
}

// WithRunID attaches a run id to the context and its logger.
func WithRunID(ctx context.Context, runID string) context.Context {
	l := Get(ctx).With().Str("run_id", runID).Logger()
	ctx = context.WithValue(ctx, RunIDKey, runID)
	ctx = context.WithValue(ctx, LoggerKey, &l)
	return ctx
}

// WithProject adds the tracker project id to the context logger.
func WithProject(ctx context.Context, projectID int64) context.Context {
	l := Get(ctx).With().Int64("project_id", projectID).Logger()
	return context.WithValue(ctx, LoggerKey, &l)
}

// GetRunID extracts the run id from the context.
func GetRunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(RunIDKey).(string); ok {
		return id
	}
	return ""
}
