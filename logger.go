package kdtree

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with kdtree-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimensions", dim),
	}
}

// WithCapacity adds a leaf capacity field to the logger.
func (l *Logger) WithCapacity(capacity int) *Logger {
	return &Logger{
		Logger: l.Logger.With("capacity", capacity),
	}
}

func (l *Logger) debugEnabled() bool {
	return l.Enabled(context.Background(), slog.LevelDebug)
}

// LogSplit logs a leaf turning into a stem.
func (l *Logger) LogSplit(dimension int, value float64, size int) {
	if !l.debugEnabled() {
		return
	}
	l.Debug("leaf split",
		"split_dimension", dimension,
		"split_value", value,
		"size", size,
	)
}

// LogDegenerateSplit logs a split that was abandoned because every point in
// the leaf shares the same coordinate.
func (l *Logger) LogDegenerateSplit(size, capacity int) {
	if !l.debugEnabled() {
		return
	}
	l.Debug("split skipped, all points coincide",
		"size", size,
		"capacity", capacity,
	)
}

// LogSnapshot logs a snapshot save or load.
func (l *Logger) LogSnapshot(ctx context.Context, op string, size int, codecName string, compression string) {
	l.InfoContext(ctx, "snapshot "+op,
		"size", size,
		"codec", codecName,
		"compression", compression,
	)
}

// LogBatch logs a completed batch query.
func (l *Logger) LogBatch(ctx context.Context, op string, queries, concurrency int) {
	l.DebugContext(ctx, "batch query completed",
		"op", op,
		"queries", queries,
		"concurrency", concurrency,
	)
}
