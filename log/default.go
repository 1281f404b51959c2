package log

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// DefaultContextProvider returns the context used by context-unaware
// logging functions and methods.
//
//nolint:gochecknoglobals
var DefaultContextProvider = context.TODO

//nolint:gochecknoglobals
var (
	defaultMu  sync.RWMutex
	defaultLog = Make(os.Stderr)
)

// Config reconfigures the default logger with the given options.
func Config(opts ...Option) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultLog = defaultLog.Wrap(opts...)
}

// Default returns the current default logger.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()

	return defaultLog
}

// With returns a new [Logger] derived from the default logger that includes
// the given attributes in each log message.
func With(attrs ...slog.Attr) Logger {
	return Default().With(attrs...)
}

// TraceContext logs a message at Trace level using the default logger.
func TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logAt(ctx, callerSkip, LevelTrace, msg, attrs...)
}

// Trace logs a message at Trace level using the default logger.
func Trace(msg string, attrs ...slog.Attr) {
	Default().logAt(DefaultContextProvider(), callerSkip, LevelTrace, msg, attrs...)
}

// DebugContext logs a message at Debug level using the default logger.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logAt(ctx, callerSkip, LevelDebug, msg, attrs...)
}

// Debug logs a message at Debug level using the default logger.
func Debug(msg string, attrs ...slog.Attr) {
	Default().logAt(DefaultContextProvider(), callerSkip, LevelDebug, msg, attrs...)
}

// InfoContext logs a message at Info level using the default logger.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logAt(ctx, callerSkip, LevelInfo, msg, attrs...)
}

// Info logs a message at Info level using the default logger.
func Info(msg string, attrs ...slog.Attr) {
	Default().logAt(DefaultContextProvider(), callerSkip, LevelInfo, msg, attrs...)
}

// WarnContext logs a message at Warn level using the default logger.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logAt(ctx, callerSkip, LevelWarn, msg, attrs...)
}

// Warn logs a message at Warn level using the default logger.
func Warn(msg string, attrs ...slog.Attr) {
	Default().logAt(DefaultContextProvider(), callerSkip, LevelWarn, msg, attrs...)
}

// ErrorContext logs a message at Error level using the default logger.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logAt(ctx, callerSkip, LevelError, msg, attrs...)
}

// Error logs a message at Error level using the default logger.
func Error(msg string, attrs ...slog.Attr) {
	Default().logAt(DefaultContextProvider(), callerSkip, LevelError, msg, attrs...)
}
