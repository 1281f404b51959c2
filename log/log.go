package log

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"
)

// Logger provides a concurrency-safe simplified logging interface.
//
// The zero value is valid and discards all messages.
type Logger struct {
	*slog.Logger
	config
}

// Make creates a new [Logger] that writes to the specified writer.
// The default configuration is [DefaultFormat], [DefaultLevel],
// [DefaultTimeLayout], [DefaultPretty], and caller info disabled.
func Make(w io.Writer, opts ...Option) Logger {
	cfg := makeConfig(w, opts...)

	return Logger{
		config: cfg,
		Logger: slog.New(cfg.handler()),
	}
}

// Wrap returns a new [Logger] using the receiver's configuration as the base,
// overridden by opts.
// Attributes added with [Logger.With] are not carried over.
func (l Logger) Wrap(opts ...Option) Logger {
	if l.mutex == nil {
		return Make(nil, opts...)
	}

	l.mutex.RLock()
	cfg := l.clone(opts...)
	l.mutex.RUnlock()

	return Logger{
		config: cfg,
		Logger: slog.New(cfg.handler()),
	}
}

// With returns a new [Logger] that includes the given attributes in each log
// message.
func (l Logger) With(attrs ...slog.Attr) Logger {
	if l.Logger == nil {
		return l
	}

	l.mutex.RLock()
	cfg := l.clone()
	l.mutex.RUnlock()

	return Logger{
		config: cfg,
		Logger: slog.New(l.Handler().WithAttrs(attrs)),
	}
}

// Level returns the current minimum log level.
func (l Logger) Level() Level {
	if l.Logger == nil {
		return DefaultLevel
	}

	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.level
}

// Format returns the current log output format.
func (l Logger) Format() Format {
	if l.Logger == nil {
		return DefaultFormat
	}

	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.format
}

// TraceContext logs a message at Trace level with the provided context.
func (l Logger) TraceContext(
	ctx context.Context,
	msg string,
	attrs ...slog.Attr,
) {
	l.logContext(ctx, LevelTrace, msg, attrs...)
}

// Trace logs a message at Trace level.
func (l Logger) Trace(msg string, attrs ...slog.Attr) {
	l.logContext(DefaultContextProvider(), LevelTrace, msg, attrs...)
}

// DebugContext logs a message at Debug level with the provided context.
func (l Logger) DebugContext(
	ctx context.Context,
	msg string,
	attrs ...slog.Attr,
) {
	l.logContext(ctx, LevelDebug, msg, attrs...)
}

// Debug logs a message at Debug level.
func (l Logger) Debug(msg string, attrs ...slog.Attr) {
	l.logContext(DefaultContextProvider(), LevelDebug, msg, attrs...)
}

// InfoContext logs a message at Info level with the provided context.
func (l Logger) InfoContext(
	ctx context.Context,
	msg string,
	attrs ...slog.Attr,
) {
	l.logContext(ctx, LevelInfo, msg, attrs...)
}

// Info logs a message at Info level.
func (l Logger) Info(msg string, attrs ...slog.Attr) {
	l.logContext(DefaultContextProvider(), LevelInfo, msg, attrs...)
}

// WarnContext logs a message at Warn level with the provided context.
func (l Logger) WarnContext(
	ctx context.Context,
	msg string,
	attrs ...slog.Attr,
) {
	l.logContext(ctx, LevelWarn, msg, attrs...)
}

// Warn logs a message at Warn level.
func (l Logger) Warn(msg string, attrs ...slog.Attr) {
	l.logContext(DefaultContextProvider(), LevelWarn, msg, attrs...)
}

// ErrorContext logs a message at Error level with the provided context.
func (l Logger) ErrorContext(
	ctx context.Context,
	msg string,
	attrs ...slog.Attr,
) {
	l.logContext(ctx, LevelError, msg, attrs...)
}

// Error logs a message at Error level.
func (l Logger) Error(msg string, attrs ...slog.Attr) {
	l.logContext(DefaultContextProvider(), LevelError, msg, attrs...)
}

// callerSkip is the number of frames to skip to reach the code that called an
// exported logging function: runtime.Callers, logAt, and the exported
// function itself.
const callerSkip = 3

// logContext writes a log message at the specified level.
// It adds one frame on top of logAt for the Logger methods.
func (l Logger) logContext(
	ctx context.Context,
	level Level,
	msg string,
	attrs ...slog.Attr,
) {
	l.logAt(ctx, callerSkip+1, level, msg, attrs...)
}

func (l Logger) logAt(
	ctx context.Context,
	skip int,
	level Level,
	msg string,
	attrs ...slog.Attr,
) {
	// Silently return for zero value loggers
	if l.Logger == nil {
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if !l.Enabled(ctx, slog.Level(level)) {
		return
	}

	// slog.Logger does not expose PC control, so build the Record here with
	// the PC of the real caller.
	var pcs [1]uintptr
	runtime.Callers(skip, pcs[:])

	r := slog.NewRecord(time.Now(), slog.Level(level), msg, pcs[0])
	r.AddAttrs(attrs...)
	_ = l.Handler().Handle(ctx, r)
}
