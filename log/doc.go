// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// The package offers configurable time formatting, caller information,
// colorized output, and output formats that are applied at logger creation
// time using functional options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("template registered", slog.String("name", "Card"))
//	logger.Error("render failed", slog.Any("error", err))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
// [Level] and [Format] implement [encoding.TextUnmarshaler], so command-line
// parsers can decode them directly.
//
// # Default Logger
//
// Package-level functions such as [Info] and [DebugContext] log through a
// process-wide default logger that writes to [os.Stderr]. Use [Config] to
// reconfigure it and [Default] to pass it to components that accept a
// [Logger].
//
// Context-unaware functions call their context-aware counterparts with
// [DefaultContextProvider], which returns [context.TODO] by default.
//
// # Levels
//
// Five levels are supported: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Trace is used by the template engine for
// per-render diagnostics such as compile cache hits.
//
// The zero [Logger] discards everything, so components can hold one
// unconditionally.
package log
