package log

//go:generate go tool stringer --linecomment --type Level,Format --output config_string.go

import (
	"io"
	"iter"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level slog.Level

const levelTraceMask = -8

const (
	LevelTrace Level = Level(levelTraceMask)  // trace
	LevelDebug Level = Level(slog.LevelDebug) // debug
	LevelInfo  Level = Level(slog.LevelInfo)  // info
	LevelWarn  Level = Level(slog.LevelWarn)  // warn
	LevelError Level = Level(slog.LevelError) // error
)

// DefaultLevel is the default log level.
const DefaultLevel = LevelInfo

// Levels returns an iterator over the names of all defined log levels.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, level := range []Level{
			LevelTrace,
			LevelDebug,
			LevelInfo,
			LevelWarn,
			LevelError,
		} {
			if !yield(level.String()) {
				return
			}
		}
	}
}

// ParseLevel parses a string representation of a log level.
// Valid level strings are "trace", "debug", "info", "warn", and "error"
// (case-insensitive), optionally followed by a "+" or "-" and an integer
// offset. Unrecognized strings yield [DefaultLevel].
func ParseLevel(s string) Level {
	// slog.Level.UnmarshalText does not know about trace.
	if strings.EqualFold(strings.TrimSpace(s), "trace") {
		return LevelTrace
	}

	var l slog.Level

	err := l.UnmarshalText([]byte(strings.TrimSpace(s)))
	if err != nil {
		return DefaultLevel
	}

	return Level(l)
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (l *Level) UnmarshalText(text []byte) error {
	*l = ParseLevel(string(text))

	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Format represents the output format for log messages.
type Format int

const (
	FormatText Format = iota // text
	FormatJSON               // json
)

// DefaultFormat is the default log message format.
const DefaultFormat = FormatText

// Formats returns an iterator over the names of all defined log formats.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, format := range []Format{
			FormatText,
			FormatJSON,
		} {
			if !yield(format.String()) {
				return
			}
		}
	}
}

// ParseFormat parses a string representation of a log format.
// Valid format strings are "json" and "text".
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return DefaultFormat
	}
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (f *Format) UnmarshalText(text []byte) error {
	*f = ParseFormat(string(text))

	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// FormatTime defines a function that formats a time.Time value as a string.
type FormatTime func(time.Time) string

// DefaultTimeLayout is the default used when no valid time layout is provided.
const DefaultTimeLayout = time.RFC3339

// DefaultCaller is the default setting for including caller information
// in log output.
const DefaultCaller = false

// DefaultPretty is the default setting for pretty printing log output.
const DefaultPretty = true

// config holds the configuration options for a Logger.
type config struct {
	mutex      *sync.RWMutex
	output     io.Writer
	formatTime FormatTime
	level      Level
	format     Format
	caller     bool
	pretty     bool
}

// makeConfig creates a new config with defaults applied, overridden by any
// provided options.
func makeConfig(w io.Writer, opts ...Option) config {
	return apply(config{mutex: &sync.RWMutex{}}, append([]Option{WithDefaults(w)}, opts...)...)
}

// clone creates a copy of the config with a separate mutex and applies any
// provided options.
// The copy is not shared yet, so the options need no locking.
func (c config) clone(opts ...Option) config {
	c.mutex = &sync.RWMutex{}

	return apply(c, opts...)
}

// handlerOptions returns the slog options shared by every handler kind.
func (c config) handlerOptions() *slog.HandlerOptions {
	return &slog.HandlerOptions{
		AddSource: c.caller,
		Level:     slog.Level(c.level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				if t, ok := a.Value.Any().(time.Time); ok {
					formatted := c.formatTime(t)
					if formatted == "" {
						return slog.Attr{}
					}

					a.Value = slog.StringValue(formatted)
				}

			case slog.LevelKey:
				// Show "TRACE" instead of "DEBUG-4".
				if level, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(strings.ToUpper(Level(level).String()))
				}
			}

			return a
		},
	}
}

// handler creates a slog.Handler based on the current configuration.
func (c config) handler() slog.Handler {
	opts := c.handlerOptions()

	switch {
	case c.pretty && c.format == FormatJSON:
		return newPrettyJSONHandler(c.output, opts)

	case c.pretty && c.format == FormatText:
		return newPrettyTextHandler(c.output, opts)

	case c.format == FormatJSON:
		return slog.NewJSONHandler(c.output, opts)

	case c.format == FormatText:
		return slog.NewTextHandler(c.output, opts)

	default:
		return slog.DiscardHandler
	}
}

// WithDefaults returns a functional option that resets every setting to its
// default and writes to w.
// A nil writer is replaced with [io.Discard].
func WithDefaults(w io.Writer) Option {
	return func(c config) config {
		c = WithOutput(w)(c)
		c.formatTime = makeFormatTimeFunc(DefaultTimeLayout)
		c.level = DefaultLevel
		c.format = DefaultFormat
		c.caller = DefaultCaller
		c.pretty = DefaultPretty

		return c
	}
}

// WithOutput returns a functional option that sets the output [io.Writer]
// for log messages.
// If a nil writer is provided, [io.Discard] is used instead.
func WithOutput(w io.Writer) Option {
	return func(c config) config {
		if w == nil {
			w = io.Discard
		}

		c.output = w

		return c
	}
}

// WithLevel returns a functional option that sets the minimum log level.
// Messages below this level are discarded.
func WithLevel(level Level) Option {
	return func(c config) config {
		c.level = level

		return c
	}
}

// WithFormat returns a functional option that sets the output format
// for log messages.
func WithFormat(format Format) Option {
	return func(c config) config {
		c.format = format

		return c
	}
}

// WithTimeLayout returns a functional option that sets the layout used to
// format log timestamps.
//
// The layout string can be one of the named layouts from the [time] package
// (for example, "RFC3339" or "Kitchen") or one of the short aliases "ms",
// "us", and "ns". Otherwise, it is passed verbatim to [time.Time.Format].
//
// An empty layout or "none" disables timestamps.
func WithTimeLayout(layout string) Option {
	return func(c config) config {
		c.formatTime = makeFormatTimeFunc(layout)

		return c
	}
}

// WithCaller returns a functional option that controls whether caller
// information is included in log output.
func WithCaller(enable bool) Option {
	return func(c config) config {
		c.caller = enable

		return c
	}
}

// WithPretty returns a functional option that controls whether log output
// uses colorized pretty printing.
func WithPretty(enable bool) Option {
	return func(c config) config {
		c.pretty = enable

		return c
	}
}

// timeLayout maps normalized layout names to their time package constants.
var timeLayout = map[string]string{
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rubydate":    time.RubyDate,
	"rfc822":      time.RFC822,
	"rfc822z":     time.RFC822Z,
	"rfc850":      time.RFC850,
	"kitchen":     time.Kitchen,
	"datetime":    time.DateTime,
	"timeonly":    time.TimeOnly,

	"stamp": time.Stamp,
	"none":  "",

	"stampmilli": time.StampMilli,
	"ms":         time.StampMilli,

	"stampmicro": time.StampMicro,
	"us":         time.StampMicro,

	"stampnano": time.StampNano,
	"ns":         time.StampNano,
}

func makeFormatTimeFunc(layout string) FormatTime {
	// Normalize only for lookup; custom layouts are used verbatim.
	key := strings.Map(
		func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				return r
			}

			return -1
		},
		strings.ToLower(layout),
	)

	if std, ok := timeLayout[key]; ok {
		layout = std
	}

	if strings.TrimSpace(layout) == "" {
		return func(time.Time) string { return "" }
	}

	return func(t time.Time) string { return t.Format(layout) }
}
