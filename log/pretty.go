package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ANSI color codes for pretty printing.
const (
	colorReset   = "\033[0m"
	colorGray    = "\033[90m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// prettyState is shared by both pretty handlers. It keeps the attributes and
// groups accumulated through WithAttrs and WithGroup.
type prettyState struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	groups []string
}

func newPrettyState(w io.Writer, opts *slog.HandlerOptions) prettyState {
	return prettyState{opts: *opts, mu: &sync.Mutex{}, w: w}
}

func (s prettyState) enabled(level slog.Level) bool {
	threshold := slog.LevelInfo
	if s.opts.Level != nil {
		threshold = s.opts.Level.Level()
	}

	return level >= threshold
}

func (s prettyState) withAttrs(attrs []slog.Attr) prettyState {
	prefix := strings.Join(s.groups, ".")

	out := make([]slog.Attr, len(s.attrs), len(s.attrs)+len(attrs))
	copy(out, s.attrs)

	for _, a := range attrs {
		if prefix != "" {
			a.Key = prefix + "." + a.Key
		}

		out = append(out, a)
	}

	s.attrs = out

	return s
}

func (s prettyState) withGroup(name string) prettyState {
	if name == "" {
		return s
	}

	s.groups = append(s.groups[:len(s.groups):len(s.groups)], name)

	return s
}

// header returns the built-in record fields after ReplaceAttr, in output
// order. Fields removed by ReplaceAttr (such as a disabled timestamp) are
// omitted.
func (s prettyState) header(r slog.Record) []slog.Attr {
	fields := make([]slog.Attr, 0, 4)

	if !r.Time.IsZero() {
		fields = append(fields, slog.Time(slog.TimeKey, r.Time))
	}

	fields = append(fields, slog.Any(slog.LevelKey, r.Level))

	if s.opts.AddSource {
		if src := r.Source(); src != nil {
			fields = append(fields,
				slog.String(slog.SourceKey, src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	fields = append(fields, slog.String(slog.MessageKey, r.Message))

	if s.opts.ReplaceAttr == nil {
		return fields
	}

	out := fields[:0]

	for _, a := range fields {
		// Keep the level as slog.Level so it can be colored by severity.
		if a.Key == slog.LevelKey {
			out = append(out, a)

			continue
		}

		if a = s.opts.ReplaceAttr(nil, a); a.Key != "" {
			out = append(out, a)
		}
	}

	return out
}

// body returns the handler attributes followed by the record attributes,
// with group prefixes applied.
func (s prettyState) body(r slog.Record) []slog.Attr {
	prefix := strings.Join(s.groups, ".")

	out := make([]slog.Attr, len(s.attrs), len(s.attrs)+r.NumAttrs())
	copy(out, s.attrs)

	r.Attrs(func(a slog.Attr) bool {
		if prefix != "" {
			a.Key = prefix + "." + a.Key
		}

		out = append(out, a)

		return true
	})

	return out
}

func (s prettyState) write(buf *bytes.Buffer) error {
	buf.WriteByte('\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.w.Write(buf.Bytes())

	return err
}

// levelColor returns the color used for a level name.
func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	case level >= slog.LevelInfo:
		return colorGreen
	default:
		return colorBlue
	}
}

// writeColored writes s wrapped in the given color.
func writeColored(buf *bytes.Buffer, color, s string) {
	buf.WriteString(color)
	buf.WriteString(s)
	buf.WriteString(colorReset)
}

// prettyTextHandler implements a colorized key=value text handler.
type prettyTextHandler struct{ prettyState }

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyTextHandler {
	return &prettyTextHandler{newPrettyState(w, opts)}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	for _, a := range h.header(r) {
		h.writeAttr(buf, a)
	}

	for _, a := range h.body(r) {
		h.writeAttr(buf, a)
	}

	return h.write(buf)
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyTextHandler{h.withAttrs(attrs)}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	return &prettyTextHandler{h.withGroup(name)}
}

func (h *prettyTextHandler) writeAttr(buf *bytes.Buffer, a slog.Attr) {
	a.Value = a.Value.Resolve()

	// Flatten groups into dotted keys.
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			if a.Key != "" {
				ga.Key = a.Key + "." + ga.Key
			}

			h.writeAttr(buf, ga)
		}

		return
	}

	if buf.Len() > 0 {
		buf.WriteByte(' ')
	}

	writeColored(buf, colorGray, a.Key)
	buf.WriteByte('=')
	h.writeValue(buf, a.Value)
}

func (h *prettyTextHandler) writeValue(buf *bytes.Buffer, v slog.Value) {
	switch v.Kind() {
	case slog.KindInt64:
		writeColored(buf, colorYellow, strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		writeColored(buf, colorYellow, strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		writeColored(buf, colorYellow, strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			writeColored(buf, colorGreen, "true")
		} else {
			writeColored(buf, colorRed, "false")
		}

	case slog.KindDuration:
		writeColored(buf, colorMagenta, v.Duration().String())

	case slog.KindTime:
		writeColored(buf, colorBlue, v.Time().Format(time.RFC3339))

	case slog.KindAny:
		if level, ok := v.Any().(slog.Level); ok {
			writeColored(buf, levelColor(level), strings.ToUpper(Level(level).String()))

			return
		}

		writeColored(buf, colorCyan, v.String())

	default:
		// Strings are written without quotes.
		writeColored(buf, colorCyan, v.String())
	}
}

// prettyJSONHandler implements an indented, colorized JSON-like handler.
type prettyJSONHandler struct{ prettyState }

func newPrettyJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyJSONHandler {
	return &prettyJSONHandler{newPrettyState(w, opts)}
}

func (h *prettyJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	buf.WriteString("{")

	first := true

	for _, a := range append(h.header(r), h.body(r)...) {
		h.writeField(buf, a, 1, &first)
	}

	buf.WriteString("\n}")

	return h.write(buf)
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{h.withAttrs(attrs)}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	return &prettyJSONHandler{h.withGroup(name)}
}

func (h *prettyJSONHandler) writeField(
	buf *bytes.Buffer,
	a slog.Attr,
	depth int,
	first *bool,
) {
	if !*first {
		buf.WriteString(",")
	}

	*first = false

	buf.WriteString("\n")
	buf.WriteString(strings.Repeat("  ", depth))
	writeColored(buf, colorGray, a.Key)
	buf.WriteString(": ")

	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		buf.WriteString("{")

		inner := true
		for _, ga := range v.Group() {
			h.writeField(buf, ga, depth+1, &inner)
		}

		buf.WriteString("\n")
		buf.WriteString(strings.Repeat("  ", depth))
		buf.WriteString("}")

		return
	}

	h.writeValue(buf, v.Any())
}

func (h *prettyJSONHandler) writeValue(buf *bytes.Buffer, v any) {
	switch val := v.(type) {
	case string:
		writeColored(buf, colorCyan, val)

	case int64, uint64, float64:
		writeColored(buf, colorYellow, fmt.Sprint(val))

	case bool:
		if val {
			writeColored(buf, colorGreen, "true")
		} else {
			writeColored(buf, colorRed, "false")
		}

	case slog.Level:
		writeColored(buf, levelColor(val), strings.ToUpper(Level(val).String()))

	case time.Time:
		writeColored(buf, colorBlue, val.Format(time.RFC3339))

	case time.Duration:
		writeColored(buf, colorMagenta, val.String())

	case nil:
		writeColored(buf, colorGray, "null")

	default:
		writeColored(buf, colorCyan, fmt.Sprint(val))
	}
}
