package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
//
// Every error returned by this package matches exactly one of these with
// [errors.Is]; derived errors carry extra context as slog attributes.
var (
	ErrSyntax            = NewError("syntax error")
	ErrEmptyExpression   = NewError("empty expression")
	ErrMalformedTokens   = NewError("malformed token stream")
	ErrInvalidParameter  = NewError("invalid parameter")
	ErrUndefinedVariable = NewError("undefined variable")
	ErrUnboundField      = NewError("unbound field")
	ErrNotIterable       = NewError("not iterable")
	ErrType              = NewError("type error")
	ErrDivisionByZero    = NewError("division by zero")
	ErrTooLarge          = NewError("result too large")
	ErrIndexOutOfRange   = NewError("index out of range")
	ErrUnknownTemplate   = NewError("unknown template")
	ErrUnknownFunction   = NewError("unknown function")
	ErrMaxDepthExceeded  = NewError("maximum render depth exceeded")
	ErrReadInput         = NewError("failed to read input")
)

// Position is a location in source text. Line and Column are 1-based;
// Offset is a 0-based byte offset.
type Position struct {
	Offset int
	Line   int
	Column int
}

// IsZero reports whether p is unset.
func (p Position) IsZero() bool { return p.Line == 0 }

func (p Position) String() string {
	return "line " + strconv.Itoa(p.Line) + ", column " + strconv.Itoa(p.Column)
}

// Error represents an error with optional structured logging attributes and
// an optional source location.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg    string
	err    error       // Wrapped error (for errors.Unwrap)
	attrs  []slog.Attr // Attributes for structured logging
	root   *Error      // Sentinel this error derives from (for errors.Is)
	pos    Position
	source string // Source text used to render a caret snippet
}

// NewError creates a new sentinel Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.root = e

	return e
}

// WrapError wraps a standard error into an Error.
// If err already is (or wraps) an *Error, that Error is returned.
func WrapError(err error) *Error {
	if err == nil {
		return nil
	}

	var ee *Error
	if errors.As(err, &ee) {
		return ee
	}

	e := &Error{err: err}
	e.root = e

	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg> at <pos>: <err>"
	//   2. "<msg>: <err>"
	//   3. "<msg>"
	//   4. "<err>"
	var sb strings.Builder

	sb.WriteString(e.msg)

	if !e.pos.IsZero() {
		if sb.Len() > 0 {
			sb.WriteString(" at ")
		}

		sb.WriteString(e.pos.String())
	}

	if e.err != nil {
		if sb.Len() > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(e.err.Error())
	}

	if snippet := e.Snippet(); snippet != "" {
		sb.WriteString("\n")
		sb.WriteString(snippet)
	}

	return sb.String()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e derives from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && e.root != nil && e.root == t.root
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	if !e.pos.IsZero() {
		attrs = append(attrs,
			slog.Int("line", e.pos.Line),
			slog.Int("column", e.pos.Column),
		)
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// clone returns a shallow copy of e with its own attribute slice.
func (e *Error) clone() *Error {
	c := *e
	c.attrs = append([]slog.Attr(nil), e.attrs...)

	return &c
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.err = err

	return c
}

// Wrapf creates a new Error wrapping a formatted message.
func (e *Error) Wrapf(format string, args ...any) *Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.clone()
	c.attrs = append(c.attrs, attrs...)

	return c
}

// WithPosition returns a copy of e located at pos.
// A position already set is kept, so the innermost location wins.
func (e *Error) WithPosition(pos Position) *Error {
	if !e.pos.IsZero() {
		return e
	}

	c := e.clone()
	c.pos = pos

	return c
}

// WithSource returns a copy of e that renders a caret snippet of src.
func (e *Error) WithSource(src string) *Error {
	c := e.clone()
	c.source = src

	return c
}

// Position returns the source location of e, if known.
func (e *Error) Position() (Position, bool) {
	return e.pos, !e.pos.IsZero()
}

// Attr returns the value of the attribute with the given key.
func (e *Error) Attr(key string) (slog.Value, bool) {
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}

	return slog.Value{}, false
}

// Snippet formats the offending source line with a caret under the error
// column. It returns "" when either the source or the position is unknown.
func (e *Error) Snippet() string {
	if e.source == "" || e.pos.IsZero() {
		return ""
	}

	lines := strings.Split(e.source, "\n")
	if e.pos.Line > len(lines) {
		return ""
	}

	num := strconv.Itoa(e.pos.Line)

	var sb strings.Builder

	sb.WriteString("  ")
	sb.WriteString(num)
	sb.WriteString(" | ")
	sb.WriteString(lines[e.pos.Line-1])
	sb.WriteString("\n")

	// 2 leading spaces + " | " (3 chars)
	sb.WriteString(strings.Repeat(" ", len(num)+5+max(e.pos.Column-1, 0)))
	sb.WriteString("^")

	return sb.String()
}

// errorAt annotates err with pos if it is an *Error without a position.
func errorAt(err error, pos Position) error {
	var ee *Error
	if pos.IsZero() || !errors.As(err, &ee) {
		return err
	}

	if _, ok := ee.Position(); ok {
		return err
	}

	return ee.WithPosition(pos)
}
