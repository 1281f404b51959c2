package pkg

// Sentinel errors shared by the CLI layers.
// These errors can be tested using errors.Is for reliable error checking.

import (
	"fmt"
	"slices"
	"strings"
)

// Error represents a chain of errors.
type Error []error

// ErrReadInput is returned when reading a template, manifest, or expression
// source fails.
//
// This error should be wrapped with the underlying I/O error
// to preserve the error chain.
var ErrReadInput = MakeErrorf("failed to read input")

// ErrReadStdin is returned when reading from standard input fails.
var ErrReadStdin = MakeErrorf("failed to read stdin")

// ErrParam is returned when a command-line parameter is not of the form
// key=value or its value is not valid YAML.
var ErrParam = MakeErrorf("invalid parameter")

// ErrYAMLMarshal is returned when YAML marshaling fails.
//
// This error should be wrapped with the underlying marshaling error
// to preserve the error chain.
var ErrYAMLMarshal = MakeErrorf("YAML marshal error")

// ErrInvalidFormat is returned when an invalid output format is specified.
//
// This error should be wrapped with additional context that specifies the
// invalid format along with a list of valid formats.
var ErrInvalidFormat = MakeErrorf("invalid format")

// MakeError constructs an Error from the given errors.
// The errors are stored in the order they are provided, so a sentinel
// passed first prefixes every message derived from it.
// Nil is returned if no errors are provided.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, UnwrapErrors(err)...)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted error message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error returns a concatenated string representation of all errors
// in the error chain, separated by ": ", in chain order.
func (e Error) Error() string {
	var sb strings.Builder

	for i, err := range slices.All(e) {
		if i > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(err.Error())
	}

	return sb.String()
}

// Wrap appends one or more errors to the receiver and returns the result.
// The receiver is never modified.
func (e Error) Wrap(err ...error) Error {
	return append(slices.Clip(e), err...)
}

// Wrapf appends a formatted error to the receiver and returns the result.
func (e Error) Wrapf(format string, args ...any) Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// Unwrap returns the slice of errors contained in the receiver.
func (e Error) Unwrap() []error {
	return e
}

// Is reports whether target is an Error whose chain is a prefix of e.
// This lets a sentinel created with [MakeErrorf] match any chain derived
// from it with [Error.Wrap].
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok || len(t) == 0 || len(t) > len(e) {
		return false
	}

	for i := range t {
		if e[i] != t[i] {
			return false
		}
	}

	return true
}

// UnwrapErrors recursively unwraps an error chain and returns a slice
// containing all errors in the chain, starting from the innermost error.
func UnwrapErrors(err error) Error {
	if err == nil {
		return nil
	}

	chain := Error{}

	if e, ok := err.(interface{ Unwrap() []error }); ok {
		for _, wrapped := range e.Unwrap() {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}

		return chain
	} else if e, ok := err.(interface{ Unwrap() error }); ok {
		chain = append(chain, UnwrapErrors(e.Unwrap())...)
	}

	return append(chain, err)
}
