package jsondom

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCode is a closed enumeration of the error kinds a jsondom operation can
// surface across the package boundary (spec §7).
type ErrorCode int

const (
	// ErrNone is the zero value; never returned on an actual error.
	ErrNone ErrorCode = iota
	// ErrLexical marks malformed JSON bytes.
	ErrLexical
	// ErrTypeMismatch marks a value where a schema required a different kind.
	ErrTypeMismatch
	// ErrRange marks a min/max/length/multipleOf violation.
	ErrRange
	// ErrMissingRequired marks an object missing a required key.
	ErrMissingRequired
	// ErrDuplicate marks a uniqueItems violation or a duplicate object key.
	ErrDuplicate
	// ErrUnresolved marks a $ref that could not be resolved.
	ErrUnresolved
	// ErrCycleDetected marks an insertion that would have created a cycle.
	ErrCycleDetected
	// ErrConversion marks a lossy or impossible numeric conversion.
	ErrConversion
	// ErrResource marks an allocation or I/O failure.
	ErrResource
	// ErrGeneric is the catch-all.
	ErrGeneric
)

func (c ErrorCode) String() string {
	switch c {
	case ErrLexical:
		return "LexicalError"
	case ErrTypeMismatch:
		return "TypeMismatch"
	case ErrRange:
		return "RangeError"
	case ErrMissingRequired:
		return "MissingRequired"
	case ErrDuplicate:
		return "Duplicate"
	case ErrUnresolved:
		return "Unresolved"
	case ErrCycleDetected:
		return "CycleDetected"
	case ErrConversion:
		return "Conversion"
	case ErrResource:
		return "Resource"
	case ErrGeneric:
		return "Generic"
	default:
		return "None"
	}
}

// Error is the single concrete error type returned across the jsondom API
// boundary: a code, a human message, and (for parse errors) a byte offset and
// a JSON Pointer path. It is the "structured error object" spec §9's Open
// Question prefers over the teacher's original parallel APIs.
type Error struct {
	Code   ErrorCode
	Msg    string
	Offset int64  // -1 if not applicable
	Path   string // JSON Pointer, "" if not applicable
	cause  error
}

func (e *Error) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s: %s (offset %d)", e.Code, e.Msg, e.Offset)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Code, e.Msg, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// Cause exposes the same wrapped error through pkg/errors' Cause protocol.
func (e *Error) Cause() error {
	return e.cause
}

// NewError builds a plain *Error with no offset/path.
func NewError(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Msg: msg, Offset: -1}
}

// Wrap builds an *Error that wraps cause with a stack-carrying pkg/errors
// annotation, so internal diagnostics keep a trace while callers still see a
// flat code+message.
func Wrap(code ErrorCode, cause error, msg string) *Error {
	return &Error{Code: code, Msg: msg, Offset: -1, cause: errors.Wrap(cause, msg)}
}

// WithOffset returns a copy of e with the byte offset set.
func (e *Error) WithOffset(off int64) *Error {
	c := *e
	c.Offset = off
	return &c
}

// WithPath returns a copy of e with the JSON Pointer path set.
func (e *Error) WithPath(path string) *Error {
	c := *e
	c.Path = path
	return &c
}

// ErrNumberNotComparable is the designated sentinel spec §3.2 requires when
// neither operand of a Number comparison can be reduced to a common
// representable form.
var ErrNumberNotComparable = NewError(ErrConversion, "number not comparable: raw form failed to convert to int64 or double")
