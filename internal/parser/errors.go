package parser

import (
	"errors"
	"fmt"
)

// Failure kinds reported by every shape. Match them with errors.Is.
var (
	ErrMissingDelimiter = errors.New("missing delimiter")
	ErrMalformedJSON    = errors.New("malformed json")
	ErrMalformedLiteral = errors.New("malformed literal")
	ErrMissingField     = errors.New("missing field")
)

// ParseError describes why raw text could not satisfy a shape.
type ParseError struct {
	// Shape is the shape that was being parsed.
	Shape Shape

	// Kind is one of the Err* sentinels above.
	Kind error

	// Msg is a short human-readable detail.
	Msg string

	// Err is the underlying decoder error, if any.
	Err error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse %s: %v", e.Shape, e.Kind)
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the decoder error.
func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(shape Shape, kind error, msg string, err error) *ParseError {
	return &ParseError{Shape: shape, Kind: kind, Msg: msg, Err: err}
}

// KindName returns a stable name for the failure kind carried by err,
// or "" when err is not a parse failure.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrMissingDelimiter):
		return "MissingDelimiter"
	case errors.Is(err, ErrMalformedJSON):
		return "MalformedJSON"
	case errors.Is(err, ErrMalformedLiteral):
		return "MalformedLiteral"
	case errors.Is(err, ErrMissingField):
		return "MissingField"
	default:
		return ""
	}
}
