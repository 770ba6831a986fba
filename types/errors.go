package types

import (
	"errors"
	"fmt"
)

// Connection attempt errors.
//
// Every attempt failure is one of the structured types below. All of them are recovered
// by the listener's supervised loop and surface to consumers only through the Err field of
// a Reconnecting state, so consumers can use errors.As to inspect the cause.

// ErrConnectionFailed is matched by every attempt failure type via errors.Is.
var ErrConnectionFailed = errors.New("connection attempt failed")

// RequestError reports that the subscription request could not be built.
type RequestError struct {
	URL string
	Err error
}

// Error implements error.
func (e *RequestError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("build subscription request: %v", e.Err)
	}

	return fmt.Sprintf("build subscription request for %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RequestError) Unwrap() error { return e.Err }

// Is reports whether target is ErrConnectionFailed.
func (e *RequestError) Is(target error) bool { return target == ErrConnectionFailed }

// StatusError reports a non-success HTTP status.
type StatusError struct {
	StatusCode int
	Status     string
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status: %s", e.Status)
}

// Is reports whether target is ErrConnectionFailed.
func (e *StatusError) Is(target error) bool { return target == ErrConnectionFailed }

// StreamError reports a transport or I/O failure while connecting or reading the stream.
type StreamError struct {
	Err error
}

// Error implements error.
func (e *StreamError) Error() string {
	return fmt.Sprintf("subscription stream: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *StreamError) Unwrap() error { return e.Err }

// Is reports whether target is ErrConnectionFailed.
func (e *StreamError) Is(target error) bool { return target == ErrConnectionFailed }

// InvalidMinMessageError reports a line whose timestamp could not be extracted.
// The cursor is not advanced for such a line.
type InvalidMinMessageError struct {
	Line string
	Err  error
}

// Error implements error.
func (e *InvalidMinMessageError) Error() string {
	return fmt.Sprintf("invalid minimal message %q: %v", e.Line, e.Err)
}

// Unwrap returns the underlying cause.
func (e *InvalidMinMessageError) Unwrap() error { return e.Err }

// Is reports whether target is ErrConnectionFailed.
func (e *InvalidMinMessageError) Is(target error) bool { return target == ErrConnectionFailed }

// InvalidMessageError reports a line that could not be decoded into a ServerEvent.
// The cursor has already been advanced past the line's timestamp.
type InvalidMessageError struct {
	Line string
	Err  error
}

// Error implements error.
func (e *InvalidMessageError) Error() string {
	return fmt.Sprintf("invalid message %q: %v", e.Line, e.Err)
}

// Unwrap returns the underlying cause.
func (e *InvalidMessageError) Unwrap() error { return e.Err }

// Is reports whether target is ErrConnectionFailed.
func (e *InvalidMessageError) Is(target error) bool { return target == ErrConnectionFailed }
