// Package apperrors defines the error taxonomy shared by clients, services,
// and handlers so transport code can map failures to HTTP statuses.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	// KindInternal is the default for anything unclassified.
	KindInternal Kind = iota
	// KindInvalidInput covers bad caller-supplied data: empty text,
	// malformed or out-of-range dates.
	KindInvalidInput
	// KindNotFound covers lifecycle lookup misses.
	KindNotFound
	// KindUpstreamNotFound means the external feed has no data for the
	// requested date.
	KindUpstreamNotFound
	// KindUpstream means the external feed answered with a non-2xx status.
	KindUpstream
	// KindUpstreamUnreachable means the external call failed at the
	// transport level.
	KindUpstreamUnreachable
)

// Error carries a kind alongside the message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind wrapping a cause.
func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindInternal if err carries none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
