// Package apperr classifies the errors the commerce core surfaces to callers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind groups errors by how the caller should react to them.
type Kind string

const (
	// KindValidation marks malformed input, rejected before any mutation.
	KindValidation Kind = "validation"
	// KindConflict marks retryable contention, e.g. insufficient inventory.
	KindConflict Kind = "conflict"
	// KindNotFound marks a missing referenced entity.
	KindNotFound Kind = "not_found"
	// KindInvariant marks a broken internal invariant; the enclosing
	// transaction must be aborted entirely.
	KindInvariant Kind = "invariant_violation"
	// KindExternal marks a collaborator failure (payment, notifications).
	KindExternal Kind = "external_service"
)

// Error carries a kind alongside the wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a kinded error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the kind of err, or the empty Kind for unclassified errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
