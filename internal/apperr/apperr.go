// Package apperr defines the error kinds surfaced by the card ledger.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindValidation        Kind = "VALIDATION"
	KindUnauthorized      Kind = "UNAUTHORIZED"
	KindForbidden         Kind = "FORBIDDEN"
	KindConflict          Kind = "CONFLICT"
	KindResourceExhausted Kind = "RESOURCE_EXHAUSTED"
	KindInternal          Kind = "INTERNAL"
)

// Sentinels for errors.Is; every *Error matches the sentinel of its kind.
var (
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "resource not found"}
	ErrValidation        = &Error{Kind: KindValidation, Message: "validation error"}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrForbidden         = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrConflict          = &Error{Kind: KindConflict, Message: "resource already exists"}
	ErrResourceExhausted = &Error{Kind: KindResourceExhausted, Message: "resource exhausted"}
	ErrInternal          = &Error{Kind: KindInternal, Message: "internal error"}
)

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

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t == sentinel(e.Kind) || t.Message == e.Message)
}

func sentinel(k Kind) *Error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindValidation:
		return ErrValidation
	case KindUnauthorized:
		return ErrUnauthorized
	case KindForbidden:
		return ErrForbidden
	case KindConflict:
		return ErrConflict
	case KindResourceExhausted:
		return ErrResourceExhausted
	default:
		return ErrInternal
	}
}

func NotFound(msg string) error          { return &Error{Kind: KindNotFound, Message: msg} }
func Validation(msg string) error        { return &Error{Kind: KindValidation, Message: msg} }
func Unauthorized(msg string) error      { return &Error{Kind: KindUnauthorized, Message: msg} }
func Forbidden(msg string) error         { return &Error{Kind: KindForbidden, Message: msg} }
func Conflict(msg string) error          { return &Error{Kind: KindConflict, Message: msg} }
func ResourceExhausted(msg string) error { return &Error{Kind: KindResourceExhausted, Message: msg} }

// Internal wraps an unexpected failure. The cause is kept for logging but
// never shown to callers.
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal for anything else.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message for err.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ErrInternal.Message
}
