package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an application error so callers can react without
// string-matching messages.
type Kind int

const (
	// KindInternal is the fallback for unexpected failures; the original
	// cause is preserved for logging but never shown to callers.
	KindInternal Kind = iota
	// KindNotFound means a referenced entity is absent.
	KindNotFound
	// KindForbidden means the actor is not permitted to perform the action.
	KindForbidden
	// KindInvalidState means the operation is not valid for the entity's
	// current lifecycle state.
	KindInvalidState
	// KindConflict means a uniqueness or calendar-overlap violation.
	KindConflict
	// KindValidation means malformed input caught before any mutation.
	KindValidation
)

// Error is the application error surfaced by all service operations.
type Error struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two application errors by kind so errors.Is can be used with
// the sentinel helpers below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure, keeping the cause for logs.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// Wrap re-tags err as an application error unless it already is one, in
// which case it is returned unchanged so the outermost classification wins.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return Internal(message, err)
}

// KindOf extracts the kind of an error; unknown errors are internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Code maps an error kind to the status code family used by transports.
func Code(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return 404
	case KindForbidden:
		return 403
	case KindInvalidState:
		return 400
	case KindConflict:
		return 409
	case KindValidation:
		return 422
	default:
		return 500
	}
}
