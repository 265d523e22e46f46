package apperr

import (
	"errors"
)

type Kind string

const (
	NotFound       Kind = "not_found"
	InvalidState   Kind = "invalid_state"
	InvalidInput   Kind = "invalid_input"
	Unauthorized   Kind = "unauthorized"
	StorageFailure Kind = "storage_failure"
)

// Error carries a message that is safe to show to the caller.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind when the target has no message,
// so errors.Is(err, apperr.ErrNotFound) works for every not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message == "" {
		return t.Kind == e.Kind
	}
	return t == e
}

// Kind sentinels
var (
	ErrNotFound       = &Error{Kind: NotFound}
	ErrInvalidState   = &Error{Kind: InvalidState}
	ErrInvalidInput   = &Error{Kind: InvalidInput}
	ErrUnauthorized   = &Error{Kind: Unauthorized}
	ErrStorageFailure = &Error{Kind: StorageFailure}
)

// KindOf reports the kind of the first *Error in the chain. Errors that carry
// no kind are storage failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return StorageFailure
}

// Message returns the caller-facing message, hiding internal detail for
// storage failures.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != StorageFailure {
		return e.Message
	}
	return "Something went wrong, please try again"
}
