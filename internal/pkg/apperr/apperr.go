// Package apperr defines the error kinds shared by every module so handlers can
// map failures to HTTP responses without inspecting message text.
package apperr

import (
	"database/sql"
	"errors"
	"fmt"
)

// Kind classifies an error for the caller.
type Kind string

const (
	NotFound     Kind = "not_found"
	Conflict     Kind = "conflict"
	Validation   Kind = "validation_error"
	Upstream     Kind = "upstream_error"
	Store        Kind = "database_error"
	InvalidState Kind = "invalid_state"
	Unauthorized Kind = "unauthorized"
	RateLimited  Kind = "rate_limited"
	Internal     Kind = "internal_error"
)

// Error carries a kind, a caller-facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns an error of the given kind with err as its cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the kind of err. Errors that were never classified are Internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf returns the caller-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// Is reports whether err is of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// FromStore converts a database/sql error. sql.ErrNoRows becomes NotFound with
// the given message; anything else becomes Store.
func FromStore(err error, notFoundMessage string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return Wrap(NotFound, notFoundMessage, err)
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Wrap(Store, "database error", err)
}
