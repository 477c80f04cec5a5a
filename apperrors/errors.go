// Package apperrors defines the error taxonomy shared by every
// handler: unauthenticated, forbidden, validation, not-found,
// conflict and storage failures. Each carries the HTTP status it maps
// to, so handlers never branch on error strings.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a structured application error with an HTTP status and a
// user-visible message. The wrapped cause, if any, is diagnostic only
// and never drives control flow.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns a copy of e carrying err as its cause.
func (e *Error) Wrap(err error) *Error {
	return &Error{Status: e.Status, Message: e.Message, Err: err}
}

// Unauthenticated means no principal could be resolved for the request.
func Unauthenticated(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// Forbidden means the principal exists but may not act on the target,
// typically because it is not a member of the group.
func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

// Validation means the payload failed a kind-specific invariant.
func Validation(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// NotFound means a referenced group or item does not exist.
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// Conflict means the write would violate a uniqueness invariant,
// such as a duplicate (group, user) membership.
func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

// Storage is an opaque persistence failure.
func Storage(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "storage failure", Err: err}
}

// StatusOf returns the HTTP status for err, defaulting to 500 for
// errors outside the taxonomy.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// MessageOf returns the user-visible message for err. Causes wrapped
// inside taxonomy errors stay out of responses.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}

// Is reports whether err belongs to the same taxonomy entry as target
// (same status and message, ignoring the wrapped cause).
func Is(err error, target *Error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status == target.Status && appErr.Message == target.Message
	}
	return false
}
