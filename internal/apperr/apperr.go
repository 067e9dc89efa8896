// Package apperr defines the closed set of user-facing failures and the HTTP
// status each one maps to.
package apperr

import (
	"errors"
	"net/http"
)

// Kind identifies a class of failure.
type Kind int

const (
	KindInternal Kind = iota
	KindMissingField
	KindDuplicateEmail
	KindFieldConstraint
	KindLocationNotFound
	KindInvalidCredentials
	KindInvalidToken
	KindNotFound
	KindNoContentInCategory
)

const (
	msgInternal            = "Internal Server Error"
	msgInvalidCredentials  = "Invalid email or password"
	msgInvalidToken        = "Invalid token"
	msgLocationNotFound    = "Location not found"
	msgNoContentInCategory = "No Course in this Category"
)

func (k Kind) String() string {
	switch k {
	case KindMissingField:
		return "MissingField"
	case KindDuplicateEmail:
		return "DuplicateEmail"
	case KindFieldConstraint:
		return "FieldConstraintViolation"
	case KindLocationNotFound:
		return "LocationNotFound"
	case KindInvalidCredentials:
		return "InvalidCredentials"
	case KindInvalidToken:
		return "InvalidToken"
	case KindNotFound:
		return "NotFound"
	case KindNoContentInCategory:
		return "NoContentInCategory"
	default:
		return "Internal"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindMissingField, KindDuplicateEmail, KindFieldConstraint, KindLocationNotFound:
		return http.StatusBadRequest
	case KindInvalidCredentials, KindInvalidToken:
		return http.StatusUnauthorized
	case KindNotFound, KindNoContentInCategory:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Message is safe to show to clients; Err is
// the underlying cause and is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
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

// Is matches any *Error of the same kind, so callers can write
// errors.Is(err, apperr.ErrNotFound) style checks against the sentinels below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Sentinels for errors.Is checks. Their empty message matches every message of
// the same kind.
var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrDuplicateEmail  = &Error{Kind: KindDuplicateEmail}
	ErrFieldConstraint = &Error{Kind: KindFieldConstraint}
	ErrInvalidToken    = &Error{Kind: KindInvalidToken}
)

func MissingField(label string) *Error {
	return &Error{Kind: KindMissingField, Message: label}
}

func DuplicateEmail(detail string, cause error) *Error {
	return &Error{Kind: KindDuplicateEmail, Message: detail, Err: cause}
}

func FieldConstraint(detail string, cause error) *Error {
	return &Error{Kind: KindFieldConstraint, Message: detail, Err: cause}
}

func LocationNotFound(cause error) *Error {
	return &Error{Kind: KindLocationNotFound, Message: msgLocationNotFound, Err: cause}
}

func InvalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredentials, Message: msgInvalidCredentials}
}

func InvalidToken(cause error) *Error {
	return &Error{Kind: KindInvalidToken, Message: msgInvalidToken, Err: cause}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func NoContentInCategory() *Error {
	return &Error{Kind: KindNoContentInCategory, Message: msgNoContentInCategory}
}

// From classifies err. Anything that is not an *Error becomes an internal
// failure with the generic message.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: KindInternal, Message: msgInternal, Err: err}
}

// KindOf reports the kind of err without allocating a new error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
