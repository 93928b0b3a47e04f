// Package apperrors defines the typed errors that travel from middlewares and services
// to the HTTP layer, and the single place where they are turned into responses.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error
type Kind string

const (
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindValidation     Kind = "validation"
	KindUpload         Kind = "upload"
	KindProcessing     Kind = "processing"
	KindPersistence    Kind = "persistence"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindInternal       Kind = "internal"
)

// Error is an error with an HTTP status and a client-safe message
type Error struct {
	Kind    Kind
	Status  int
	Message string
	// Details is rendered as the "errors" member of the response body
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind
func New(kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message}
}

// Wrap creates an error of the given kind around a cause
func Wrap(err error, kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message, Err: err}
}

// Unauthenticated builds a 401 error
func Unauthenticated(message string) *Error {
	return New(KindAuthentication, http.StatusUnauthorized, message)
}

// Forbidden builds a 403 error
func Forbidden(message string) *Error {
	return New(KindAuthorization, http.StatusForbidden, message)
}

// Invalid builds a 400 validation error carrying the violations as details
func Invalid(details any) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: "validation failed", Details: details}
}

// BadRequest builds a 400 validation error without details
func BadRequest(message string) *Error {
	return New(KindValidation, http.StatusBadRequest, message)
}

// Upload builds an upload error with the given status (400 or 413)
func Upload(status int, message string) *Error {
	return New(KindUpload, status, message)
}

// Processing builds a 400 error for files that could not be transcoded
func Processing(err error, message string) *Error {
	return Wrap(err, KindProcessing, http.StatusBadRequest, message)
}

// Persistence builds a 500 error around a storage engine failure
func Persistence(err error) *Error {
	return Wrap(err, KindPersistence, http.StatusInternalServerError, "database error")
}

// NotFound builds a 404 error
func NotFound(message string) *Error {
	return New(KindNotFound, http.StatusNotFound, message)
}

// Conflict builds a 409 error
func Conflict(message string) *Error {
	return New(KindConflict, http.StatusConflict, message)
}

// Internal builds a generic 500 error
func Internal(err error) *Error {
	return Wrap(err, KindInternal, http.StatusInternalServerError, "internal server error")
}

// As extracts an *Error from err's chain
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err carries an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
