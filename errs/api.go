// Package errs defines the errors that cross the HTTP boundary. An ApiErr
// carries its status code, and sentinels let callers branch with errors.Is.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Categories. Every ApiErr built here matches at most one of them.
var (
	ErrBadRequest   = errors.New("malformed request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("operation not allowed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("resource conflict")
	ErrInternal     = errors.New("internal server error")
)

type ApiErr struct {
	StatusCode int
	err        error
	kind       error  // category matched by errors.Is, may be nil
	Details    string // Additional details about the error
	Field      string // Field that caused the error (for validation errors)
	Cause      error  // The underlying cause of the error
}

func newErr(status int, kind, err error) *ApiErr {
	return &ApiErr{StatusCode: status, kind: kind, err: err}
}

func (e *ApiErr) withDetails(format string, args ...any) *ApiErr {
	e.Details = fmt.Sprintf(format, args...)
	return e
}

func (e *ApiErr) withField(field string) *ApiErr {
	e.Field = field
	return e
}

func (e *ApiErr) withCause(cause error) *ApiErr {
	e.Cause = cause
	return e
}

func (e *ApiErr) Error() string {
	if e.Details != "" {
		return e.err.Error() + ": " + e.Details
	}
	return e.err.Error()
}

// Message returns the error message without details.
func (e *ApiErr) Message() string {
	return e.err.Error()
}

// GetFullError follows the cause chain, for logs only.
func (e *ApiErr) GetFullError() string {
	if e.Cause == nil {
		return e.Error()
	}
	var inner *ApiErr
	if errors.As(e.Cause, &inner) {
		return e.Error() + " -> " + inner.GetFullError()
	}
	return e.Error() + " -> " + e.Cause.Error()
}

// Unwrap exposes the message error, so errors.Is matches sentinels used as messages.
func (e *ApiErr) Unwrap() error {
	return e.err
}

func (e *ApiErr) Is(target error) bool {
	return e.kind != nil && e.kind == target
}

// StatusCode returns the HTTP status carried by err, or 500 when err is not an ApiErr.
func StatusCode(err error) int {
	var apiErr *ApiErr
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return http.StatusInternalServerError
}

func NewBadRequestError(message string) *ApiErr {
	return newErr(http.StatusBadRequest, ErrBadRequest, errors.New(message))
}

func NewBadRequestErrorWithField(message, field, details string) *ApiErr {
	return NewBadRequestError(message).withField(field).withDetails("%s", details)
}

func NewUnauthorizedError(message string) *ApiErr {
	return newErr(http.StatusUnauthorized, ErrUnauthorized, errors.New(message))
}

func NewForbiddenError(message string) *ApiErr {
	return newErr(http.StatusForbidden, ErrForbidden, errors.New(message))
}

func NewNotFoundError(message string) *ApiErr {
	return newErr(http.StatusNotFound, ErrNotFound, errors.New(message))
}

func NewConflictError(message string) *ApiErr {
	return newErr(http.StatusConflict, ErrConflict, errors.New(message))
}

func NewInternalError(message string) *ApiErr {
	return newErr(http.StatusInternalServerError, ErrInternal, errors.New(message))
}

func NewInternalErrorWithCause(message string, cause error) *ApiErr {
	return NewInternalError(message).withCause(cause)
}

func IsBadRequest(err error) bool   { return errors.Is(err, ErrBadRequest) }
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }
func IsForbidden(err error) bool    { return errors.Is(err, ErrForbidden) }
func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool     { return errors.Is(err, ErrConflict) }
func IsInternal(err error) bool     { return errors.Is(err, ErrInternal) }
