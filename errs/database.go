package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Store failures. Repositories wrap driver errors with the first two so
// services can tell constraint violations apart without knowing the driver.
var (
	ErrUniqueConstraintViolation = errors.New("unique constraint violation")
	ErrForeignKeyConstraint      = errors.New("foreign key constraint violation")
	ErrDatabaseQuery             = errors.New("database query failed")
	ErrDatabaseConnection        = errors.New("database connection failed")
)

// NewNotFound reports that no entity matched, e.g. "user not found".
func NewNotFound(entity string) *ApiErr {
	return newErr(http.StatusNotFound, ErrNotFound, fmt.Errorf("%s not found", entity))
}

func NewAlreadyExists(entity string) *ApiErr {
	return NewConflictError(entity + " already exists")
}

// NewDatabaseError classifies a store failure. ApiErrs pass through untouched,
// constraint violations become 409 or 400, and anything else is a 500 that
// keeps the cause for logging.
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	if cause == nil {
		return newErr(http.StatusInternalServerError, ErrInternal, ErrDatabaseQuery).
			withDetails("Failed to %s %s", operation, entity)
	}

	var apiErr *ApiErr
	if errors.As(cause, &apiErr) {
		return apiErr
	}

	msg := cause.Error()
	switch {
	case errors.Is(cause, ErrUniqueConstraintViolation),
		strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "UNIQUE constraint failed"):
		return NewAlreadyExists(entity).
			withDetails("Failed to %s %s", operation, entity).
			withCause(cause)
	case errors.Is(cause, ErrForeignKeyConstraint),
		strings.Contains(msg, "foreign key constraint"),
		strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return NewBadRequestError("invalid reference in " + entity).
			withDetails("The referenced resource does not exist or cannot be linked").
			withCause(cause)
	case strings.Contains(msg, "connection refused"):
		return newErr(http.StatusServiceUnavailable, nil, ErrDatabaseConnection).
			withDetails("Unable to connect to database").
			withCause(cause)
	}

	return newErr(http.StatusInternalServerError, ErrInternal, ErrDatabaseQuery).
		withDetails("Failed to %s %s", operation, entity).
		withCause(cause)
}

func IsUniqueConstraintViolationError(err error) bool {
	return errors.Is(err, ErrUniqueConstraintViolation)
}
