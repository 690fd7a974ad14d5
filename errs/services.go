package errs

import (
	"errors"
	"net/http"
)

var (
	ErrEnvironmentVariable = errors.New("environment variable error")
	ErrServiceUnreachable  = errors.New("service unreachable")
)

// NewEnvironmentVariableError reports a required setting that is missing.
func NewEnvironmentVariableError(varName string) *ApiErr {
	return newErr(http.StatusInternalServerError, ErrInternal, ErrEnvironmentVariable).
		withDetails("Environment variable %s is not set or invalid", varName).
		withField(varName)
}

// NewServiceUnreachableError wraps a failed call to a collaborator such as the
// mail relay, Redis or S3.
func NewServiceUnreachableError(service string, cause error) *ApiErr {
	return newErr(http.StatusServiceUnavailable, nil, ErrServiceUnreachable).
		withDetails("Service %s is unreachable", service).
		withField(service).
		withCause(cause)
}

func IsServiceUnreachableError(err error) bool {
	return errors.Is(err, ErrServiceUnreachable)
}
