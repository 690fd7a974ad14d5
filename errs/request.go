package errs

import (
	"errors"
	"net/http"
)

// Unauthorized is returned when an operation needs a caller and has none.
var Unauthorized = NewUnauthorizedError("unauthorized")

// Payload problems
var (
	ErrMalformedPayload     = errors.New("malformed payload")
	ErrInvalidJSON          = errors.New("invalid JSON")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidField         = errors.New("invalid field")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrMaxBodySizeExceeded  = errors.New("max body size exceeded")
	ErrCORSBlocked          = errors.New("request blocked by CORS policy")
)

// Token problems
var (
	ErrMissingToken  = errors.New("missing access token")
	ErrExpiredToken  = errors.New("expired token")
	ErrInvalidToken  = errors.New("invalid token")
	ErrConsumedToken = errors.New("token already used")
)

func NewMalformedPayloadError(payloadType string, cause error) *ApiErr {
	return newErr(http.StatusBadRequest, ErrBadRequest, ErrMalformedPayload).
		withDetails("Malformed %s payload", payloadType).
		withField("payload").
		withCause(cause)
}

func NewInvalidJSONError(cause error) *ApiErr {
	return newErr(http.StatusBadRequest, ErrBadRequest, ErrInvalidJSON).
		withDetails("Invalid JSON format").
		withField("json").
		withCause(cause)
}

func NewMissingRequiredFieldError(fieldName string) *ApiErr {
	return newErr(http.StatusBadRequest, ErrBadRequest, ErrMissingRequiredField).
		withDetails("Missing required field: %s", fieldName).
		withField(fieldName)
}

func NewInvalidFieldError(fieldName, reason string) *ApiErr {
	return newErr(http.StatusBadRequest, ErrBadRequest, ErrInvalidField).
		withDetails("Invalid field %s: %s", fieldName, reason).
		withField(fieldName)
}

func NewUnsupportedMediaTypeError(contentType string, allowedTypes []string) *ApiErr {
	return newErr(http.StatusUnsupportedMediaType, nil, ErrUnsupportedMediaType).
		withDetails("Unsupported media type: %s. Allowed types: %v", contentType, allowedTypes).
		withField("content_type")
}

func NewMaxBodySizeExceededError(maxSize int64) *ApiErr {
	return newErr(http.StatusRequestEntityTooLarge, nil, ErrMaxBodySizeExceeded).
		withDetails("Request body size exceeded maximum allowed size of %d bytes", maxSize).
		withField("body_size")
}

func NewCORSError(origin string) *ApiErr {
	return newErr(http.StatusForbidden, ErrForbidden, ErrCORSBlocked).
		withDetails("Origin '%s' is not allowed by CORS policy", origin)
}

// Session token failures are authentication failures.

func NewMissingTokenError() *ApiErr {
	return newErr(http.StatusUnauthorized, ErrUnauthorized, ErrMissingToken).
		withDetails("Missing access token").
		withField("authorization")
}

func NewExpiredTokenError() *ApiErr {
	return newErr(http.StatusUnauthorized, ErrUnauthorized, ErrExpiredToken).
		withDetails("Access token has expired").
		withField("authorization")
}

func NewInvalidTokenError() *ApiErr {
	return newErr(http.StatusUnauthorized, ErrUnauthorized, ErrInvalidToken).
		withDetails("Invalid access token").
		withField("authorization")
}

// Reset tokens arrive in a request body, so their failures are client errors.

func NewExpiredResetTokenError() *ApiErr {
	return newErr(http.StatusBadRequest, ErrExpiredToken, errors.New("Reset token has expired")).withField("token")
}

func NewInvalidResetTokenError() *ApiErr {
	return newErr(http.StatusBadRequest, ErrInvalidToken, errors.New("Invalid reset token")).withField("token")
}

func NewConsumedResetTokenError() *ApiErr {
	return newErr(http.StatusBadRequest, ErrConsumedToken, errors.New("Reset token has already been used")).withField("token")
}

func NewInsufficientRoleError(requiredRole string) *ApiErr {
	return NewForbiddenError("Unauthorized").
		withDetails("Insufficient role. Required: %s", requiredRole).
		withField("authorization")
}

func IsMissingRequiredFieldError(err error) bool { return errors.Is(err, ErrMissingRequiredField) }
func IsExpiredTokenError(err error) bool         { return errors.Is(err, ErrExpiredToken) }
func IsInvalidTokenError(err error) bool         { return errors.Is(err, ErrInvalidToken) }
func IsConsumedTokenError(err error) bool        { return errors.Is(err, ErrConsumedToken) }
