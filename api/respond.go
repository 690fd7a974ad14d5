package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/rpupo63/blog-backend/errs"
)

// maxRequestBodySize bounds JSON request bodies.
const maxRequestBodySize = 1 << 20

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.WriteJSONStatus(w, http.StatusOK, data)
}

// WriteJSONStatus writes data as JSON with the given status code.
func (r Responder) WriteJSONStatus(w http.ResponseWriter, status int, data any) {
	// Marshal the data first to check size and handle errors
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

func (r Responder) WriteMessage(w http.ResponseWriter, status int, message string) {
	r.WriteJSONStatus(w, status, MessageResponse{Message: message})
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	// For unexpected errors, log and return generic internal error
	if !errors.As(err, &apiErr) {
		r.logger.Error().Err(err).Msg("unexpected error")
		r.WriteJSONStatus(w, http.StatusInternalServerError, ErrorResponse{
			Error:  "Internal Server Error",
			Status: "error",
		})
		return
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Str("error", apiErr.GetFullError()).Int("status", apiErr.StatusCode).Msg("request failed")
	} else if apiErr.Cause != nil {
		r.logger.Debug().Str("error", apiErr.GetFullError()).Int("status", apiErr.StatusCode).Msg("request rejected")
	}

	r.WriteJSONStatus(w, apiErr.StatusCode, ErrorResponse{
		Error:   apiErr.Message(),
		Status:  "error",
		Field:   apiErr.Field,
		Details: apiErr.Details,
	})
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, req *http.Request, payloadName string, dst any) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxRequestBodySize)
	if err := json.NewDecoder(req.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return errs.NewMaxBodySizeExceededError(maxErr.Limit)
		case errors.Is(err, io.EOF):
			return errs.NewMalformedPayloadError(payloadName, err)
		default:
			return errs.NewInvalidJSONError(err)
		}
	}
	return nil
}

// parseID reads a positive integer URL parameter.
func parseID(raw, name string) (uint, error) {
	if raw == "" {
		return 0, errs.NewBadRequestError("missing " + name)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errs.NewBadRequestError("invalid " + name)
	}
	return uint(id), nil
}

// wrapDatabaseError wraps a database error with context information
func wrapDatabaseError(operation, entity string, cause error) error {
	return errs.NewDatabaseError(operation, entity, cause)
}
