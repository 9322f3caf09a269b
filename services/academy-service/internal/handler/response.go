package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/zacademy-api/shared/apperror"
)

const maxBodyBytes = 10 << 10

const (
	statusSuccess = "success"
	statusFail    = "fail"
	statusError   = "error"
)

// Response is the envelope of every JSON response.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Status: statusSuccess, Message: message, Data: data})
}

// errorResponder maps errors onto the envelope. Unknown errors become a generic 500 and
// are logged with their cause.
type errorResponder struct {
	logger *zerolog.Logger
}

func (e errorResponder) respond(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "something went wrong"

	if appErr, ok := apperror.As(err); ok {
		status = appErr.HTTPStatus()
		if status < http.StatusInternalServerError || appErr.Kind == apperror.KindDependency {
			message = appErr.Message
		}
	}

	if status >= http.StatusInternalServerError {
		e.logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	}

	envelopeStatus := statusFail
	if status >= http.StatusInternalServerError {
		envelopeStatus = statusError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Status: envelopeStatus, Message: message})
}

// decodeJSON reads a bounded JSON body into dst, rejecting unknown fields and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError

		switch {
		case errors.As(err, &maxBytesErr):
			return apperror.Validation(fmt.Sprintf("request body must not be larger than %d bytes", maxBytesErr.Limit))
		case errors.Is(err, io.EOF):
			return apperror.Validation("request body must not be empty")
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return apperror.Validation("request body contains malformed JSON")
		case errors.As(err, &typeErr):
			return apperror.Validation(fmt.Sprintf("%s has an invalid type", typeErr.Field))
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return apperror.Validation("request body contains unknown field " + strings.TrimPrefix(err.Error(), "json: unknown field "))
		default:
			return apperror.Validation("invalid request body")
		}
	}

	if decoder.More() {
		return apperror.Validation("request body must contain a single JSON object")
	}

	return nil
}
