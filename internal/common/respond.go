package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
)

// ErrorEnvelope is the uniform error body for every endpoint.
type ErrorEnvelope struct {
	Result       bool   `json:"result"`
	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError recovers a domain error into the envelope. Internal faults are
// logged and returned as a generic message so no storage detail leaks.
func WriteError(w http.ResponseWriter, logger *logrus.Logger, err error) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		apiErr = Internal(err)
	}

	status := http.StatusInternalServerError
	errorType := "internal_error"
	message := apiErr.Message

	switch apiErr.Kind {
	case KindValidation:
		status = http.StatusUnprocessableEntity
		errorType = "validation_error"
	case KindBadRequest:
		status = http.StatusBadRequest
		errorType = "http_error"
	case KindUnauthorized:
		status = http.StatusUnauthorized
		errorType = "http_error"
	case KindForbidden:
		status = http.StatusForbidden
		errorType = "http_error"
	case KindNotFound:
		status = http.StatusNotFound
		errorType = "http_error"
	case KindInternal:
		if logger != nil {
			logger.WithField("error", apiErr.Error()).Error("internal error")
		}
		message = "internal server error"
	}

	WriteJSON(w, status, ErrorEnvelope{Result: false, ErrorType: errorType, ErrorMessage: message})
}
