// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"net/http"

	"solvendo/internal/domainerr"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	// Lineas is populated only for stock conflicts, so the POS UI can
	// highlight the offending cart lines.
	Lineas []domainerr.LineaSinStock `json:"lineas,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// FromDomain maps a typed domain error to its HTTP status and envelope.
// Unknown errors map to 400 so that service-layer messages still reach the
// caller without being mistaken for server faults.
func FromDomain(err error) (int, *APIError) {
	var (
		alreadyOpen *domainerr.AlreadyOpenError
		notOpen     *domainerr.SessionNotOpenError
		badAmount   *domainerr.InvalidAmountError
		noStock     *domainerr.InsufficientStockError
		needClient  *domainerr.ClientRequiredError
		validation  *domainerr.ValidationError
		persistence *domainerr.PersistenceError
	)
	switch {
	case errors.As(err, &alreadyOpen):
		return http.StatusConflict, New(err.Error())
	case errors.As(err, &notOpen):
		return http.StatusConflict, New(err.Error())
	case errors.As(err, &noStock):
		return http.StatusConflict, &APIError{Detail: err.Error(), Lineas: noStock.Lineas}
	case errors.As(err, &badAmount):
		return http.StatusUnprocessableEntity, New(err.Error())
	case errors.As(err, &needClient):
		return http.StatusUnprocessableEntity, New(err.Error())
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity, New(err.Error())
	case errors.As(err, &persistence):
		return http.StatusInternalServerError, New("Error interno del servidor")
	default:
		return http.StatusBadRequest, New(err.Error())
	}
}
