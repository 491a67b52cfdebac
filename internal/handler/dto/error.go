package dto

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/taskhive/taskhive/internal/domain"
)

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the typed code, human message, optional per-field
// details and the request correlation id.
type ErrorDetail struct {
	Code          string       `json:"code"`
	Message       string       `json:"message"`
	Details       []FieldError `json:"details,omitempty"`
	CorrelationID string       `json:"correlationId"`
}

// FieldError names one invalid or missing field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewErrorResponse creates an error envelope without field details.
func NewErrorResponse(code, message, correlationID string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetail{
			Code:          code,
			Message:       message,
			CorrelationID: correlationID,
		},
	}
}

// NewValidationError creates a VALIDATION_ERROR envelope with field details.
func NewValidationError(details []FieldError, correlationID string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetail{
			Code:          "VALIDATION_ERROR",
			Message:       "request validation failed",
			Details:       details,
			CorrelationID: correlationID,
		},
	}
}

// MapDomainError maps domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code string, message string) {
	message = err.Error()

	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound, "NOT_FOUND", message
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "NOT_FOUND", message

	case errors.Is(err, domain.ErrConcurrencyConflict):
		return http.StatusConflict, "CONCURRENCY_CONFLICT", message

	case errors.Is(err, domain.ErrInvalidOperation):
		return http.StatusBadRequest, "INVALID_OPERATION", message

	case errors.Is(err, domain.ErrMissingVersion):
		return http.StatusBadRequest, "VALIDATION_ERROR", message
	case errors.Is(err, domain.ErrMalformedVersion):
		return http.StatusBadRequest, "VALIDATION_ERROR", message
	case errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest, "VALIDATION_ERROR", message
	case errors.Is(err, domain.ErrInvalidPriority):
		return http.StatusBadRequest, "VALIDATION_ERROR", message
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusBadRequest, "VALIDATION_ERROR", message

	default:
		// CRITICAL: Log unmapped error for debugging
		slog.Error("unmapped domain error returned to client",
			"error", err,
			"error_type", fmt.Sprintf("%T", err),
		)
		return http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
	}
}
