// errors.go - Error responses of the planner API
package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/table-planner/backend/internal/exchange"
	"github.com/table-planner/backend/internal/session"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	// Data carries what the client needs to ask the user, e.g. the seats a
	// change would clear.
	Data interface{} `json:"data,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error constructors for consistent error handling

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewConflictError creates a 409 Conflict error
func NewConflictError(message string) *APIError {
	return &APIError{
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: message,
	}
}

// NewConfirmationError creates a 409 error for a destructive change that
// needs the user's consent. Repeating the request with confirm set applies it.
func NewConfirmationError(message string, data interface{}) *APIError {
	return &APIError{
		Status:  http.StatusConflict,
		Code:    "CONFIRMATION_REQUIRED",
		Message: message,
		Data:    data,
	}
}

// NewInvalidDocumentError creates a 400 error for a rejected import. The
// reason is meant for the user.
func NewInvalidDocumentError(reason string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "INVALID_DOCUMENT",
		Message: reason,
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewServiceUnavailableError creates a 503 Service Unavailable error
func NewServiceUnavailableError(message string) *APIError {
	return &APIError{
		Status:  http.StatusServiceUnavailable,
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
	}
}

// ErrorHandler writes every error as an APIError. Domain errors that a
// handler returned unwrapped are mapped here; anything else is a 500.
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	apiErr := toAPIError(err)
	if err := c.JSON(apiErr.Status, apiErr); err != nil {
		fmt.Printf("[API] failed to write error response: %v\n", err)
	}
}

func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return &APIError{
			Status:  httpErr.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	}
	var invalid *exchange.ValidationError
	switch {
	case errors.As(err, &invalid):
		return NewInvalidDocumentError(invalid.Reason)
	case errors.Is(err, session.ErrInvalidPlanID):
		return NewValidationError("planId")
	case errors.Is(err, session.ErrPlanNotFound):
		return &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: err.Error()}
	}

	apiErr = &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "UNKNOWN_ERROR",
		Message: "An unexpected error occurred",
	}
	if isDevelopment() {
		apiErr.Details = err.Error()
	}
	return apiErr
}

// isDevelopment reports whether error details may be sent to clients
func isDevelopment() bool {
	return os.Getenv("APP_ENV") != "production"
}
