package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of engine errors
type ErrorType string

const (
	// ErrorTypeInvalidInput marks a malformed or out-of-bounds request.
	// Never retried and never eligible for provider fallback.
	ErrorTypeInvalidInput ErrorType = "invalid_input"
	// ErrorTypeProviderUnavailable marks a transient backend failure
	// (network error, 5xx, timeout). Triggers exactly one fallback.
	ErrorTypeProviderUnavailable ErrorType = "provider_unavailable"
	// ErrorTypeNormalization marks a contract mismatch between the
	// expected and actual provider schema. Surfaced as internal.
	ErrorTypeNormalization ErrorType = "normalization"
	// ErrorTypeInternal marks everything else
	ErrorTypeInternal ErrorType = "internal"
)

// AppError represents a structured engine error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	FieldPath  string    `json:"field_path,omitempty"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	switch {
	case e.FieldPath != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %s at %q (caused by: %v)", e.Type, e.Message, e.FieldPath, e.Cause)
	case e.FieldPath != "":
		return fmt.Sprintf("%s: %s at %q", e.Type, e.Message, e.FieldPath)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	default:
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewInvalidInputError creates a new invalid-input error
func NewInvalidInputError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidInput,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewProviderUnavailableError creates a new provider-unavailable error
func NewProviderUnavailableError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeProviderUnavailable,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// NewNormalizationError creates a new normalization error carrying the
// offending field path in the provider response
func NewNormalizationError(message, fieldPath string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeNormalization,
		Message:    message,
		FieldPath:  fieldPath,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// IsType checks if the error is of a specific type anywhere in its chain
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsProviderUnavailable reports whether the error is fallback-eligible
func IsProviderUnavailable(err error) bool {
	return IsType(err, ErrorTypeProviderUnavailable)
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
