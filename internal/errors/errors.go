// Package errors defines the typed errors raised by the analysis pipeline.
//
// Only validation errors ever reach callers of the pipeline. Every other type
// is consumed by the controller, recorded as a diagnostic event, and answered
// with a fallback result.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeLoad           ErrorType = "load"
	ErrorTypeDecodeTimeout  ErrorType = "decode_timeout"
	ErrorTypeOCRTimeout     ErrorType = "ocr_timeout"
	ErrorTypeOCRUnavailable ErrorType = "ocr_unavailable"
	ErrorTypeUnknownStage   ErrorType = "unknown_stage"
)

// Reason refines an error type. Validation failures always carry one.
type Reason string

const (
	ReasonTooLarge             Reason = "too_large"
	ReasonUnsupportedType      Reason = "unsupported_type"
	ReasonTooSmall             Reason = "too_small"
	ReasonTooSmallAfterScaling Reason = "too_small_after_scaling"
	ReasonPixelBudgetExceeded  Reason = "pixel_budget_exceeded"
)

// AppError represents a structured pipeline error
type AppError struct {
	Type    ErrorType `json:"type"`
	Reason  Reason    `json:"reason,omitempty"`
	Message string    `json:"message"`
	Stage   string    `json:"stage,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	kind := string(e.Type)
	if e.Reason != "" {
		kind = fmt.Sprintf("%s(%s)", e.Type, e.Reason)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", kind, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode maps the error onto an HTTP status for transports.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case ErrorTypeValidation:
		switch e.Reason {
		case ReasonTooLarge:
			return http.StatusRequestEntityTooLarge
		case ReasonUnsupportedType:
			return http.StatusUnsupportedMediaType
		}
		return http.StatusBadRequest
	case ErrorTypeDecodeTimeout, ErrorTypeOCRTimeout:
		return http.StatusGatewayTimeout
	case ErrorTypeOCRUnavailable:
		return http.StatusServiceUnavailable
	case ErrorTypeLoad:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// NewValidationError creates a new validation error
func NewValidationError(reason Reason, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Reason:  reason,
		Message: message,
	}
}

// NewLoadError creates a new image load error
func NewLoadError(reason Reason, message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeLoad,
		Reason:  reason,
		Message: message,
		Stage:   "rasterize",
		Cause:   cause,
	}
}

// NewDecodeTimeoutError creates a new decode timeout error
func NewDecodeTimeoutError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeDecodeTimeout,
		Message: message,
		Stage:   "rasterize",
		Cause:   cause,
	}
}

// NewOCRTimeoutError creates a new OCR timeout error
func NewOCRTimeoutError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeOCRTimeout,
		Message: message,
		Stage:   "text",
		Cause:   cause,
	}
}

// NewOCRUnavailableError creates a new OCR unavailable error
func NewOCRUnavailableError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeOCRUnavailable,
		Message: message,
		Stage:   "text",
		Cause:   cause,
	}
}

// NewUnknownStageError creates a new error for an unexpected stage failure
func NewUnknownStageError(stage, message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeUnknownStage,
		Message: message,
		Stage:   stage,
		Cause:   cause,
	}
}

// IsType checks if the error, or any error it wraps, is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// HasReason checks if the error carries the given reason
func HasReason(err error, reason Reason) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Reason == reason
	}
	return false
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode()
	}
	return http.StatusInternalServerError
}

// Category returns the error type for diagnostics, or unknown_stage for
// errors that were never classified.
func Category(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnknownStage
}
