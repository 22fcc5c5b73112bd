// Package errors defines structured error types and sentinel errors for the
// ReliScore scoring service.
package errors

import (
	"errors"
	"fmt"
)

// Error codes used across the service. They classify failures for logging,
// metrics, and API responses.
const (
	ErrCodeInternal       = "internal_error"
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeNotFound       = "not_found"
	ErrCodeDatabase       = "database_error"
	ErrCodeScorer         = "scorer_error"
	ErrCodeConfig         = "config_error"
)

// Sentinel errors for the well-known failure classes.
var (
	// ErrInvalidDay is returned when a caller supplies a day that does not
	// parse as YYYY-MM-DD. Rejected before any work begins.
	ErrInvalidDay = New(ErrCodeInvalidRequest, "invalid day format, expected YYYY-MM-DD")

	// ErrScorerUnavailable marks an exhausted retry budget against the
	// remote model service.
	ErrScorerUnavailable = New(ErrCodeScorer, "remote scorer unavailable")

	// ErrMalformedResponse marks a structurally invalid remote response.
	// Treated identically to a transient failure by the retry loop.
	ErrMalformedResponse = New(ErrCodeScorer, "malformed scorer response")

	// ErrDatabaseOperation marks a failed persistence operation.
	ErrDatabaseOperation = New(ErrCodeDatabase, "database operation failed")

	// ErrInvalidConfig marks missing or inconsistent configuration.
	ErrInvalidConfig = New(ErrCodeConfig, "invalid configuration")
)

// AppError is a structured application error carrying a stable code, a
// human-readable message, and an optional wrapped cause.
type AppError struct {
	ErrCode string
	Message string
	Cause   error
}

// New creates an AppError with the given code and message.
func New(code, message string) *AppError {
	return &AppError{ErrCode: code, Message: message}
}

// Newf creates an AppError with a formatted message.
func Newf(code, format string, args ...interface{}) *AppError {
	return &AppError{ErrCode: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a copy of the error, preserving the code and
// message for Is comparisons against the sentinel.
func (e *AppError) Wrap(cause error) *AppError {
	return &AppError{ErrCode: e.ErrCode, Message: e.Message, Cause: cause}
}

// WithMessagef returns a copy of the error with a more specific message.
func (e *AppError) WithMessagef(format string, args ...interface{}) *AppError {
	return &AppError{ErrCode: e.ErrCode, Message: fmt.Sprintf(format, args...), Cause: e.Cause}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Code returns the stable error code.
func (e *AppError) Code() string {
	return e.ErrCode
}

// Unwrap supports errors.Is/errors.As chains.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches AppErrors by code, so wrapped copies compare equal to their
// sentinel.
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if errors.As(target, &appErr) {
		return e.ErrCode == appErr.ErrCode && e.Message == appErr.Message
	}
	return false
}
