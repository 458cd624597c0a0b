package errors

import (
	"fmt"
)

// AppError is the unified error type returned for failed dispatches.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the failure class can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// Transport creates an AppError for a failed network call.
func Transport(cause error) *AppError {
	return &AppError{
		Code: ErrCodeTransport, Message: "request failed",
		Retryable: true, Cause: cause,
	}
}

// Parse creates an AppError for a payload the descriptor could not decode.
func Parse(size int) *AppError {
	return &AppError{
		Code: ErrCodeParse, Message: "failed to decode response body",
		Retryable: false,
		Details:   map[string]any{"body_size": size},
	}
}

// InvalidRequest creates an AppError for a descriptor that cannot be sent.
func InvalidRequest(reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidRequest, Message: fmt.Sprintf("invalid request: %s", reason),
		Retryable: false,
	}
}

// InvalidConfig creates an AppError for configuration that failed validation.
func InvalidConfig(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: message,
		Retryable: false,
	}
}
