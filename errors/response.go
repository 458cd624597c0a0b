package errors

import (
	stderrors "errors"
)

// ErrorResponse is the JSON structure used when errors are printed for
// machine consumption, loosely following RFC 7807.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains the error details.
type ErrorBody struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Retryable bool                   `json:"retryable"`
	Cause     string                 `json:"cause,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// ToResponse converts an AppError to an ErrorResponse for JSON serialization.
func (e *AppError) ToResponse() ErrorResponse {
	body := ErrorBody{
		Code:      e.Code,
		Message:   e.Message,
		Retryable: e.Retryable,
		Details:   e.Details,
	}
	if e.Cause != nil {
		body.Cause = e.Cause.Error()
	}
	return ErrorResponse{Error: body}
}

// From returns err as an AppError, wrapping errors without a code as
// INTERNAL_ERROR. It returns nil for a nil error.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return New(ErrCodeInternal, err.Error()).WithCause(err)
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	return hasCode(err, ErrCodeTransport)
}

// IsParse reports whether err is a parse failure.
func IsParse(err error) bool {
	return hasCode(err, ErrCodeParse)
}

// IsInvalidRequest reports whether err is an invalid-request failure.
func IsInvalidRequest(err error) bool {
	return hasCode(err, ErrCodeInvalidRequest)
}

// Cause returns the underlying cause of the first AppError in err's chain,
// or err itself when there is no AppError.
func Cause(err error) error {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Cause
	}
	return err
}

func hasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
