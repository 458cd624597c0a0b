package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Dispatch errors
const (
	// ErrCodeTransport indicates the network call failed.
	ErrCodeTransport ErrorCode = "TRANSPORT_ERROR"
	// ErrCodeParse indicates the response body could not be decoded.
	ErrCodeParse ErrorCode = "PARSE_ERROR"
	// ErrCodeInvalidRequest indicates a descriptor that cannot be sent.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
)

// Setup errors
const (
	// ErrCodeInvalidConfig indicates configuration that failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeInternal wraps errors that carry no code of their own.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTransport:      true,
	ErrCodeParse:          false,
	ErrCodeInvalidRequest: false,
	ErrCodeInvalidConfig:  false,
	ErrCodeInternal:       false,
}

// IsRetryableCode returns true if failures with this code may succeed when
// the same request is sent again. Whether a retry actually happens is decided
// by the descriptor's retry capability.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
