package dispatch

import "context"

// Call is everything a transport needs to perform one attempt.
type Call struct {
	URL        string
	Method     string
	Parameters map[string]any
	Headers    map[string]string
}

// Transport performs one network call and returns the raw response body.
// Any error it returns is a transport failure; the dispatcher passes it to
// Retryable.CanRetry unchanged.
type Transport interface {
	Do(ctx context.Context, call Call) ([]byte, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, call Call) ([]byte, error)

// Do calls f.
func (f TransportFunc) Do(ctx context.Context, call Call) ([]byte, error) {
	return f(ctx, call)
}
