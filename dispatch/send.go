package dispatch

import "context"

// Send executes a descriptor with no capabilities: exactly one transport
// call, then decode.
func Send[T any](ctx context.Context, d *Dispatcher, req Request[T]) (T, error) {
	return execute(ctx, d, req, CapabilityPlain, nil, nil)
}

// SendCached answers from the cache when req has caching enabled and the
// key is present, with no transport call. Otherwise it behaves like Send.
func SendCached[T any, R CacheableRequest[T]](ctx context.Context, d *Dispatcher, req R) (T, error) {
	return execute[T](ctx, d, req, CapabilityCached, req, nil)
}

// SendRetryable re-sends req after transport failures while the retry
// budget lasts and req.CanRetry accepts the failure.
func SendRetryable[T any, R RetryableRequest[T]](ctx context.Context, d *Dispatcher, req R) (T, error) {
	return execute[T](ctx, d, req, CapabilityRetryable, nil, req)
}

// SendCachedRetryable checks the cache first and falls back to the
// retrying path on a miss.
func SendCachedRetryable[T any, R CacheableRetryableRequest[T]](ctx context.Context, d *Dispatcher, req R) (T, error) {
	return execute[T](ctx, d, req, CapabilityCachedRetryable, req, req)
}

// Dispatch picks the entry point matching the capabilities req implements.
func Dispatch[T any](ctx context.Context, d *Dispatcher, req Request[T]) Result[T] {
	c, cacheable := req.(Cacheable)
	r, retryable := req.(Retryable)

	switch {
	case cacheable && retryable:
		return resultOf(execute(ctx, d, req, CapabilityCachedRetryable, c, r))
	case cacheable:
		return resultOf(execute(ctx, d, req, CapabilityCached, c, nil))
	case retryable:
		return resultOf(execute(ctx, d, req, CapabilityRetryable, nil, r))
	default:
		return resultOf(execute(ctx, d, req, CapabilityPlain, nil, nil))
	}
}

// DispatchAsync runs Dispatch on its own goroutine and calls completion
// exactly once with the result.
func DispatchAsync[T any](ctx context.Context, d *Dispatcher, req Request[T], completion func(Result[T])) {
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		completion(Dispatch(ctx, d, req))
	}()
}
