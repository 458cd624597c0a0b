// Package resilience provides the retry loop and circuit breaker used by the
// dispatcher and the HTTP transport.
//
// Retry runs an operation up to MaxAttempts times with exponential backoff,
// asking RetryIf after every failure whether another attempt is allowed:
//
//	user, err := resilience.Retry(ctx, resilience.RetryConfig{
//	    MaxAttempts: 4,
//	    RetryIf:     isTransient,
//	}, func(attempt int) (User, error) {
//	    return fetchUser(ctx, id)
//	})
//
// CircuitBreaker fails fast once a dependency keeps failing:
//
//	cb := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("api"))
//	err := cb.Execute(func() error { return call(ctx) })
package resilience
