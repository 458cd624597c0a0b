package dispatch

import "math"

// Cacheable lets a descriptor be answered from the dispatcher's cache.
// The cache is never consulted while CacheEnabled is false.
type Cacheable interface {
	CacheEnabled() bool
	// CacheKey identifies the stored response, e.g. the resource id.
	CacheKey() string
}

// Retryable lets a descriptor be re-sent after a transport failure.
type Retryable interface {
	// MaxRetryCount is the number of attempts allowed after the first.
	// Negative values count as zero.
	MaxRetryCount() int
	// CanRetry reports whether the transport error warrants another attempt.
	CanRetry(err error) bool
}

// DefaultMaxRetryCount is the retry budget supplied by RetryDefaults.
const DefaultMaxRetryCount = 3

// RetryDefaults supplies MaxRetryCount. Embed it next to a CanRetry method.
type RetryDefaults struct{}

// MaxRetryCount returns DefaultMaxRetryCount.
func (RetryDefaults) MaxRetryCount() int { return DefaultMaxRetryCount }

// CacheableRequest is a descriptor with the cache capability.
type CacheableRequest[T any] interface {
	Request[T]
	Cacheable
}

// RetryableRequest is a descriptor with the retry capability.
type RetryableRequest[T any] interface {
	Request[T]
	Retryable
}

// CacheableRetryableRequest is a descriptor with both capabilities.
type CacheableRetryableRequest[T any] interface {
	Request[T]
	Cacheable
	Retryable
}

// Capability names, as recorded in logs, spans and metrics.
const (
	CapabilityPlain           = "plain"
	CapabilityCached          = "cached"
	CapabilityRetryable       = "retryable"
	CapabilityCachedRetryable = "cached_retryable"
)

// maxRetryBudget keeps budget+1 attempts representable as an int.
const maxRetryBudget = math.MaxInt - 1

func retryBudget(r Retryable) int {
	n := r.MaxRetryCount()
	switch {
	case n <= 0:
		return 0
	case n > maxRetryBudget:
		return maxRetryBudget
	}
	return n
}
