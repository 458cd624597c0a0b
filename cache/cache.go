package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrUndecodable is returned by Load when a stored value does not decode
// into the requested type.
var ErrUndecodable = errors.New("cached value does not decode")

// Reader is the read side of a store. The dispatcher only ever reads.
type Reader interface {
	// Get returns the stored bytes and whether the key was present.
	// A missing or expired key is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
}

// Store is a byte-oriented key/value store with optional expiry.
// Implementations are safe for concurrent use.
type Store interface {
	Reader
	// Set stores data under key. A ttl of zero or less never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Load reads key and decodes it as JSON into T.
// A miss is (zero, false, nil). A value that does not decode yields
// ErrUndecodable.
func Load[T any](ctx context.Context, r Reader, key string) (T, bool, error) {
	var zero T
	data, ok, err := r.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, false, fmt.Errorf("%w: key %q: %v", ErrUndecodable, key, err)
	}
	return v, true, nil
}

// Save encodes v as JSON and stores it under key.
func Save[T any](ctx context.Context, s Store, key string, v T, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache save %q: %w", key, err)
	}
	if err := s.Set(ctx, key, data, ttl); err != nil {
		return fmt.Errorf("cache save %q: %w", key, err)
	}
	return nil
}
