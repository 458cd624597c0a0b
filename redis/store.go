package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/apikit/cache"
)

// Store implements cache.Store on Redis. Keys are stored as "<prefix>:<key>".
type Store struct {
	client    *Client
	keyPrefix string
}

// NewStore creates a Store backed by client.
func NewStore(client *Client, keyPrefix string) *Store {
	return &Store{client: client, keyPrefix: keyPrefix}
}

func (s *Store) fullKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + ":" + key
}

// Get returns the raw bytes stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := s.client.GetBytes(ctx, s.fullKey(key))
	if err != nil {
		return nil, false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return data, ok, nil
}

// Set stores data with ttl. A ttl of zero or less never expires.
func (s *Store) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.fullKey(key), data, ttl); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.fullKey(key)); err != nil {
		return fmt.Errorf("redis delete %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *Store) Close() error { return s.client.Close() }

var _ cache.Store = (*Store)(nil)
