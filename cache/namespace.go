package cache

import (
	"context"
	"time"
)

// Namespaced prefixes every key before it reaches the wrapped store.
type Namespaced struct {
	inner  Store
	prefix string
}

// Namespace wraps s so that key k is stored as "<ns>:<k>". An empty ns
// returns s unchanged.
func Namespace(s Store, ns string) Store {
	if ns == "" {
		return s
	}
	return &Namespaced{inner: s, prefix: ns + ":"}
}

func (n *Namespaced) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *Namespaced) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return n.inner.Set(ctx, n.prefix+key, data, ttl)
}

func (n *Namespaced) Delete(ctx context.Context, key string) error {
	return n.inner.Delete(ctx, n.prefix+key)
}

// Close closes the wrapped store.
func (n *Namespaced) Close() error { return n.inner.Close() }

var _ Store = (*Namespaced)(nil)
