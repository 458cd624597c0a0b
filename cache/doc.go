// Package cache holds the key/value stores the dispatcher reads cached
// responses from.
//
// Values are stored as raw bytes; Load and Save put typed JSON on top:
//
//	store := cache.NewMemory()
//	_ = cache.Save(ctx, store, "42", User{Name: "Ada"}, time.Hour)
//	user, ok, err := cache.Load[User](ctx, store, "42")
//
// Backends: Memory (in-process, TTL aware), File (one JSON file per key),
// Null (never stores) and the Redis store in package redis. Namespace
// prefixes keys so several APIs can share one backend.
package cache
