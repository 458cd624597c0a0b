// Package redis provides the Redis cache backend: a go-redis client with
// apikit logging, a cache.Store over it, and a lifecycle component.
//
//	comp := redis.NewComponent(cfg, log)
//	if err := comp.Start(ctx); err != nil { ... }
//	store := comp.Store() // cache.Store, keys prefixed with cfg.KeyPrefix
package redis
