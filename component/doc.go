// Package component defines lifecycle-managed infrastructure pieces, such as
// the Redis cache connection and the HTTP transport, and a Registry that
// starts them in order and stops them in reverse.
package component
