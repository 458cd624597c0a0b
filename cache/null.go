package cache

import (
	"context"
	"time"
)

// Null never stores anything. Every read is a miss.
type Null struct{}

// NewNull creates a null store.
func NewNull() Null { return Null{} }

// Get always misses.
func (Null) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards data.
func (Null) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete does nothing.
func (Null) Delete(context.Context, string) error { return nil }

// Close does nothing.
func (Null) Close() error { return nil }

var _ Store = Null{}
