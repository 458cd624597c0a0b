package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/kbukum/apikit/cache"
)

// THelper binds test components to a testing.TB.
type THelper struct {
	t   testing.TB
	ctx context.Context
}

// T wraps t. Failures are reported with t.Fatalf.
func T(t testing.TB) *THelper {
	return &THelper{t: t, ctx: context.Background()}
}

// WithContext sets the context passed to component methods.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Setup starts each component and stops them in reverse order when the
// test ends.
func (h *THelper) Setup(components ...TestComponent) {
	h.t.Helper()
	for _, c := range components {
		if err := c.Start(h.ctx); err != nil {
			h.t.Fatalf("failed to start component %s: %v", c.Name(), err)
		}
		h.t.Cleanup(func() {
			if err := c.Stop(h.ctx); err != nil {
				h.t.Errorf("failed to stop component %s: %v", c.Name(), err)
			}
		})
	}
}

// Reset resets each component.
func (h *THelper) Reset(components ...TestComponent) {
	h.t.Helper()
	for _, c := range components {
		if err := c.Reset(h.ctx); err != nil {
			h.t.Fatalf("failed to reset component %s: %v", c.Name(), err)
		}
	}
}

// Snapshot captures a component's state.
func (h *THelper) Snapshot(c TestComponent) any {
	h.t.Helper()
	snapshot, err := c.Snapshot(h.ctx)
	if err != nil {
		h.t.Fatalf("failed to snapshot component %s: %v", c.Name(), err)
	}
	return snapshot
}

// Restore returns a component to a captured state.
func (h *THelper) Restore(c TestComponent, snapshot any) {
	h.t.Helper()
	if err := c.Restore(h.ctx, snapshot); err != nil {
		h.t.Fatalf("failed to restore component %s: %v", c.Name(), err)
	}
}

// SeedCache stores each value JSON-encoded under its key, with no expiry.
func (h *THelper) SeedCache(store cache.Store, entries map[string]any) {
	h.t.Helper()
	for key, v := range entries {
		if err := cache.Save(h.ctx, store, key, v, 0); err != nil {
			h.t.Fatalf("failed to seed cache key %q: %v", key, err)
		}
	}
}

// Eventually polls cond until it holds or timeout passes.
func (h *THelper) Eventually(cond func() bool, timeout time.Duration) {
	h.t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			h.t.Fatalf("condition not met within %s", timeout)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
