package httpclient

import (
	"context"
	"fmt"

	"github.com/kbukum/apikit/component"
)

// Component wraps an Adapter with lifecycle management.
type Component struct {
	adapter *Adapter
	config  Config
	opts    []Option
}

var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates an HTTP adapter component. The adapter is built in Start.
func NewComponent(cfg Config, opts ...Option) *Component {
	return &Component{config: cfg, opts: opts}
}

// Name returns the component name.
func (c *Component) Name() string {
	if c.config.Name == "" {
		return defaultName
	}
	return c.config.Name
}

// Start builds the adapter.
func (c *Component) Start(_ context.Context) error {
	a, err := New(c.config, c.opts...)
	if err != nil {
		return err
	}
	c.adapter = a
	return nil
}

// Stop closes idle connections.
func (c *Component) Stop(ctx context.Context) error {
	if c.adapter != nil {
		return c.adapter.Close(ctx)
	}
	return nil
}

// Health is unhealthy before Start and while the circuit is open.
func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	switch {
	case c.adapter == nil:
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
	case !c.adapter.IsAvailable(ctx):
		h.Status = component.StatusDegraded
		h.Message = fmt.Sprintf("circuit %s", c.adapter.CircuitBreaker().State())
	}
	return h
}

// Describe returns the component description.
func (c *Component) Describe() component.Description {
	details := c.config.BaseURL
	if c.config.HTTP2 {
		details += " (http2)"
	}
	return component.Description{
		Name:    c.Name(),
		Type:    "http-adapter",
		Details: details,
	}
}

// Adapter returns the adapter. Nil before Start.
func (c *Component) Adapter() *Adapter {
	return c.adapter
}
