package redis

import (
	"context"
	"fmt"

	"github.com/kbukum/apikit/cache"
	"github.com/kbukum/apikit/component"
	"github.com/kbukum/apikit/logger"
)

// Component wraps Client and implements component.Component for lifecycle management.
type Component struct {
	client *Client
	cfg    Config
	log    *logger.Logger
}

// NewComponent creates a Redis component for use with the component registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return &Component{
		cfg: cfg,
		log: log.WithComponent("redis"),
	}
}

var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// Client returns the underlying *Client, or nil if not started.
func (c *Component) Client() *Client {
	return c.client
}

// Store returns the cache store over the started client, or nil if not started.
func (c *Component) Store() cache.Store {
	if c.client == nil {
		return nil
	}
	return NewStore(c.client, c.cfg.KeyPrefix)
}

// Name returns the component name.
func (c *Component) Name() string { return "redis" }

// Start creates the client and verifies connectivity.
func (c *Component) Start(ctx context.Context) error {
	client, err := New(c.cfg, c.log)
	if err != nil {
		return err
	}

	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis start: %w", err)
	}

	c.client = client
	c.log.Info("Redis cache connected", logger.Fields("addr", c.cfg.Addr, "db", c.cfg.DB))
	return nil
}

// Stop closes the Redis connection.
func (c *Component) Stop(_ context.Context) error {
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

// Health pings Redis.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.client == nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "redis not initialized",
		}
	}

	if err := c.client.Ping(ctx); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	}

	return component.Health{
		Name:   c.Name(),
		Status: component.StatusHealthy,
	}
}

// Describe returns infrastructure summary info.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Redis cache",
		Type:    "cache",
		Details: fmt.Sprintf("%s db=%d pool=%d prefix=%s", c.cfg.Addr, c.cfg.DB, c.cfg.PoolSize, c.cfg.KeyPrefix),
	}
}
