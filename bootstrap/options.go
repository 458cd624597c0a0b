package bootstrap

import (
	"time"

	"github.com/kbukum/apikit/cache"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
)

// Option configures the App during creation.
type Option func(*appOptions)

// appOptions collects all option values before applying to App.
type appOptions struct {
	logger          *logger.Logger
	telemetry       *observability.Telemetry
	store           cache.Store
	gracefulTimeout *time.Duration
}

// resolveOptions applies all options and returns the collected values.
func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is initialized from the config's Logging field.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithTelemetry uses t instead of initializing telemetry from config.
func WithTelemetry(t *observability.Telemetry) Option {
	return func(o *appOptions) {
		o.telemetry = t
	}
}

// WithCacheStore uses s as the dispatcher's cache, ignoring the cache and
// redis sections of the config.
func WithCacheStore(s cache.Store) Option {
	return func(o *appOptions) {
		o.store = s
	}
}
