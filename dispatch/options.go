package dispatch

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/apikit/cache"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
	"github.com/kbukum/apikit/validation"
)

// BackoffConfig sets the wait between retry attempts. The zero value
// retries immediately.
type BackoffConfig struct {
	Initial time.Duration `mapstructure:"initial_backoff" yaml:"initial_backoff" validate:"gte=0"`
	Max     time.Duration `mapstructure:"max_backoff" yaml:"max_backoff" validate:"gte=0"`
	Factor  float64       `mapstructure:"factor" yaml:"factor" validate:"gte=0"`
	Jitter  float64       `mapstructure:"jitter" yaml:"jitter" validate:"gte=0,lte=1"`
}

// DefaultBackoffConfig is a short exponential backoff for interactive use.
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		Initial: 100 * time.Millisecond,
		Max:     2 * time.Second,
		Factor:  2.0,
		Jitter:  0.1,
	}
}

// Validate checks the backoff settings.
func (c *BackoffConfig) Validate() error {
	return validation.Validate(c)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithBaseURL sets the base URL used by descriptors that do not name one.
func WithBaseURL(url string) Option {
	return func(d *Dispatcher) { d.baseURL = url }
}

// WithCache sets the store consulted by cacheable descriptors. Without one
// every lookup is a miss.
func WithCache(r cache.Reader) Option {
	return func(d *Dispatcher) { d.cache = r }
}

// WithLogger sets the dispatcher's logger.
func WithLogger(l *logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// WithBackoff sets the wait between retry attempts.
func WithBackoff(cfg BackoffConfig) Option {
	return func(d *Dispatcher) { d.backoff = cfg }
}

// WithMetrics records dispatch metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithTracer opens dispatch and attempt spans on t.
func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) {
		if t != nil {
			d.tracer = t
		}
	}
}

// WithRequestIDFunc replaces the request ID generator.
func WithRequestIDFunc(fn func() string) Option {
	return func(d *Dispatcher) {
		if fn != nil {
			d.newID = fn
		}
	}
}
