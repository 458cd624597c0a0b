package httpclient

import (
	"time"

	"github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/resilience"
	"github.com/kbukum/apikit/validation"
)

const (
	defaultTimeout          = 30 * time.Second
	defaultName             = "http"
	defaultMaxResponseBytes = 10 << 20
)

// Config configures the HTTP transport.
type Config struct {
	// Name identifies the adapter in logs and health reports.
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is the endpoint used by descriptors that do not name one.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`

	// Timeout bounds a single attempt, including reading the body. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// MaxResponseBytes caps the response body read per attempt. Defaults to 10 MiB.
	MaxResponseBytes int64 `yaml:"max_response_bytes" mapstructure:"max_response_bytes" validate:"gte=0"`

	// UserAgent is sent on every request. Defaults to "apikit/<version>".
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// Headers are sent on every request. Descriptor headers win on conflict.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// HTTP2 enables HTTP/2 negotiation over TLS.
	HTTP2 bool `yaml:"http2" mapstructure:"http2"`

	// TLS configures certificate verification and client certificates.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`

	// CircuitBreaker guards the endpoint. Nil disables it.
	CircuitBreaker *resilience.CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = defaultName
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxResponseBytes <= 0 {
		c.MaxResponseBytes = defaultMaxResponseBytes
	}
	if c.CircuitBreaker != nil && c.CircuitBreaker.Name == "" {
		c.CircuitBreaker.Name = c.Name
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.TLS.Validate(); err != nil {
		return errors.InvalidConfig("http: tls").WithCause(err)
	}
	if cb := c.CircuitBreaker; cb != nil && cb.MaxFailures <= 0 {
		return errors.InvalidConfig("http: circuit_breaker.max_failures must be positive")
	}
	return nil
}

// DefaultCircuitBreakerConfig returns a circuit breaker that trips on
// retryable failures only.
func DefaultCircuitBreakerConfig(name string) *resilience.CircuitBreakerConfig {
	cfg := resilience.DefaultCircuitBreakerConfig(name)
	cfg.IsFailure = IsRetryable
	return &cfg
}
