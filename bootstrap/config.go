package bootstrap

import (
	"github.com/kbukum/apikit/cache"
	"github.com/kbukum/apikit/config"
	"github.com/kbukum/apikit/dispatch"
	"github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/httpclient"
	"github.com/kbukum/apikit/observability"
	"github.com/kbukum/apikit/redis"
)

// Config is the full configuration of an apikit process.
//
//	name: apikit
//	http:
//	  base_url: https://api.example.com
//	  timeout: 10s
//	cache:
//	  backend: redis
//	redis:
//	  addr: localhost:6379
//	retry:
//	  initial_backoff: 200ms
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	HTTP          httpclient.Config      `yaml:"http" mapstructure:"http"`
	Cache         cache.Config           `yaml:"cache" mapstructure:"cache"`
	Redis         redis.Config           `yaml:"redis" mapstructure:"redis"`
	Retry         dispatch.BackoffConfig `yaml:"retry" mapstructure:"retry"`
	Observability observability.Config   `yaml:"observability" mapstructure:"observability"`
}

// Load reads the configuration of serviceName from config.yml, .env and
// the environment, then applies defaults and validates it.
func Load(serviceName string, opts ...config.LoaderOption) (*Config, error) {
	return LoadFrom(serviceName, Config{}, opts...)
}

// LoadFrom is Load starting from base instead of the zero Config. Values
// in base stay unless a config file or the environment sets them.
func LoadFrom(serviceName string, base Config, opts ...config.LoaderOption) (*Config, error) {
	cfg := &base
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills every section. Selecting the redis cache backend
// enables the redis client. An all-zero retry section gets
// dispatch.DefaultBackoffConfig.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.HTTP.ApplyDefaults()
	c.Cache.ApplyDefaults()
	if c.Cache.Backend == cache.BackendRedis {
		c.Redis.Enabled = true
	}
	c.Redis.ApplyDefaults()
	if c.Retry == (dispatch.BackoffConfig{}) {
		c.Retry = dispatch.DefaultBackoffConfig()
	}
	c.Observability.ApplyDefaults()
}

// Validate checks every section and names the first one that fails.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	sections := []struct {
		name     string
		validate func() error
	}{
		{"http", c.HTTP.Validate},
		{"cache", c.Cache.Validate},
		{"redis", c.Redis.Validate},
		{"retry", c.Retry.Validate},
		{"observability", c.Observability.Validate},
	}
	for _, s := range sections {
		if err := s.validate(); err != nil {
			return errors.InvalidConfig(s.name + ": " + err.Error()).WithCause(err)
		}
	}
	return nil
}
