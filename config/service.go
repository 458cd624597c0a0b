package config

import (
	"fmt"

	"github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/logger"
)

// ServiceConfig contains the fields every apikit binary shares.
// Projects extend it by embedding it in their own config structs.
//
// Example:
//
//	type MyConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Cache cache.Config `yaml:"cache" mapstructure:"cache"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// GetServiceConfig returns the base ServiceConfig.
// When embedded, the method is promoted to the embedding struct.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults applies default values to the base configuration.
// Embedding structs call c.ServiceConfig.ApplyDefaults() first.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the base configuration fields.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return errors.InvalidConfig("name is required")
	}
	switch c.Environment {
	case "development", "staging", "production":
	default:
		return errors.InvalidConfig(fmt.Sprintf("environment must be one of [development, staging, production] (got: %s)", c.Environment))
	}
	if err := c.Logging.Validate(); err != nil {
		return errors.InvalidConfig("logging: " + err.Error()).WithCause(err)
	}
	return nil
}
