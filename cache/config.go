package cache

import (
	"os"
	"path/filepath"
	"time"

	"github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/validation"
)

// Backend names accepted in Config.Backend.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config selects and tunes the cache backend.
type Config struct {
	// Backend is one of none, memory, file, redis.
	Backend string `yaml:"backend" mapstructure:"backend" validate:"oneof=none memory file redis"`
	// Dir is the root directory of the file backend.
	Dir string `yaml:"dir" mapstructure:"dir"`
	// Namespace prefixes every key.
	Namespace string `yaml:"namespace" mapstructure:"namespace"`
	// TTL applies to entries written by Save callers that pass no TTL of their own.
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl" validate:"gte=0"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if c.Backend == BackendFile && c.Dir == "" {
		c.Dir = DefaultDir()
	}
}

// Validate checks the backend name.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// DefaultDir is the file backend's directory when none is configured.
func DefaultDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "apikit")
	}
	return filepath.Join(os.TempDir(), "apikit-cache")
}

// Open builds the configured local backend wrapped in its namespace. The
// redis backend lives in package redis and is opened by the caller.
func Open(cfg Config) (Store, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var s Store
	switch cfg.Backend {
	case BackendNone:
		s = NewNull()
	case BackendMemory:
		s = NewMemory()
	case BackendFile:
		f, err := NewFile(cfg.Dir)
		if err != nil {
			return nil, errors.InvalidConfig("cache dir " + cfg.Dir).WithCause(err)
		}
		s = f
	default:
		return nil, errors.InvalidConfig("cache backend " + cfg.Backend + " is not opened by cache.Open")
	}
	return Namespace(s, cfg.Namespace), nil
}
