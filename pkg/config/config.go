// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Seconds is a duration that parses a bare number as seconds, the
// convention for the DB_* timeout variables, while still accepting Go
// duration strings like "30s" or "1m".
type Seconds time.Duration

// SetValue implements the cleanenv setter interface.
func (s *Seconds) SetValue(raw string) error {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		*s = Seconds(time.Duration(n * float64(time.Second)))
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid timeout %q: expected seconds or a duration", raw)
	}
	*s = Seconds(d)
	return nil
}

// Duration returns the value as a time.Duration.
func (s Seconds) Duration() time.Duration { return time.Duration(s) }

func (s Seconds) String() string { return time.Duration(s).String() }

// Config holds all configuration for the server. Everything comes from
// environment variables; the connection URL is the only required setting.
type Config struct {
	// DatabaseURL is the target database connection URL. Any scheme synonym
	// or async-driver suffix is accepted and normalized at startup.
	DatabaseURL string `env:"DATABASE_URL"`

	Env string `env:"ENVIRONMENT" env-default:"production"`

	// Version is set at load time, not from the environment.
	Version string `env:"-"`

	Pool  PoolConfig  `env-prefix:""`
	Query QueryConfig `env-prefix:""`
}

// PoolConfig holds connection pool settings.
type PoolConfig struct {
	// Size is the number of persistent connections to keep.
	Size int32 `env:"DB_POOL_SIZE" env-default:"5"`
	// MaxOverflow is how many extra connections may be opened under load.
	MaxOverflow int32 `env:"DB_MAX_OVERFLOW" env-default:"10"`
	// AcquireTimeout bounds how long a caller waits for a free connection.
	AcquireTimeout Seconds `env:"DB_POOL_TIMEOUT" env-default:"30"`
}

// QueryConfig holds per-query execution settings.
type QueryConfig struct {
	// StatementTimeout bounds server-side execution of a single statement.
	StatementTimeout Seconds `env:"DB_STATEMENT_TIMEOUT" env-default:"30"`
}

// MaxConns returns the total connection ceiling for the pool.
func (p *PoolConfig) MaxConns() int32 {
	return p.Size + p.MaxOverflow
}

// Load reads configuration from environment variables. The version parameter
// is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set")
	}
	if c.Pool.Size < 1 {
		return fmt.Errorf("DB_POOL_SIZE must be at least 1")
	}
	if c.Pool.MaxOverflow < 0 {
		return fmt.Errorf("DB_MAX_OVERFLOW must not be negative")
	}
	if c.Pool.AcquireTimeout <= 0 {
		return fmt.Errorf("DB_POOL_TIMEOUT must be positive")
	}
	if c.Query.StatementTimeout <= 0 {
		return fmt.Errorf("DB_STATEMENT_TIMEOUT must be positive")
	}
	return nil
}
