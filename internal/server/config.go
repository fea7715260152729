// Package server provides configuration helpers that define runtime
// defaults, validation, and rate-limiting parameters for the Parlor service.
package server

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// RateLimitConfig defines the parameters for per-connection message rate
// limiting.
type RateLimitConfig struct {
	Burst          int           `env:"RATE_LIMIT_BURST"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL"`
}

// Config holds the server configuration settings including security
// controls. Instances are passed by value to whatever needs them; there is
// no package-level active configuration.
type Config struct {
	Port            string        `env:"SERVER_PORT"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS"`
	MaxMessageSize  int64         `env:"MAX_MESSAGE_SIZE"`
	HistoryLimit    int           `env:"HISTORY_LIMIT"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
	RateLimit       RateLimitConfig
}

// DefaultConfig returns a Config populated with default values for all
// settings. MaxMessageSize leaves headroom for inline attachments.
func DefaultConfig() Config {
	return Config{
		Port: ":8080",
		AllowedOrigins: []string{
			"http://localhost:8080",
		},
		MaxMessageSize:  1 << 20,
		HistoryLimit:    100,
		ShutdownTimeout: 10 * time.Second,
		RateLimit: RateLimitConfig{
			Burst:          5,
			RefillInterval: time.Second,
		},
	}
}

// LoadConfig builds a Config from environment variables layered over the
// defaults, then sanitizes it. Unset variables keep their default values.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg.sanitized(), nil
}

// sanitized replaces out-of-range values with defaults so a misconfigured
// environment degrades to something usable instead of failing startup.
func (c Config) sanitized() Config {
	defaults := DefaultConfig()

	if c.Port == "" {
		c.Port = defaults.Port
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = defaults.MaxMessageSize
	}
	if c.HistoryLimit <= 0 || c.HistoryLimit > 100 {
		c.HistoryLimit = defaults.HistoryLimit
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = defaults.RateLimit.Burst
	}
	if c.RateLimit.RefillInterval <= 0 {
		c.RateLimit.RefillInterval = defaults.RateLimit.RefillInterval
	}
	c.AllowedOrigins = append([]string(nil), c.AllowedOrigins...)
	return c
}
