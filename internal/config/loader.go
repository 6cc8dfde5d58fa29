package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if INTAKE_CONFIG is set
//  3. env (prefix INTAKE_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("INTAKE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: INTAKE_ADDR, INTAKE_AGENT_SECRET, ...
	// Map env keys like INTAKE_AGENT_RATE_LIMIT -> agent_rate_limit (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("INTAKE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "intake_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.PublicRateLimit <= 0 || c.AgentRateLimit <= 0:
		return fmt.Errorf("%w: rate limits must be positive", ErrInvalidConfig)
	case c.RateWindowMinutes <= 0:
		return fmt.Errorf("%w: rate window must be positive", ErrInvalidConfig)
	case c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1:
		return fmt.Errorf("%w: confidence threshold must be within [0,1]", ErrInvalidConfig)
	}
	switch c.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: database_url required for postgres store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	switch c.RateLimitBackend {
	case LimiterMemory:
	case LimiterRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr required for redis rate limiting", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown rate limit backend %q", ErrInvalidConfig, c.RateLimitBackend)
	}
	return nil
}
