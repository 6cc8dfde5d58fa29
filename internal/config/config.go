// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults come from New; file and env layers override them in Load.
// - External errors must be wrapped via this package's error helpers.
package config

import "github.com/vallarta-sunsets/intake/internal/domain/model"

// Store driver and rate-limit backend names accepted in configuration.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	LimiterMemory = "memory"
	LimiterRedis  = "redis"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// AgentSecret is the pre-shared secret for the agent intake endpoint.
	// When empty the check is skipped; acceptable for local use only.
	AgentSecret string `koanf:"agent_secret"`

	// PublicRateLimit caps human form submissions per origin per window.
	PublicRateLimit int `koanf:"public_rate_limit"`

	// AgentRateLimit caps agent submissions per agent+origin per window.
	AgentRateLimit int `koanf:"agent_rate_limit"`

	// RateWindowMinutes is the shared rate-limit window length.
	RateWindowMinutes int `koanf:"rate_window_minutes"`

	// ConfidenceThreshold routes agent leads below it to needs_clarification.
	ConfidenceThreshold float64 `koanf:"confidence_threshold"`

	// TierWeights ranks listing tiers during target resolution.
	TierWeights map[string]float64 `koanf:"tier_weights"`

	// StoreDriver selects the lead/listing store: memory or postgres.
	StoreDriver string `koanf:"store_driver"`

	// DatabaseURL is the postgres connection string when StoreDriver is postgres.
	DatabaseURL string `koanf:"database_url"`

	// RateLimitBackend selects the limiter state: memory or redis.
	// The memory backend holds only within one instance; under scale-out the
	// effective limit multiplies by the instance count.
	RateLimitBackend string `koanf:"ratelimit_backend"`

	// RedisAddr is the redis host:port when RateLimitBackend is redis.
	RedisAddr string `koanf:"redis_addr"`
}

// New creates a Config carrying the documented defaults: the public window of
// 3 per hour, the agent window of 10 per hour, and the 0.7 confidence gate.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		AgentSecret:         "",
		PublicRateLimit:     3,
		AgentRateLimit:      10,
		RateWindowMinutes:   60,
		ConfidenceThreshold: 0.7,
		TierWeights:         model.DefaultTierWeights,
		StoreDriver:         StoreMemory,
		DatabaseURL:         "",
		RateLimitBackend:    LimiterMemory,
		RedisAddr:           "",
	}
}
