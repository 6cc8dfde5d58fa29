package service

import (
	"time"

	"github.com/vallarta-sunsets/intake/internal/adapters/repository"
	"github.com/vallarta-sunsets/intake/internal/domain/ratelimit"
	"github.com/vallarta-sunsets/intake/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects the lead/listing store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithPublicLimiter injects the limiter used by the public entry point.
func WithPublicLimiter(l ratelimit.Limiter) Option {
	return func(s *Service) {
		if l != nil {
			s.publicLimiter = l
		}
	}
}

// WithAgentLimiter injects the limiter used by the agent entry point.
func WithAgentLimiter(l ratelimit.Limiter) Option {
	return func(s *Service) {
		if l != nil {
			s.agentLimiter = l
		}
	}
}

// WithRateLimits sets the per-window quotas used when limiters are built
// internally.
func WithRateLimits(publicLimit, agentLimit int) Option {
	return func(s *Service) {
		if publicLimit > 0 {
			s.publicLimit = publicLimit
		}
		if agentLimit > 0 {
			s.agentLimit = agentLimit
		}
	}
}

// WithRateWindow sets the window length used when limiters are built
// internally.
func WithRateWindow(window time.Duration) Option {
	return func(s *Service) {
		if window > 0 {
			s.rateWindow = window
		}
	}
}

// WithConfidenceThreshold sets the agent confidence gate.
func WithConfidenceThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold >= 0 && threshold <= 1 {
			s.threshold = threshold
		}
	}
}

// WithTierWeights sets the tier ranking table used by target resolution.
func WithTierWeights(weights map[string]float64) Option {
	return func(s *Service) {
		if len(weights) > 0 {
			s.tierWeights = weights
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
