// Package routing maps loose booking intent to a concrete listing.
package routing

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithTierWeights overrides the default tier ranking table. Unknown tiers
// weigh zero.
func WithTierWeights(weights map[string]float64) Option {
	return func(r *Resolver) {
		if len(weights) > 0 {
			r.weights = weights
		}
	}
}
