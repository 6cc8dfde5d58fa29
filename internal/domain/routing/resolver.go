// Package routing maps loose booking intent to a concrete listing.
package routing

import (
	"context"
	"sort"

	"github.com/vallarta-sunsets/intake/internal/domain/model"
)

// Criteria carries the loose preference signals of a submission. A sunset
// spot id stands in for an area: resolution looks the spot up and matches
// listings against the spot's area.
type Criteria struct {
	Area         string
	Category     string
	SunsetSpotID string
}

// Empty reports whether no usable signal is present.
func (c Criteria) Empty() bool {
	return c.Area == "" && c.Category == "" && c.SunsetSpotID == ""
}

// ListingSource provides read access to directory listings eligible for
// automated attribution. Implementations must already exclude free-tier
// listings from the result set. GetSunsetSpot accepts a spot id or slug
// and errors when neither matches; the resolver treats a failed spot
// lookup as an unusable signal rather than a resolution failure.
type ListingSource interface {
	FindEligible(ctx context.Context, area, category string) ([]model.Listing, error)
	GetSunsetSpot(ctx context.Context, id string) (model.SunsetSpot, error)
}

// Resolver ranks eligible listings by service tier and returns the best match.
type Resolver struct {
	source  ListingSource
	weights map[string]float64
}

// NewResolver creates a resolver over source with configuration options.
func NewResolver(source ListingSource, opts ...Option) *Resolver {
	r := &Resolver{
		source:  source,
		weights: model.DefaultTierWeights,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the highest-tier listing matching the criteria, or nil when
// nothing matches (the caller leaves the lead unattributed for manual triage).
// Free-tier listings are never returned. Ties within a tier break on listing
// id so resolution stays deterministic regardless of store iteration order.
func (r *Resolver) Resolve(ctx context.Context, c Criteria) (*model.Listing, error) {
	if c.Empty() {
		return nil, nil
	}

	area := c.Area
	if area == "" && c.SunsetSpotID != "" {
		if spot, err := r.source.GetSunsetSpot(ctx, c.SunsetSpotID); err == nil {
			area = spot.Area
		}
	}
	if area == "" && c.Category == "" {
		return nil, nil
	}

	listings, err := r.source.FindEligible(ctx, area, c.Category)
	if err != nil {
		return nil, err
	}

	eligible := listings[:0:0]
	for _, l := range listings {
		if l.Tier == model.TierFree {
			continue
		}
		eligible = append(eligible, l)
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	sort.Slice(eligible, func(i, j int) bool {
		wi, wj := r.weight(eligible[i].Tier), r.weight(eligible[j].Tier)
		if wi != wj {
			return wi > wj
		}
		return eligible[i].ID < eligible[j].ID
	})

	best := eligible[0]
	return &best, nil
}

func (r *Resolver) weight(t model.Tier) float64 {
	return r.weights[string(t)]
}
