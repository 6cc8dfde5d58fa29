package repository

import (
	"time"

	"github.com/vallarta-sunsets/intake/internal/domain/model"
)

// MemoryOption applies a configuration option to the MemoryStore.
type MemoryOption func(*MemoryStore)

// WithListings seeds the store with directory listings.
func WithListings(listings ...model.Listing) MemoryOption {
	return func(s *MemoryStore) {
		for _, l := range listings {
			s.listings[l.ID] = l
		}
	}
}

// WithSunsetSpots seeds the store with curated sunset spots.
func WithSunsetSpots(spots ...model.SunsetSpot) MemoryOption {
	return func(s *MemoryStore) {
		for _, spot := range spots {
			s.spots[spot.ID] = spot
		}
	}
}

// WithNow overrides the clock used for lead creation timestamps.
func WithNow(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
