// Package repository defines the lead and listing store interfaces and errors.
package repository

import (
	"context"

	"github.com/vallarta-sunsets/intake/internal/domain/model"
)

// LeadStore provides write-once creation and reviewer mutation of leads.
type LeadStore interface {
	// CreateLead persists a new lead, assigning its id and creation time.
	// The request id uniqueness constraint is enforced here: a second insert
	// carrying an already-stored request id fails with ErrDuplicateRequestID.
	CreateLead(ctx context.Context, lead model.Lead) (model.Lead, error)

	// GetLead returns a lead by id. Returns ErrNotFound if unknown.
	GetLead(ctx context.Context, id string) (model.Lead, error)

	// GetLeadByRequestID performs the idempotency point lookup.
	// Returns ErrNotFound when no lead carries the key.
	GetLeadByRequestID(ctx context.Context, requestID string) (model.Lead, error)

	// UpdateLeadStatus applies a reviewer transition. Returns ErrNotFound for
	// unknown ids and ErrInvalidTransition when the state machine forbids it.
	UpdateLeadStatus(ctx context.Context, id string, next model.Status) (model.Lead, error)

	// CountLeads returns the number of stored leads.
	CountLeads(ctx context.Context) (int, error)
}

// ListingStore provides read access to directory listings for attribution.
// FindEligible never returns free-tier listings. GetSunsetSpot accepts a spot
// id or slug and returns ErrSpotNotFound when neither matches.
type ListingStore interface {
	FindEligible(ctx context.Context, area, category string) ([]model.Listing, error)
	GetListing(ctx context.Context, id string) (model.Listing, error)
	GetSunsetSpot(ctx context.Context, id string) (model.SunsetSpot, error)
}

// Store bundles both stores behind one backing engine.
type Store interface {
	LeadStore
	ListingStore

	Close()
}
