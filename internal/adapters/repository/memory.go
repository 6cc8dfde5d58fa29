package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vallarta-sunsets/intake/internal/domain/model"
)

// MemoryStore implements Store in process memory. It backs local development
// and tests; a single mutex serializes the request-id uniqueness check with
// the insert, which is the property the idempotency guard relies on.
type MemoryStore struct {
	mu        sync.RWMutex
	leads     map[string]model.Lead
	byRequest map[string]string // request id -> lead id
	listings  map[string]model.Listing
	spots     map[string]model.SunsetSpot
	now       func() time.Time
}

// NewMemoryStore creates an empty in-memory store with configuration options.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		leads:     make(map[string]model.Lead),
		byRequest: make(map[string]string),
		listings:  make(map[string]model.Listing),
		spots:     make(map[string]model.SunsetSpot),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateLead assigns an id and creation time, enforcing request-id uniqueness
// atomically with the write.
func (s *MemoryStore) CreateLead(_ context.Context, lead model.Lead) (model.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lead.RequestID != nil && *lead.RequestID != "" {
		if _, exists := s.byRequest[*lead.RequestID]; exists {
			return model.Lead{}, ErrDuplicateRequestID
		}
	}

	lead.ID = uuid.NewString()
	lead.CreatedAt = s.now().UTC()
	s.leads[lead.ID] = lead
	if lead.RequestID != nil && *lead.RequestID != "" {
		s.byRequest[*lead.RequestID] = lead.ID
	}
	return lead, nil
}

// GetLead returns a lead by id.
func (s *MemoryStore) GetLead(_ context.Context, id string) (model.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead, ok := s.leads[id]
	if !ok {
		return model.Lead{}, ErrNotFound
	}
	return lead, nil
}

// GetLeadByRequestID performs the idempotency point lookup.
func (s *MemoryStore) GetLeadByRequestID(_ context.Context, requestID string) (model.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byRequest[requestID]
	if !ok {
		return model.Lead{}, ErrNotFound
	}
	return s.leads[id], nil
}

// UpdateLeadStatus applies a reviewer transition under the state machine.
func (s *MemoryStore) UpdateLeadStatus(_ context.Context, id string, next model.Status) (model.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok {
		return model.Lead{}, ErrNotFound
	}
	if !lead.Status.CanTransition(next) {
		return model.Lead{}, ErrInvalidTransition
	}
	lead.Status = next
	s.leads[id] = lead
	return lead, nil
}

// CountLeads returns the number of stored leads.
func (s *MemoryStore) CountLeads(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.leads), nil
}

// FindEligible returns non-free listings matching the filters. Empty filters
// match everything.
func (s *MemoryStore) FindEligible(_ context.Context, area, category string) ([]model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Listing
	for _, l := range s.listings {
		if l.Tier == model.TierFree {
			continue
		}
		if area != "" && !strings.EqualFold(l.Area, area) {
			continue
		}
		if category != "" && !strings.EqualFold(l.Category, category) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// GetListing returns a listing by id.
func (s *MemoryStore) GetListing(_ context.Context, id string) (model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.listings[id]
	if !ok {
		return model.Listing{}, ErrListingNotFound
	}
	return l, nil
}

// PutListing inserts or replaces a listing. Used by seeding and tests.
func (s *MemoryStore) PutListing(_ context.Context, l model.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[l.ID] = l
}

// GetSunsetSpot returns a spot by id or slug.
func (s *MemoryStore) GetSunsetSpot(_ context.Context, id string) (model.SunsetSpot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if spot, ok := s.spots[id]; ok {
		return spot, nil
	}
	for _, spot := range s.spots {
		if spot.Slug == id {
			return spot, nil
		}
	}
	return model.SunsetSpot{}, ErrSpotNotFound
}

// PutSunsetSpot inserts or replaces a spot. Used by seeding and tests.
func (s *MemoryStore) PutSunsetSpot(_ context.Context, spot model.SunsetSpot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spots[spot.ID] = spot
}

// Close releases nothing; it satisfies Store.
func (s *MemoryStore) Close() {}
