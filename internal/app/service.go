// Package service provides the intake pipeline behind the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vallarta-sunsets/intake/internal/adapters/repository"
	"github.com/vallarta-sunsets/intake/internal/domain/model"
	"github.com/vallarta-sunsets/intake/internal/domain/ratelimit"
	"github.com/vallarta-sunsets/intake/internal/domain/routing"
	"github.com/vallarta-sunsets/intake/pkg/logger"
	"github.com/vallarta-sunsets/intake/pkg/metrics"
)

// Placeholder values persisted when an agent submission omits user context.
// These mirror the original intake contract and keep downstream triage
// tooling from choking on empty fields.
const (
	defaultHumanName  = "Anonymous User"
	defaultAgentName  = "Agent User"
	defaultAgentEmail = "agent_placeholder@example.com"
	defaultAgentNote  = "Agent-generated booking intent."
	defaultChannel    = "form"
	anonAgentID       = "anon"
)

// Target kinds an agent submission may carry. An explicit listing target
// attributes directly; a sunset spot target feeds the resolver as criteria.
const (
	TargetListing    = "listing"
	TargetSunsetSpot = "sunset_spot"
)

// Preferences are the loose intent signals an intake request may carry.
type Preferences struct {
	Date         string
	Guests       int
	Vibe         string
	Budget       string
	Area         string
	Category     string
	SunsetSpotID string
}

// PublicSubmission is a human form submission entering the pipeline.
type PublicSubmission struct {
	Name           string
	Email          string
	Message        string
	Date           string
	Guests         int
	Channel        string
	AgentSuggested bool
	ConfidenceHint *float64
	SourcePath     string
	ListingID      string // explicit attribution carried via query context
	Honeypot       string
	RemoteIP       string
}

// PublicResult acknowledges a public submission. Spam is reported to the
// caller of this method only; the HTTP surface must not reveal detection.
type PublicResult struct {
	LeadID string
	Spam   bool
}

// AgentSubmission is an automated submission entering the pipeline.
type AgentSubmission struct {
	AgentID     string
	Name        string
	Email       string
	Preferences *Preferences
	TargetType  string
	TargetID    string
	Confidence  float64
	Notes       string
	RequestID   string
	RemoteIP    string
}

// AgentResult carries the created or replayed lead's identity and status.
type AgentResult struct {
	LeadID    string
	Status    model.Status
	Duplicate bool
}

// Service implements the intake pipeline: spam filtering, rate limiting,
// idempotency, confidence gating, target resolution, and persistence.
type Service struct {
	mu sync.RWMutex

	// Core components
	store         repository.Store
	resolver      *routing.Resolver
	publicLimiter ratelimit.Limiter
	agentLimiter  ratelimit.Limiter

	// Configuration
	publicLimit int
	agentLimit  int
	rateWindow  time.Duration
	threshold   float64
	tierWeights map[string]float64

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		publicLimit: 3,
		agentLimit:  10,
		rateWindow:  time.Hour,
		threshold:   0.7,
		tierWeights: model.DefaultTierWeights,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components that were not injected.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.logger.Info(ctx, "using in-memory store")
	}
	if s.publicLimiter == nil {
		s.publicLimiter = ratelimit.NewMemoryLimiter(
			ratelimit.WithLimit(s.publicLimit),
			ratelimit.WithWindow(s.rateWindow),
		)
	}
	if s.agentLimiter == nil {
		s.agentLimiter = ratelimit.NewMemoryLimiter(
			ratelimit.WithLimit(s.agentLimit),
			ratelimit.WithWindow(s.rateWindow),
		)
	}
	s.resolver = routing.NewResolver(s.store, routing.WithTierWeights(s.tierWeights))

	s.started = true
	s.logger.Info(ctx, "intake service started",
		logger.Int("publicLimit", s.publicLimit),
		logger.Int("agentLimit", s.agentLimit),
		logger.Float64("confidenceThreshold", s.threshold),
	)
	return nil
}

// Stop releases the service's store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.store != nil {
		s.store.Close()
	}
	s.started = false
	s.logger.Info(context.Background(), "intake service stopped")
}

// SubmitPublic runs the human-form pipeline. A filled honeypot drops the
// submission without a write; the result still reads as success so abuse
// tooling learns nothing.
func (s *Service) SubmitPublic(ctx context.Context, sub PublicSubmission) (PublicResult, error) {
	if sub.Honeypot != "" {
		metrics.RecordSpamDropped()
		s.logger.Info(ctx, "honeypot tripped; dropping submission",
			logger.String("ip", sub.RemoteIP),
			logger.String("sourcePath", sub.SourcePath),
		)
		return PublicResult{Spam: true}, nil
	}

	key := sub.RemoteIP
	if key == "" {
		key = "unknown"
	}
	if !s.publicLimiter.Admit(ctx, key) {
		metrics.RecordRateLimited("public")
		return PublicResult{}, ErrRateLimited
	}

	name := sub.Name
	if name == "" {
		name = defaultHumanName
	}
	channel := sub.Channel
	if channel == "" {
		channel = defaultChannel
	}

	lead := model.Lead{
		Name:         name,
		ContactEmail: sub.Email,
		Message:      sub.Message,
		Origin:       model.OriginHuman,
		Status:       model.StatusNew,
		Metadata: map[string]any{
			"channel":         channel,
			"agent_suggested": sub.AgentSuggested,
			"confidence":      sub.ConfidenceHint,
			"preferences": map[string]any{
				"date":   sub.Date,
				"guests": sub.Guests,
			},
		},
	}
	if sub.SourcePath != "" {
		lead.SourcePath = &sub.SourcePath
	}
	if sub.ListingID != "" {
		lead.ListingID = &sub.ListingID
	}

	created, err := s.store.CreateLead(ctx, lead)
	if err != nil {
		metrics.RecordStoreError()
		return PublicResult{}, fmt.Errorf("%w: %w", ErrStore, err)
	}

	metrics.RecordLeadCreated(string(model.OriginHuman))
	s.refreshLeadCount(ctx)
	s.logger.Info(ctx, "public lead created",
		logger.String("leadID", created.ID),
		logger.String("sourcePath", sub.SourcePath),
	)
	return PublicResult{LeadID: created.ID}, nil
}

// SubmitAgent runs the agent pipeline: rate limiting by agent+origin,
// idempotent replay, confidence gating, attribution, persistence.
func (s *Service) SubmitAgent(ctx context.Context, sub AgentSubmission) (AgentResult, error) {
	agentID := sub.AgentID
	if agentID == "" {
		agentID = anonAgentID
	}
	ip := sub.RemoteIP
	if ip == "" {
		ip = "unknown"
	}
	if !s.agentLimiter.Admit(ctx, agentID+":"+ip) {
		metrics.RecordRateLimited("agent")
		return AgentResult{}, ErrRateLimited
	}

	if sub.RequestID != "" {
		existing, err := s.store.GetLeadByRequestID(ctx, sub.RequestID)
		switch {
		case err == nil:
			metrics.RecordLeadDuplicate()
			return AgentResult{LeadID: existing.ID, Status: existing.Status, Duplicate: true}, nil
		case errors.Is(err, repository.ErrNotFound):
			// fresh request
		default:
			metrics.RecordStoreError()
			return AgentResult{}, fmt.Errorf("%w: %w", ErrStore, err)
		}
	}

	status := model.StatusNew
	if sub.Confidence < s.threshold {
		status = model.StatusNeedsClarification
		metrics.RecordConfidenceGated()
	}

	listingID := s.attribute(ctx, sub)

	name := sub.Name
	if name == "" {
		name = defaultAgentName
	}
	email := sub.Email
	if email == "" {
		email = defaultAgentEmail
	}
	message := sub.Notes
	if message == "" {
		message = defaultAgentNote
	}

	confidence := sub.Confidence
	lead := model.Lead{
		Name:         name,
		ContactEmail: email,
		Message:      message,
		Origin:       model.OriginAgent,
		Status:       status,
		Confidence:   &confidence,
		AgentID:      agentID,
		ListingID:    listingID,
		Metadata: map[string]any{
			"agent":       true,
			"agent_id":    agentID,
			"preferences": sub.Preferences,
			"notes":       sub.Notes,
		},
	}
	if sub.TargetType == TargetSunsetSpot && sub.TargetID != "" {
		lead.Metadata["sunset_spot_id"] = sub.TargetID
	}
	if sub.RequestID != "" {
		rid := sub.RequestID
		lead.RequestID = &rid
	}

	created, err := s.store.CreateLead(ctx, lead)
	if errors.Is(err, repository.ErrDuplicateRequestID) {
		// Lost the insert race to an identical request; answer as a replay.
		existing, lookupErr := s.store.GetLeadByRequestID(ctx, sub.RequestID)
		if lookupErr != nil {
			metrics.RecordStoreError()
			return AgentResult{}, fmt.Errorf("%w: %w", ErrStore, lookupErr)
		}
		metrics.RecordLeadDuplicate()
		return AgentResult{LeadID: existing.ID, Status: existing.Status, Duplicate: true}, nil
	}
	if err != nil {
		metrics.RecordStoreError()
		return AgentResult{}, fmt.Errorf("%w: %w", ErrStore, err)
	}

	metrics.RecordLeadCreated(string(model.OriginAgent))
	s.refreshLeadCount(ctx)
	s.logger.Info(ctx, "agent lead created",
		logger.String("leadID", created.ID),
		logger.String("agentID", agentID),
		logger.Float64("confidence", sub.Confidence),
		logger.String("status", string(created.Status)),
	)
	return AgentResult{LeadID: created.ID, Status: created.Status}, nil
}

// attribute picks the attributed listing for an agent submission. An explicit
// listing target always wins; a sunset spot target and any preference signals
// go through the resolver. Resolution is best-effort routing: a resolver
// failure leaves the lead unattributed rather than failing the intake.
func (s *Service) attribute(ctx context.Context, sub AgentSubmission) *string {
	if sub.TargetType == TargetListing && sub.TargetID != "" {
		id := sub.TargetID
		return &id
	}

	var criteria routing.Criteria
	if sub.TargetType == TargetSunsetSpot && sub.TargetID != "" {
		criteria.SunsetSpotID = sub.TargetID
	}
	if sub.Preferences != nil {
		criteria.Area = sub.Preferences.Area
		criteria.Category = sub.Preferences.Category
		if criteria.SunsetSpotID == "" {
			criteria.SunsetSpotID = sub.Preferences.SunsetSpotID
		}
	}
	if criteria.Empty() {
		metrics.RecordTargetUnresolved()
		return nil
	}

	listing, err := s.resolver.Resolve(ctx, criteria)
	if err != nil {
		s.logger.Warn(ctx, "target resolution failed; leaving lead unattributed", logger.Error(err))
		metrics.RecordTargetUnresolved()
		return nil
	}
	if listing == nil {
		metrics.RecordTargetUnresolved()
		return nil
	}
	metrics.RecordTargetResolved()
	return &listing.ID
}

// ResolveTarget exposes target resolution for the standalone lookup endpoint.
func (s *Service) ResolveTarget(ctx context.Context, criteria routing.Criteria) (*model.Listing, error) {
	listing, err := s.resolver.Resolve(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	return listing, nil
}

// GetStats returns current service statistics.
func (s *Service) GetStats() map[string]interface{} {
	stats := map[string]interface{}{
		"publicLimit":         s.publicLimit,
		"agentLimit":          s.agentLimit,
		"rateWindowMinutes":   int(s.rateWindow.Minutes()),
		"confidenceThreshold": s.threshold,
	}
	if s.publicLimiter != nil {
		stats["publicActors"] = int(s.publicLimiter.Size())
	}
	if s.agentLimiter != nil {
		stats["agentActors"] = int(s.agentLimiter.Size())
	}
	if s.store != nil {
		if n, err := s.store.CountLeads(context.Background()); err == nil {
			stats["totalLeads"] = n
		}
	}
	return stats
}

func (s *Service) refreshLeadCount(ctx context.Context) {
	if n, err := s.store.CountLeads(ctx); err == nil {
		metrics.UpdateLeadsTotal(n)
	}
}
