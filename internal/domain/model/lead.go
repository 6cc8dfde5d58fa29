// Package model contains domain models passed between layers.
package model

import "time"

// Origin identifies who submitted a lead.
type Origin string

// Lead origins. Set once at creation and never changed.
const (
	OriginHuman Origin = "human"
	OriginAgent Origin = "agent"
)

// Status is the triage state of a lead.
type Status string

// Lead statuses. NEW and NEEDS_CLARIFICATION are the only valid initial
// states; APPROVED and REJECTED are terminal and set by a reviewer.
const (
	StatusNew                Status = "new"
	StatusNeedsClarification Status = "needs_clarification"
	StatusApproved           Status = "approved"
	StatusRejected           Status = "rejected"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusNeedsClarification, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransition reports whether a reviewer may move a lead from s to next.
// Initial states may only move to approved or rejected.
func (s Status) CanTransition(next Status) bool {
	if s.Terminal() || !next.Valid() {
		return false
	}
	return next == StatusApproved || next == StatusRejected
}

// Lead represents a persisted booking intent, human- or agent-originated.
// Fields mirror the booking_intents row shape.
type Lead struct {
	ID           string         // generated, immutable
	Name         string         // submitter name
	ContactEmail string         // contact email
	Message      string         // free-text message
	Origin       Origin         // human | agent
	Status       Status         // triage state
	Confidence   *float64       // agent self-estimate in [0,1]; nil for human leads
	RequestID    *string        // idempotency key; unique across leads when present
	ListingID    *string        // attributed listing, if any
	SourcePath   *string        // originating page/channel path
	AgentID      string         // submitting agent identifier, empty for human leads
	Metadata     map[string]any // opaque auxiliary payload
	CreatedAt    time.Time
}
