// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/vallarta-sunsets/intake/internal/app"
)

// agentSecretHeader carries the pre-shared secret on agent requests.
const agentSecretHeader = "x-agent-secret"

// agentBookingRequest mirrors the payload for POST /agent/bookings. An
// absent agent_id is accepted; the pipeline books it as an anonymous agent.
type agentBookingRequest struct {
	AgentID     string            `json:"agent_id"`
	UserContext *agentUserContext `json:"user_context"`
	Target      *agentTarget      `json:"target"`
	Confidence  float64           `json:"confidence" validate:"gte=0,lte=1"`
	Notes       string            `json:"notes"`
	RequestID   string            `json:"request_id"`
}

type agentUserContext struct {
	Name        string            `json:"name"`
	Email       string            `json:"email" validate:"omitempty,email"`
	Preferences *agentPreferences `json:"preferences"`
}

type agentPreferences struct {
	Date         string `json:"date"`
	Guests       int    `json:"guests" validate:"gte=0"`
	Vibe         string `json:"vibe"`
	Budget       string `json:"budget"`
	Area         string `json:"area"`
	Category     string `json:"category"`
	SunsetSpotID string `json:"sunset_spot_id"`
}

type agentTarget struct {
	Type string `json:"type" validate:"required"`
	ID   string `json:"id" validate:"required"`
}

type agentBookingResponse struct {
	Message     string `json:"message"`
	BookingID   string `json:"booking_id"`
	Status      string `json:"status"`
	IsDuplicate bool   `json:"isDuplicate"`
}

// AgentHandler handles automated agent submissions.
type AgentHandler struct {
	deps   Dependencies
	secret string
}

// NewAgentHandler creates a new agent booking handler. An empty secret
// disables the authentication check.
func NewAgentHandler(deps Dependencies, secret string) *AgentHandler {
	return &AgentHandler{deps: deps, secret: secret}
}

func (h *AgentHandler) authorized(r *http.Request) bool {
	if h.secret == "" {
		return true
	}
	supplied := r.Header.Get(agentSecretHeader)
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(h.secret)) == 1
}

// HandlePostBooking handles POST /agent/bookings requests.
func (h *AgentHandler) HandlePostBooking(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_agent_booking"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if !h.authorized(r) {
		writeError(w, http.StatusUnauthorized, "Unauthorized agent")
		return
	}
	var req agentBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, WrapKind(op, ErrBadRequest, err).Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, WrapKind(op, ErrBadRequest, err).Error())
		return
	}

	sub := service.AgentSubmission{
		AgentID:    req.AgentID,
		Confidence: req.Confidence,
		Notes:      req.Notes,
		RequestID:  req.RequestID,
		RemoteIP:   clientIP(r),
	}
	if req.UserContext != nil {
		sub.Name = req.UserContext.Name
		sub.Email = req.UserContext.Email
		if p := req.UserContext.Preferences; p != nil {
			sub.Preferences = &service.Preferences{
				Date:         p.Date,
				Guests:       p.Guests,
				Vibe:         p.Vibe,
				Budget:       p.Budget,
				Area:         p.Area,
				Category:     p.Category,
				SunsetSpotID: p.SunsetSpotID,
			}
		}
	}
	if req.Target != nil {
		sub.TargetType = req.Target.Type
		sub.TargetID = req.Target.ID
	}

	res, err := h.deps.SubmitAgent(r.Context(), sub)
	switch {
	case errors.Is(err, service.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
		return
	case err != nil:
		// Agent callers are machines; they get the structured detail.
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if res.Duplicate {
		writeJSON(w, http.StatusOK, agentBookingResponse{
			Message:     "Duplicate request",
			BookingID:   res.LeadID,
			Status:      string(res.Status),
			IsDuplicate: true,
		})
		return
	}
	writeJSON(w, http.StatusCreated, agentBookingResponse{
		Message:     "Booking intent received",
		BookingID:   res.LeadID,
		Status:      string(res.Status),
		IsDuplicate: false,
	})
}
