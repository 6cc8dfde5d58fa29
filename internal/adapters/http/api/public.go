// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/vallarta-sunsets/intake/internal/app"
)

// publicRateLimitMessage is shown to human callers; it must stay generic and
// retry-prompting rather than exposing window internals.
const publicRateLimitMessage = "Too many requests. Please try again later."

// bookingRequest mirrors the public form payload for POST /bookings.
type bookingRequest struct {
	Name       string           `json:"name"`
	Email      string           `json:"email" validate:"required,email"`
	Message    string           `json:"message" validate:"required"`
	Date       string           `json:"date"`
	Guests     int              `json:"guests" validate:"gte=0"`
	Metadata   *bookingMetadata `json:"metadata"`
	SourcePath string           `json:"source_path"`
	Honeypot   string           `json:"honeypot"`
}

type bookingMetadata struct {
	Channel        string   `json:"channel"`
	AgentSuggested bool     `json:"agent_suggested"`
	Confidence     *float64 `json:"confidence" validate:"omitempty,gte=0,lte=1"`
}

type bookingResponse struct {
	OK   bool `json:"ok"`
	Spam bool `json:"spam,omitempty"`
}

// BookingHandler handles public form submissions.
type BookingHandler struct {
	deps Dependencies
}

// NewBookingHandler creates a new public booking handler.
func NewBookingHandler(deps Dependencies) *BookingHandler {
	return &BookingHandler{deps: deps}
}

// HandlePostBooking handles POST /bookings requests.
func (h *BookingHandler) HandlePostBooking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "missing or invalid required fields")
		return
	}

	sub := service.PublicSubmission{
		Name:       req.Name,
		Email:      req.Email,
		Message:    req.Message,
		Date:       req.Date,
		Guests:     req.Guests,
		SourcePath: req.SourcePath,
		ListingID:  r.URL.Query().Get("listing_id"),
		Honeypot:   req.Honeypot,
		RemoteIP:   clientIP(r),
	}
	if req.Metadata != nil {
		sub.Channel = req.Metadata.Channel
		sub.AgentSuggested = req.Metadata.AgentSuggested
		sub.ConfidenceHint = req.Metadata.Confidence
	}

	res, err := h.deps.SubmitPublic(r.Context(), sub)
	switch {
	case errors.Is(err, service.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, publicRateLimitMessage)
		return
	case err != nil:
		// The human-facing surface never exposes store internals.
		writeError(w, http.StatusBadRequest, "could not process booking; please try again")
		return
	}
	writeJSON(w, http.StatusOK, bookingResponse{OK: true, Spam: res.Spam})
}
