// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/vallarta-sunsets/intake/internal/domain/routing"
)

type targetListing struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Tier     string `json:"tier"`
	Area     string `json:"area,omitempty"`
	Category string `json:"category,omitempty"`
}

type targetResponse struct {
	Matched bool           `json:"matched"`
	Listing *targetListing `json:"listing,omitempty"`
}

// TargetHandler answers standalone target lookups for agent clients that
// want a suggested listing before composing a booking.
type TargetHandler struct {
	deps Dependencies
}

// NewTargetHandler creates a new target lookup handler.
func NewTargetHandler(deps Dependencies) *TargetHandler {
	return &TargetHandler{deps: deps}
}

// HandleGetTarget handles GET /agent/target?area=&category=&sunset_spot_id=.
func (h *TargetHandler) HandleGetTarget(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_agent_target"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	criteria := routing.Criteria{
		Area:         q.Get("area"),
		Category:     q.Get("category"),
		SunsetSpotID: q.Get("sunset_spot_id"),
	}
	if criteria.Empty() {
		writeError(w, http.StatusBadRequest, "at least one of area, category, sunset_spot_id is required")
		return
	}

	listing, err := h.deps.ResolveTarget(r.Context(), criteria)
	if err != nil {
		writeError(w, http.StatusInternalServerError, Wrap(op, err).Error())
		return
	}
	if listing == nil {
		writeJSON(w, http.StatusOK, targetResponse{Matched: false})
		return
	}
	writeJSON(w, http.StatusOK, targetResponse{
		Matched: true,
		Listing: &targetListing{
			ID:       listing.ID,
			Name:     listing.Name,
			Tier:     string(listing.Tier),
			Area:     listing.Area,
			Category: listing.Category,
		},
	})
}
