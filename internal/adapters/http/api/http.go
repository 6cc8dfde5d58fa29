// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	service "github.com/vallarta-sunsets/intake/internal/app"
	"github.com/vallarta-sunsets/intake/internal/domain/model"
	"github.com/vallarta-sunsets/intake/internal/domain/routing"
)

// validate checks request payloads against struct tags.
var validate = validator.New()

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// SubmitPublic runs a human form submission through the intake pipeline.
	SubmitPublic(ctx context.Context, sub service.PublicSubmission) (service.PublicResult, error)

	// SubmitAgent runs an automated submission through the intake pipeline.
	SubmitAgent(ctx context.Context, sub service.AgentSubmission) (service.AgentResult, error)

	// ResolveTarget answers a standalone target lookup. A nil listing means
	// no eligible match.
	ResolveTarget(ctx context.Context, criteria routing.Criteria) (*model.Listing, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	bookingHandler *BookingHandler
	agentHandler   *AgentHandler
	targetHandler  *TargetHandler
}

// NewServer creates a new API server with all handlers. agentSecret may be
// empty, in which case agent endpoints accept unauthenticated callers.
func NewServer(deps Dependencies, statsProvider StatsProvider, agentSecret string) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		bookingHandler: NewBookingHandler(deps),
		agentHandler:   NewAgentHandler(deps, agentSecret),
		targetHandler:  NewTargetHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/bookings", MetricsMiddleware(s.bookingHandler.HandlePostBooking, "bookings"))
	mux.HandleFunc("/agent/bookings", MetricsMiddleware(s.agentHandler.HandlePostBooking, "agent_bookings"))
	mux.HandleFunc("/agent/target", MetricsMiddleware(s.targetHandler.HandleGetTarget, "agent_target"))
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// clientIP extracts the submitting origin's address. The first entry of
// X-Forwarded-For wins when a proxy sits in front; otherwise the socket
// peer address is used.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
