// Package httpapi exposes the service over HTTP: profile management,
// emergency call placement, the telephony provider's IVR and status
// webhooks, and the evacuation planning API, plus health, readiness,
// and metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/evac-response/internal/adapter/kafka"
	"github.com/couchcryptid/evac-response/internal/adapter/telephony"
	"github.com/couchcryptid/evac-response/internal/domain"
	"github.com/couchcryptid/evac-response/internal/evac"
	"github.com/couchcryptid/evac-response/internal/sos"
)

// CallCoordinator drives outbound emergency calls and their webhooks.
type CallCoordinator interface {
	PlaceCall(ctx context.Context, profileID, transcript string) (sos.PlacedCall, error)
	HandleConversation(ctx context.Context, callID string, input domain.OperatorInput) (string, error)
	HandleStatus(ctx context.Context, callID, status string) error
}

// EvacuationPlanner produces ranked, routed evacuation plans.
type EvacuationPlanner interface {
	Plan(ctx context.Context, req evac.Request) (evac.Plan, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes the service API.
type Server struct {
	httpServer  *http.Server
	coordinator CallCoordinator
	planner     EvacuationPlanner
	profiles    domain.ProfileStore
	readiness   Pinger
	publisher   *kafka.Publisher
	logger      *slog.Logger
}

// NewServer creates the API server and registers all routes.
func NewServer(addr string, coordinator CallCoordinator, planner EvacuationPlanner, profiles domain.ProfileStore, readiness Pinger, publisher *kafka.Publisher, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		coordinator: coordinator,
		planner:     planner,
		profiles:    profiles,
		readiness:   readiness,
		publisher:   publisher,
		logger:      logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/profiles", s.handleUpsertProfile)
	mux.HandleFunc("GET /api/profiles/{id}", s.handleGetProfile)
	mux.HandleFunc("POST /api/call", s.handlePlaceCall)
	mux.HandleFunc("POST /api/conversation", s.handleConversation)
	mux.HandleFunc("POST /api/call-status", s.handleCallStatus)
	mux.HandleFunc("POST /api/evacuation/routes", s.handleEvacuationRoutes)
	mux.HandleFunc("GET /api/shelters", s.handleShelters)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.readiness.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleUpsertProfile(w http.ResponseWriter, r *http.Request) {
	var profile domain.EmergencyProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(profile.ID) == "" {
		profile.ID = uuid.NewString()
	}

	if err := s.profiles.Upsert(r.Context(), profile); err != nil {
		s.logger.Error("profile upsert failed", "profile_id", profile.ID, "error", err)
		writeError(w, http.StatusServiceUnavailable, "profile store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"user_id": profile.ID})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.profiles.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		s.logger.Error("profile lookup failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "profile store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handlePlaceCall(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID     string `json:"user_id"`
		Transcript string `json:"transcript"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	placed, err := s.coordinator.PlaceCall(r.Context(), req.UserID, req.Transcript)
	if err != nil {
		s.writeCallError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, placed)
}

func (s *Server) writeCallError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, "profile not found")
	case errors.Is(err, sos.ErrTelephonyDisabled):
		writeError(w, http.StatusServiceUnavailable, "calling is not configured")
	default:
		var callErr *telephony.CallError
		if errors.As(err, &callErr) {
			status := http.StatusBadGateway
			switch callErr.Reason {
			case telephony.ReasonInvalidNumber, telephony.ReasonUnverifiedDestination:
				status = http.StatusBadRequest
			case telephony.ReasonRateLimited:
				status = http.StatusServiceUnavailable
			}
			writeJSON(w, status, map[string]string{
				"error": "call rejected",
				"hint":  callErr.Hint,
			})
			return
		}
		s.logger.Error("call placement failed", "error", err)
		writeError(w, http.StatusInternalServerError, "call placement failed")
	}
}

// handleConversation is the IVR webhook. The provider posts operator
// speech and DTMF as form fields; the reply is a TwiML document.
func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	callID := r.URL.Query().Get("call_id")
	if callID == "" {
		callID = r.FormValue("CallSid")
	}
	if callID == "" {
		writeError(w, http.StatusBadRequest, "missing call identifier")
		return
	}

	input := domain.OperatorInput{
		Utterance: r.FormValue("SpeechResult"),
		Digits:    r.FormValue("Digits"),
	}

	// Unknown call IDs are handled inside the coordinator with a spoken
	// generic reply; an error here means the context store itself is
	// down.
	twiml, err := s.coordinator.HandleConversation(r.Context(), callID, input)
	if err != nil {
		s.logger.Error("conversation webhook failed", "call_id", callID, "error", err)
		writeError(w, http.StatusInternalServerError, "conversation handling failed")
		return
	}
	writeXML(w, twiml)
}

func (s *Server) handleCallStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	callID := r.FormValue("CallSid")
	if callID == "" {
		writeError(w, http.StatusBadRequest, "missing CallSid")
		return
	}

	if err := s.coordinator.HandleStatus(r.Context(), callID, r.FormValue("CallStatus")); err != nil {
		s.logger.Error("status callback failed", "call_id", callID, "error", err)
		writeError(w, http.StatusInternalServerError, "status handling failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEvacuationRoutes(w http.ResponseWriter, r *http.Request) {
	var req evac.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	plan, err := s.planner.Plan(r.Context(), req)
	if err != nil {
		var geoErr *evac.GeocodeFailedError
		switch {
		case errors.Is(err, evac.ErrNoOrigin):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrAddressNotFound):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.As(err, &geoErr):
			s.logger.Warn("geocoding unavailable", "error", err)
			writeError(w, http.StatusBadGateway, geoErr.Error())
		default:
			s.logger.Error("evacuation planning failed", "error", err)
			writeError(w, http.StatusInternalServerError, "evacuation planning failed")
		}
		return
	}

	fallbacks := 0
	for _, route := range plan.Routes {
		if route.Fallback {
			fallbacks++
		}
	}
	s.publisher.Publish(r.Context(), kafka.Event{
		Type:       "routes_computed",
		RouteCount: len(plan.Routes),
		Fallbacks:  fallbacks,
		OccurredAt: time.Now().UTC(),
	})

	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleShelters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"shelters":    domain.CorpusChristiShelters,
		"flood_zones": domain.CorpusChristiFloodZones,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeXML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
