// Package handlers implements the REST API surface of the server.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gitmaxhq/gitmax/internal/domain/repositories"
	"github.com/gitmaxhq/gitmax/internal/domain/services"
	"github.com/gitmaxhq/gitmax/server/internal/session"
)

// Handler holds dependencies for all API handlers
type Handler struct {
	authSvc     *services.AuthService
	analysisSvc *services.AnalysisService
	scoringSvc  *services.ScoringService
	sessions    *session.Manager
	health      repositories.HealthChecker
	log         *slog.Logger
}

// New creates a new handler with dependencies. The health checker may be nil;
// the health endpoint then reports liveness only.
func New(
	authSvc *services.AuthService,
	analysisSvc *services.AnalysisService,
	scoringSvc *services.ScoringService,
	sessions *session.Manager,
	health repositories.HealthChecker,
) *Handler {
	return &Handler{
		authSvc:     authSvc,
		analysisSvc: analysisSvc,
		scoringSvc:  scoringSvc,
		sessions:    sessions,
		health:      health,
		log:         slog.Default().With(slog.String("component", "handlers")),
	}
}

// writeJSON writes a JSON response with the given status
func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the {"detail": ...} shape
func (h *Handler) writeError(w http.ResponseWriter, status int, detail string) {
	h.writeJSON(w, status, map[string]string{"detail": detail})
}

// Health reports service health, including database reachability when a
// checker is wired in.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.HealthCheck(r.Context()); err != nil {
			h.log.Error("health check failed", slog.String("error", err.Error()))
			h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
