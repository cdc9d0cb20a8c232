package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"

	"github.com/gitmaxhq/gitmax/internal/auth"
	"github.com/gitmaxhq/gitmax/internal/domain/entities"
	"github.com/gitmaxhq/gitmax/internal/domain/services"
)

// AnalyzeRepositories analyzes the user's recent repositories
func (h *Handler) AnalyzeRepositories(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	analyses, err := h.analysisSvc.AnalyzeRepositories(r.Context(), user)
	if err != nil {
		h.writeAnalysisError(w, user, err)
		return
	}

	h.writeJSON(w, http.StatusOK, analyses)
}

// AnalyzeRepository analyzes a single repository by name
func (h *Handler) AnalyzeRepository(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	repoName := mux.Vars(r)["name"]
	analysis, err := h.analysisSvc.AnalyzeRepository(r.Context(), user, repoName)
	if err != nil {
		if errors.Is(err, services.ErrRepositoryNotFound) {
			h.writeError(w, http.StatusNotFound, fmt.Sprintf("repository %q not found", repoName))
			return
		}
		h.writeAnalysisError(w, user, err)
		return
	}

	h.writeJSON(w, http.StatusOK, analysis)
}

// ProfileScoring scores the user's profile for the requested job role
func (h *Handler) ProfileScoring(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	jobRole := r.URL.Query().Get("job_role")
	if jobRole == "" {
		h.writeError(w, http.StatusBadRequest, "job_role query parameter is required")
		return
	}

	score, err := h.scoringSvc.ScoreProfile(r.Context(), user, jobRole)
	if err != nil {
		h.writeAnalysisError(w, user, err)
		return
	}

	h.writeJSON(w, http.StatusOK, score)
}

// Recommendations returns improvement suggestions for the requested job role.
// With format=html the recommendation list is rendered to sanitized HTML.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	jobRole := r.URL.Query().Get("job_role")
	if jobRole == "" {
		h.writeError(w, http.StatusBadRequest, "job_role query parameter is required")
		return
	}

	recs, err := h.scoringSvc.Recommendations(r.Context(), user, jobRole)
	if err != nil {
		h.writeAnalysisError(w, user, err)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(renderRecommendationsHTML(recs))
		return
	}

	h.writeJSON(w, http.StatusOK, recs)
}

// writeAnalysisError maps analysis failures onto API errors
func (h *Handler) writeAnalysisError(w http.ResponseWriter, user *entities.User, err error) {
	if errors.Is(err, services.ErrNoProviderToken) {
		h.writeError(w, http.StatusConflict, "no GitHub token on file; log in again to reconnect")
		return
	}
	h.log.Error("analysis failed",
		slog.String("user_id", user.ID),
		slog.String("error", err.Error()))
	h.writeError(w, http.StatusBadGateway, "failed to analyze repositories")
}

// renderRecommendationsHTML renders recommendations as a markdown list and
// converts it to sanitized HTML.
func renderRecommendationsHTML(recs []entities.Recommendation) []byte {
	var md strings.Builder
	md.WriteString("## Recommendations\n\n")
	for _, rec := range recs {
		fmt.Fprintf(&md, "%d. **%s** %s\n", rec.ID, rec.Category, rec.Text)
	}

	unsafe := blackfriday.Run([]byte(md.String()))
	return bluemonday.UGCPolicy().SanitizeBytes(unsafe)
}
