package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gitmaxhq/gitmax/internal/auth"
	"github.com/gitmaxhq/gitmax/internal/domain/entities"
)

// GetProfile returns the authenticated user's profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

// UpdateProfile applies a partial update to the authenticated user's profile.
// Absent fields are left unchanged.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var update entities.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.authSvc.UpdateProfile(r.Context(), user.GitHubID, update)
	if err != nil {
		h.log.Error("profile update failed",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()))
		h.writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	h.writeJSON(w, http.StatusOK, updated)
}
