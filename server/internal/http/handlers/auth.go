package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gitmaxhq/gitmax/internal/auth"
	"github.com/gitmaxhq/gitmax/internal/domain/entities"
	"github.com/gitmaxhq/gitmax/internal/domain/services"
)

// loginResponse carries the GitHub authorization URL for the client to open
type loginResponse struct {
	URL string `json:"url"`
}

// callbackRequest is the body of the OAuth callback completion
type callbackRequest struct {
	Code string `json:"code"`
}

// tokenResponse carries a freshly issued access token. The refresh token
// travels only in the httponly cookie, never in the body.
type tokenResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresAt   time.Time      `json:"expires_at"`
	User        *entities.User `json:"user,omitempty"`
}

// Login returns the GitHub authorization URL to start the OAuth flow
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	url, err := h.authSvc.LoginURL(r.Context())
	if err != nil {
		h.log.Error("failed to build login url", slog.String("error", err.Error()))
		h.writeError(w, http.StatusInternalServerError, "failed to start login")
		return
	}
	h.writeJSON(w, http.StatusOK, loginResponse{URL: url})
}

// Callback completes the OAuth flow. On success it returns an access token
// and sets the refresh cookie.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	var req callbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authSvc.HandleCallback(r.Context(), req.Code)
	if err != nil {
		if errors.Is(err, services.ErrCallbackFailed) {
			h.writeError(w, http.StatusUnauthorized, "Failed to get access token from GitHub")
			return
		}
		h.log.Error("callback failed", slog.String("error", err.Error()))
		h.writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	if err := h.sessions.SetRefreshToken(r, w, result.RefreshToken); err != nil {
		h.log.Error("failed to set refresh cookie", slog.String("error", err.Error()))
		h.writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	h.writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   "bearer",
		ExpiresAt:   result.ExpiresAt,
		User:        result.User,
	})
}

// Refresh exchanges the refresh cookie for a new access token. The cookie is
// rotated on every successful refresh.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, err := h.sessions.RefreshToken(r)
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "no refresh token")
		return
	}

	result, err := h.authSvc.Refresh(r.Context(), refreshToken)
	if err != nil {
		// A dead refresh token means the session is over; clear the cookie
		// so the client stops retrying.
		h.sessions.Clear(r, w)
		if errors.Is(err, services.ErrRefreshTokenExpired) {
			h.writeError(w, http.StatusUnauthorized, "session expired")
			return
		}
		if errors.Is(err, services.ErrInvalidRefreshToken) {
			h.writeError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		h.log.Error("refresh failed", slog.String("error", err.Error()))
		h.writeError(w, http.StatusInternalServerError, "refresh failed")
		return
	}

	if err := h.sessions.SetRefreshToken(r, w, result.RefreshToken); err != nil {
		h.log.Error("failed to rotate refresh cookie", slog.String("error", err.Error()))
		h.writeError(w, http.StatusInternalServerError, "refresh failed")
		return
	}

	h.writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   "bearer",
		ExpiresAt:   result.ExpiresAt,
	})
}

// Logout revokes the refresh token and clears the cookie. It always responds
// with success; a client must be able to log out even with a broken session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if refreshToken, err := h.sessions.RefreshToken(r); err == nil {
		if err := h.authSvc.Logout(r.Context(), refreshToken); err != nil {
			h.log.Warn("failed to revoke refresh token", slog.String("error", err.Error()))
		}
	}

	h.sessions.Clear(r, w)
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}

// Me returns the authenticated user
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}
