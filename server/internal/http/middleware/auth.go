package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gitmaxhq/gitmax/internal/auth"
	"github.com/gitmaxhq/gitmax/internal/domain/services"
)

// AuthMiddleware validates bearer tokens and loads the user into the request
// context
type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	authSvc    *services.AuthService
	log        *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, authSvc *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		authSvc:    authSvc,
		log:        slog.Default().With(slog.String("component", "auth_middleware")),
	}
}

// RequireAuth ensures the request carries a valid access token and resolves
// it to an active user. Expired tokens get a 401 so clients know to refresh.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			unauthorized(w, "not authenticated")
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			if err == auth.ErrExpiredToken {
				unauthorized(w, "token expired")
				return
			}
			m.log.Debug("token validation failed", slog.String("error", err.Error()))
			unauthorized(w, "invalid token")
			return
		}

		user, err := m.authSvc.CurrentUser(r.Context(), claims.GitHubID)
		if err != nil {
			// A disabled account holds a valid token; refreshing won't help.
			if services.IsUserInactive(err) {
				writeDetail(w, http.StatusForbidden, "account disabled")
				return
			}
			unauthorized(w, "invalid token")
			return
		}

		ctx := auth.SetUserInContext(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from the Authorization header
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

func unauthorized(w http.ResponseWriter, detail string) {
	writeDetail(w, http.StatusUnauthorized, detail)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
