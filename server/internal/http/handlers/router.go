package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gitmaxhq/gitmax/server/internal/http/middleware"
)

// NewRouter builds the API router. Auth endpoints are public; everything
// under /api besides them requires a valid access token.
func NewRouter(h *Handler, authMw *middleware.AuthMiddleware, corsOrigins []string) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.LogRequest)

	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	// Public auth endpoints.
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodGet)
	api.HandleFunc("/auth/callback", h.Callback).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", h.Refresh).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)

	// Authenticated endpoints.
	authed := api.NewRoute().Subrouter()
	authed.Use(authMw.RequireAuth)
	authed.HandleFunc("/auth/me", h.Me).Methods(http.MethodGet)
	authed.HandleFunc("/profile", h.GetProfile).Methods(http.MethodGet)
	authed.HandleFunc("/profile", h.UpdateProfile).Methods(http.MethodPut)
	authed.HandleFunc("/analysis/repositories", h.AnalyzeRepositories).Methods(http.MethodGet)
	authed.HandleFunc("/analysis/repository/{name}", h.AnalyzeRepository).Methods(http.MethodGet)
	authed.HandleFunc("/analysis/profile-scoring", h.ProfileScoring).Methods(http.MethodGet)
	authed.HandleFunc("/analysis/recommendations", h.Recommendations).Methods(http.MethodGet)

	return corsMiddleware(corsOrigins)(router)
}

// corsMiddleware allows the configured frontend origins to call the API
func corsMiddleware(origins []string) mux.MiddlewareFunc {
	allowed := make(map[string]bool, len(origins))
	for _, origin := range origins {
		allowed[origin] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowed[origin] || allowed["*"]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
