package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"quickpick/internal/service"
	"quickpick/internal/transport/rest/handler"
)

// Container holds all dependencies for the router
type Container struct {
	QuickPickService *service.QuickPickService
	SessionService   *service.SessionService
	Logger           *zap.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	quickpickHandler := handler.NewQuickPickHandler(c.QuickPickService, c.Logger)
	sessionHandler := handler.NewSessionHandler(c.SessionService, c.Logger)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// Health check
	r.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Stateless envelopes: the caller carries its own answers and scores
	r.HandleFunc("/api/next", quickpickHandler.Next).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/plan", quickpickHandler.Plan).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/result", quickpickHandler.Result).Methods("POST", "OPTIONS")

	// Server-side sessions over a precomputed plan
	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/sessions", sessionHandler.Start).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/answers", sessionHandler.Answer).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/result", sessionHandler.Result).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{id}", sessionHandler.Delete).Methods("DELETE", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
