package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter registers the scoring and case-workflow routes. A nil limiter
// leaves the /v1 routes unthrottled; no CORS origins disables CORS handling.
func NewRouter(handler *Handler, limiter *RateLimiter, corsOrigins []string, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware(logger))
	r.Use(loggingMiddleware(logger))
	if len(corsOrigins) > 0 {
		r.Use(corsMiddleware(corsOrigins))
	}

	r.Get("/healthz", healthz)

	r.Route("/v1", func(r chi.Router) {
		if limiter != nil {
			r.Use(RateLimitMiddleware(limiter, logger))
		}
		r.Post("/score", handler.Score)
		r.Post("/recommend", handler.Recommend)
		r.Get("/applications/{id}", handler.GetApplication)
		r.Post("/applications/{id}/review", handler.Review)
		r.Post("/applications/{id}/advice", handler.Advice)
	})

	return r
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
