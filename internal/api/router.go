package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/sungwon/chirper/internal/auth"
	"github.com/sungwon/chirper/internal/msgstore"
	"github.com/sungwon/chirper/internal/queue"
	"github.com/sungwon/chirper/internal/storage"
)

// Deps are the collaborators the router wires into handlers.
// DLQ and Archive are optional; their routes are skipped when nil.
// Admins lists the emails allowed to reprocess dead letters.
type Deps struct {
	Queries storage.Querier
	Chirps  ChirpService
	JWT     *auth.JWTService
	Limiter *auth.LoginLimiter
	DLQ     queue.DeadLetterQueue
	Archive msgstore.Store
	Ready   map[string]Pinger
	Admins  []string
}

// NewRouter creates a chi.Mux with all routes, middleware, and handlers configured.
func NewRouter(deps Deps, log zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CorrelationIDMiddleware)
	r.Use(LoggingMiddleware(log))
	r.Use(RecoverMiddleware(log))

	// Operational endpoints (no auth required)
	r.Get("/healthz", HealthzHandler())
	r.Get("/readyz", ReadyzHandler(deps.Ready))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", RegisterHandler(deps.Queries, deps.JWT))
		r.Post("/auth/login", LoginHandler(deps.Queries, deps.JWT, deps.Limiter))

		r.Group(func(r chi.Router) {
			r.Use(auth.BearerAuth(deps.JWT))

			r.Get("/me", MeHandler(deps.Queries))

			r.Post("/chirps", CreateChirpHandler(deps.Chirps))
			r.Get("/chirps", ListChirpsHandler(deps.Chirps))
			r.Put("/chirps/{id}", UpdateChirpHandler(deps.Chirps))
			r.Delete("/chirps/{id}", DeleteChirpHandler(deps.Chirps))

			if deps.Archive != nil {
				r.Get("/chirps/{id}/notification", NotificationRawHandler(deps.Archive))
			}
			if deps.DLQ != nil {
				r.With(auth.RequireAdmin(deps.Admins)).Post("/dlq/reprocess", DLQReprocessHandler(deps.DLQ))
			}
		})
	})

	return r
}
