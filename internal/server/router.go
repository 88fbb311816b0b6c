package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/server/handler"
	"github.com/sevigo/review-warden/internal/storage"
)

// ReviewTimeout bounds a synchronous review request.
const ReviewTimeout = 10 * time.Minute

// Deps are the collaborators the HTTP surface calls into.
type Deps struct {
	Reviewer handler.Reviewer
	// Dispatcher is nil when no GitHub App is configured.
	Dispatcher core.JobDispatcher
	Store      storage.Store
}

// NewRouter creates the router with its middleware and API routes.
func NewRouter(cfg *config.Config, deps Deps, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	info := handler.NewInfoHandler(logger)
	r.Get("/", info.Root)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", info.Health)

		r.With(middleware.Timeout(ReviewTimeout)).
			Post("/review", handler.NewReviewHandler(deps.Reviewer, logger).Handle)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			history := handler.NewHistoryHandler(deps.Store, logger)
			r.Get("/reviews/{owner}/{repo}/{number}", history.Latest)

			if cfg.GitHub.AppEnabled() && deps.Dispatcher != nil {
				webhook := handler.NewWebhookHandler(cfg.GitHub.WebhookSecret, deps.Dispatcher, logger)
				r.Post("/webhook/github", webhook.Handle)
			}
		})
	})

	return r
}
