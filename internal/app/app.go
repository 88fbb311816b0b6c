// Package app holds the assembled service: the HTTP server, the webhook
// worker pool and the collaborators the CLI reuses.
package app

import (
	"log/slog"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/jobs"
	"github.com/sevigo/review-warden/internal/server"
	"github.com/sevigo/review-warden/internal/storage"
)

// App holds the main application components.
type App struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Store    storage.Store
	Reviewer *jobs.ReviewService

	// VectorStore is nil unless coding standards are enabled.
	VectorStore storage.VectorStore
	// Dispatcher is nil unless a GitHub App is configured.
	Dispatcher *jobs.Dispatcher

	server *server.Server
}

// NewApp assembles the application.
func NewApp(
	cfg *config.Config,
	store storage.Store,
	vectorStore storage.VectorStore,
	reviewer *jobs.ReviewService,
	dispatcher *jobs.Dispatcher,
	srv *server.Server,
	logger *slog.Logger,
) *App {
	return &App{
		Cfg:         cfg,
		Logger:      logger,
		Store:       store,
		Reviewer:    reviewer,
		VectorStore: vectorStore,
		Dispatcher:  dispatcher,
		server:      srv,
	}
}

// Start runs the HTTP server and blocks until it stops.
func (a *App) Start() error {
	a.Logger.Info("starting Review Warden",
		"server_port", a.Cfg.Server.Port,
		"webhooks", a.Dispatcher != nil,
		"standards", a.VectorStore != nil,
		"database", a.Cfg.Database.Enabled,
	)

	if err := a.server.Start(); err != nil {
		a.Logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the server first, then lets queued reviews finish.
func (a *App) Stop() error {
	a.Logger.Info("shutting down Review Warden services")

	serverErr := a.server.Stop()
	if serverErr != nil {
		a.Logger.Error("error during HTTP server shutdown", "error", serverErr)
	}

	if a.Dispatcher != nil {
		a.Dispatcher.Stop()
	}

	if serverErr != nil {
		return serverErr
	}
	a.Logger.Info("Review Warden stopped")
	return nil
}
