package handler

import (
	"log/slog"
	"net/http"
)

// ServiceName identifies the service in info and health responses.
const ServiceName = "review-warden"

// Version is overridden at build time with -ldflags "-X ...handler.Version=...".
var Version = "dev"

// InfoHandler serves the root and health endpoints.
type InfoHandler struct {
	logger *slog.Logger
}

func NewInfoHandler(logger *slog.Logger) *InfoHandler {
	return &InfoHandler{logger: logger}
}

// Root describes the service.
func (h *InfoHandler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": ServiceName,
		"version": Version,
		"health":  "/api/v1/health",
		"review":  "/api/v1/review",
	}, h.logger)
}

// Health reports liveness.
func (h *InfoHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": ServiceName,
	}, h.logger)
}
