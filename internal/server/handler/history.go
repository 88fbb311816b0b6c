package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sevigo/review-warden/internal/storage"
)

// HistoryHandler serves persisted review outcomes.
type HistoryHandler struct {
	store  storage.Store
	logger *slog.Logger
}

func NewHistoryHandler(store storage.Store, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{store: store, logger: logger}
}

// Latest serves GET /api/v1/reviews/{owner}/{repo}/{number}.
func (h *HistoryHandler) Latest(w http.ResponseWriter, r *http.Request) {
	owner, repo := chi.URLParam(r, "owner"), chi.URLParam(r, "repo")
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid pull request number", h.logger)
		return
	}

	rec, err := h.store.GetLatestReviewForPR(r.Context(), owner+"/"+repo, number)
	if errors.Is(err, storage.ErrReviewNotFound) {
		writeError(w, http.StatusNotFound, err.Error(), h.logger)
		return
	}
	if err != nil {
		h.logger.Error("failed to load review", "repo", owner+"/"+repo, "pr", number, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load review", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, rec, h.logger)
}
