package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sevigo/review-warden/internal/jobs"
)

// maxReviewRequestBytes bounds the review request body.
const maxReviewRequestBytes = 64 << 10

// Reviewer runs a synchronous review.
type Reviewer interface {
	Review(ctx context.Context, req jobs.ReviewRequest) *jobs.ReviewResponse
}

// ReviewHandler serves POST /api/v1/review.
type ReviewHandler struct {
	reviewer Reviewer
	logger   *slog.Logger
}

func NewReviewHandler(reviewer Reviewer, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{reviewer: reviewer, logger: logger}
}

// failedReview keeps the full response next to the error detail so a client
// still gets the analysis when publishing failed.
type failedReview struct {
	*jobs.ReviewResponse
	Detail string `json:"detail"`
}

// Handle reviews the pull request named in the body. Failures answer 400 when
// the request itself was invalid and 500 otherwise.
func (h *ReviewHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req jobs.ReviewRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReviewRequestBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error(), h.logger)
		return
	}
	if strings.TrimSpace(req.PRURL) == "" {
		writeError(w, http.StatusBadRequest, "Invalid request: pr_url is required", h.logger)
		return
	}

	resp := h.reviewer.Review(r.Context(), req)
	if resp.Success {
		writeJSON(w, http.StatusOK, resp, h.logger)
		return
	}

	status := http.StatusInternalServerError
	if strings.Contains(resp.Message, "Invalid") {
		status = http.StatusBadRequest
	}
	h.logger.Warn("review request failed", "pr_url", req.PRURL, "status", status, "message", resp.Message)
	writeJSON(w, status, failedReview{ReviewResponse: resp, Detail: resp.Message}, h.logger)
}
