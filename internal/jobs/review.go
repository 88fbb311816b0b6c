package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/github"
	"github.com/sevigo/review-warden/internal/gitutil"
	"github.com/sevigo/review-warden/internal/publish"
)

// InstallationClientFactory builds a GitHub client for an App installation.
type InstallationClientFactory func(ctx context.Context, installationID int64) (github.Client, error)

// ReviewJob reviews the pull request of a webhook event with an installation
// client and reports progress through a check run.
type ReviewJob struct {
	service   *ReviewService
	newClient InstallationClientFactory
	logger    *slog.Logger
}

// NewReviewJob creates the webhook review job.
func NewReviewJob(cfg *config.Config, service *ReviewService, logger *slog.Logger) *ReviewJob {
	return &ReviewJob{
		service: service,
		newClient: func(ctx context.Context, installationID int64) (github.Client, error) {
			return github.CreateInstallationClient(ctx, cfg.GitHub, installationID, logger)
		},
		logger: logger,
	}
}

// WithClientFactory replaces the installation client constructor.
func (j *ReviewJob) WithClientFactory(f InstallationClientFactory) *ReviewJob {
	j.newClient = f
	return j
}

var _ core.Job = (*ReviewJob)(nil)

// Run reviews the event's pull request.
func (j *ReviewJob) Run(ctx context.Context, event *core.GitHubEvent) error {
	if err := validateEvent(event); err != nil {
		return fmt.Errorf("input validation failed: %w", err)
	}
	log := j.logger.With("repo", event.RepoFullName, "pr", event.PRNumber)
	log.Info("starting review job", "requested_by", event.Commenter)

	client, err := j.newClient(ctx, event.InstallationID)
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	pr, err := client.GetPullRequest(ctx, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		return fmt.Errorf("failed to get PR details: %w", err)
	}
	if pr.HeadSHA == "" {
		return fmt.Errorf("PR %d has no head SHA", event.PRNumber)
	}

	status := github.NewStatusUpdater(client)
	checkRunID, err := status.InProgress(ctx, event.RepoOwner, event.RepoName, pr.HeadSHA,
		"Review in progress", fmt.Sprintf("Review requested by @%s.", event.Commenter))
	if err != nil {
		// Without checks:write the review itself can still be posted.
		log.Warn("failed to create check run", "error", err)
	}

	ref := gitutil.PullRequestRef{Owner: event.RepoOwner, Repo: event.RepoName, Number: event.PRNumber}
	resp := j.service.Run(ctx, client, ref, RunOptions{PR: pr})

	if checkRunID != 0 {
		conclusion, title := checkConclusion(resp)
		if err := status.Completed(ctx, event.RepoOwner, event.RepoName, checkRunID, conclusion, title, resp.Message); err != nil {
			log.Error("failed to complete check run", "error", err)
		}
	}

	if !resp.Success {
		return fmt.Errorf("review of %s#%d failed: %s", event.RepoFullName, event.PRNumber, resp.Message)
	}
	log.Info("review job completed", "outcome", resp.Outcome)
	return nil
}

func checkConclusion(resp *ReviewResponse) (conclusion, title string) {
	switch {
	case !resp.Success:
		return "failure", "Review failed"
	case resp.Outcome == publish.OutcomeReviewWithComments:
		return "success", "Review complete"
	default:
		return "neutral", "Review posted with degradations"
	}
}

func validateEvent(event *core.GitHubEvent) error {
	switch {
	case event == nil:
		return fmt.Errorf("event cannot be nil")
	case event.RepoOwner == "":
		return fmt.Errorf("repository owner cannot be empty")
	case event.RepoName == "":
		return fmt.Errorf("repository name cannot be empty")
	case event.PRNumber <= 0:
		return fmt.Errorf("pull request number must be positive, got: %d", event.PRNumber)
	case event.InstallationID <= 0:
		return fmt.Errorf("installation ID must be positive, got: %d", event.InstallationID)
	}
	return nil
}
