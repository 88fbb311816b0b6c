package github

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v73/github"
)

// CheckRunName is the name of the check run created for webhook reviews.
const CheckRunName = "Review Warden"

// StatusUpdater reports review progress through a GitHub check run.
type StatusUpdater interface {
	InProgress(ctx context.Context, owner, repo, headSHA, title, summary string) (int64, error)
	Completed(ctx context.Context, owner, repo string, checkRunID int64, conclusion, title, summary string) error
}

type statusUpdater struct {
	client Client
}

func NewStatusUpdater(client Client) StatusUpdater {
	return &statusUpdater{client: client}
}

// InProgress creates a check run in the in_progress state.
func (s *statusUpdater) InProgress(ctx context.Context, owner, repo, headSHA, title, summary string) (int64, error) {
	checkRun, err := s.client.CreateCheckRun(ctx, owner, repo, github.CreateCheckRunOptions{
		Name:    CheckRunName,
		HeadSHA: headSHA,
		Status:  github.Ptr("in_progress"),
		Output: &github.CheckRunOutput{
			Title:   github.Ptr(title),
			Summary: github.Ptr(summary),
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create check run: %w", err)
	}
	return checkRun.GetID(), nil
}

// Completed moves a check run to completed with the given conclusion.
func (s *statusUpdater) Completed(ctx context.Context, owner, repo string, checkRunID int64, conclusion, title, summary string) error {
	_, err := s.client.UpdateCheckRun(ctx, owner, repo, checkRunID, github.UpdateCheckRunOptions{
		Name:        CheckRunName,
		Status:      github.Ptr("completed"),
		Conclusion:  github.Ptr(conclusion),
		CompletedAt: &github.Timestamp{Time: time.Now()},
		Output: &github.CheckRunOutput{
			Title:   github.Ptr(title),
			Summary: github.Ptr(summary),
		},
	})
	return err
}
