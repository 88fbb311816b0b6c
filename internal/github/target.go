package github

import (
	"context"

	"github.com/sevigo/review-warden/internal/publish"
)

// ReviewTarget binds a Client to one pull request and implements
// publish.ReviewAPI.
type ReviewTarget struct {
	client Client
	owner  string
	repo   string
	number int
}

var _ publish.ReviewAPI = (*ReviewTarget)(nil)

// NewReviewTarget returns a publish.ReviewAPI for owner/repo#number.
func NewReviewTarget(client Client, owner, repo string, number int) *ReviewTarget {
	return &ReviewTarget{client: client, owner: owner, repo: repo, number: number}
}

func (t *ReviewTarget) CreateReview(ctx context.Context, sub publish.Submission) (int64, error) {
	req := ReviewRequest{
		CommitID: sub.CommitID,
		Body:     sub.Body,
		Event:    string(sub.Verdict),
	}
	for _, c := range sub.Comments {
		req.Comments = append(req.Comments, draftComment(c))
	}
	id, err := t.client.CreateReview(ctx, t.owner, t.repo, t.number, req)
	return id, toAPIError(err)
}

func (t *ReviewTarget) CreateSingleComment(ctx context.Context, commitID string, c publish.Comment) (int64, error) {
	id, err := t.client.CreateReviewComment(ctx, t.owner, t.repo, t.number, commitID, draftComment(c))
	return id, toAPIError(err)
}

func (t *ReviewTarget) CreateThreadComment(ctx context.Context, body string) (int64, error) {
	id, err := t.client.CreateIssueComment(ctx, t.owner, t.repo, t.number, body)
	return id, toAPIError(err)
}

func draftComment(c publish.Comment) DraftReviewComment {
	return DraftReviewComment{
		Path:      c.Path,
		Line:      c.Line,
		StartLine: c.StartLine,
		Side:      string(c.Side),
		Body:      c.Body,
	}
}
