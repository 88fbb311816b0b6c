// Package github adapts the go-github client to the review pipeline.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/sevigo/review-warden/internal/core"
)

// DraftReviewComment is one inline comment of a review request.
type DraftReviewComment struct {
	Path      string
	Line      int
	StartLine int
	Side      string
	Body      string
}

// ReviewRequest creates a pull request review.
type ReviewRequest struct {
	CommitID string
	Body     string
	Event    string
	Comments []DraftReviewComment
}

// Client covers the GitHub operations the reviewer needs: reading a pull
// request and its files, and writing reviews, comments and check runs.
//
//go:generate mockgen -destination=../../mocks/mock_github_client.go -package=mocks . Client
type Client interface {
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*core.PullRequest, error)
	GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]core.ChangedFile, error)
	GetFileContent(ctx context.Context, owner, repo, path, ref string) (string, bool, error)
	CreateReview(ctx context.Context, owner, repo string, number int, req ReviewRequest) (int64, error)
	CreateReviewComment(ctx context.Context, owner, repo string, number int, commitID string, c DraftReviewComment) (int64, error)
	CreateIssueComment(ctx context.Context, owner, repo string, number int, body string) (int64, error)
	CreateCheckRun(ctx context.Context, owner, repo string, opts github.CreateCheckRunOptions) (*github.CheckRun, error)
	UpdateCheckRun(ctx context.Context, owner, repo string, checkRunID int64, opts github.UpdateCheckRunOptions) (*github.CheckRun, error)
}

type gitHubClient struct {
	client *github.Client
	logger *slog.Logger
}

// NewGitHubClient wraps an authenticated go-github client.
func NewGitHubClient(client *github.Client, logger *slog.Logger) Client {
	return &gitHubClient{client: client, logger: logger}
}

// NewPATClient creates a client authenticated with a personal access token.
func NewPATClient(ctx context.Context, token string, logger *slog.Logger) Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return NewGitHubClient(github.NewClient(oauth2.NewClient(ctx, ts)), logger)
}

// GetPullRequest retrieves the metadata of a single pull request.
func (g *gitHubClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*core.PullRequest, error) {
	pr, _, err := g.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		g.logger.Error("failed to get pull request", "owner", owner, "repo", repo, "pr", number, "error", err)
		return nil, err
	}
	return &core.PullRequest{
		Owner:   owner,
		Repo:    repo,
		Number:  number,
		Title:   pr.GetTitle(),
		Body:    pr.GetBody(),
		State:   pr.GetState(),
		HeadSHA: pr.GetHead().GetSHA(),
		BaseSHA: pr.GetBase().GetSHA(),
		HeadRef: pr.GetHead().GetRef(),
		BaseRef: pr.GetBase().GetRef(),
		Author:  pr.GetUser().GetLogin(),
		HTMLURL: pr.GetHTMLURL(),
	}, nil
}

// GetChangedFiles lists every file of a pull request, following pagination
// at 100 files per page.
func (g *gitHubClient) GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]core.ChangedFile, error) {
	var all []core.ChangedFile
	opts := &github.ListOptions{PerPage: 100}

	for {
		files, resp, err := g.client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			g.logger.Error("failed to list files for pull request", "owner", owner, "repo", repo, "pr", number, "error", err)
			return nil, err
		}

		for _, f := range files {
			all = append(all, core.ChangedFile{
				Filename:  f.GetFilename(),
				Status:    f.GetStatus(),
				Additions: f.GetAdditions(),
				Deletions: f.GetDeletions(),
				Changes:   f.GetChanges(),
				Patch:     f.GetPatch(),
				SHA:       f.GetSHA(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// GetFileContent returns the decoded content of path at ref. A missing file
// (or a directory) reports found=false without an error.
func (g *gitHubClient) GetFileContent(ctx context.Context, owner, repo, path, ref string) (string, bool, error) {
	file, _, _, err := g.client.Repositories.GetContents(ctx, owner, repo, path, &github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get contents of %s: %w", path, err)
	}
	if file == nil {
		return "", false, nil
	}

	content, err := file.GetContent()
	if err != nil {
		return "", false, fmt.Errorf("failed to decode contents of %s: %w", path, err)
	}
	return content, true, nil
}

// CreateReview submits a pull request review and returns its id.
func (g *gitHubClient) CreateReview(ctx context.Context, owner, repo string, number int, req ReviewRequest) (int64, error) {
	var comments []*github.DraftReviewComment
	for _, c := range req.Comments {
		dc := &github.DraftReviewComment{
			Path: github.Ptr(c.Path),
			Line: github.Ptr(c.Line),
			Side: github.Ptr(sideOrRight(c.Side)),
			Body: github.Ptr(c.Body),
		}
		if c.StartLine > 0 && c.StartLine < c.Line {
			dc.StartLine = github.Ptr(c.StartLine)
			dc.StartSide = github.Ptr(sideOrRight(c.Side))
		}
		comments = append(comments, dc)
	}

	review, _, err := g.client.PullRequests.CreateReview(ctx, owner, repo, number, &github.PullRequestReviewRequest{
		CommitID: github.Ptr(req.CommitID),
		Body:     github.Ptr(req.Body),
		Event:    github.Ptr(req.Event),
		Comments: comments,
	})
	if err != nil {
		g.logger.Error("failed to create pull request review",
			"owner", owner, "repo", repo, "pr", number, "event", req.Event, "comments", len(comments), "error", err)
		return 0, err
	}
	return review.GetID(), nil
}

// CreateReviewComment posts a single inline comment outside of a review.
func (g *gitHubClient) CreateReviewComment(ctx context.Context, owner, repo string, number int, commitID string, c DraftReviewComment) (int64, error) {
	comment := &github.PullRequestComment{
		CommitID: github.Ptr(commitID),
		Path:     github.Ptr(c.Path),
		Line:     github.Ptr(c.Line),
		Side:     github.Ptr(sideOrRight(c.Side)),
		Body:     github.Ptr(c.Body),
	}
	if c.StartLine > 0 && c.StartLine < c.Line {
		comment.StartLine = github.Ptr(c.StartLine)
		comment.StartSide = github.Ptr(sideOrRight(c.Side))
	}

	created, _, err := g.client.PullRequests.CreateComment(ctx, owner, repo, number, comment)
	if err != nil {
		g.logger.Error("failed to create review comment", "owner", owner, "repo", repo, "pr", number, "path", c.Path, "line", c.Line, "error", err)
		return 0, err
	}
	return created.GetID(), nil
}

// CreateIssueComment posts a comment on the pull request conversation.
func (g *gitHubClient) CreateIssueComment(ctx context.Context, owner, repo string, number int, body string) (int64, error) {
	created, _, err := g.client.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{Body: github.Ptr(body)})
	if err != nil {
		g.logger.Error("failed to create comment", "owner", owner, "repo", repo, "pr", number, "error", err)
		return 0, err
	}
	return created.GetID(), nil
}

// CreateCheckRun creates a new check run.
func (g *gitHubClient) CreateCheckRun(ctx context.Context, owner, repo string, opts github.CreateCheckRunOptions) (*github.CheckRun, error) {
	checkRun, _, err := g.client.Checks.CreateCheckRun(ctx, owner, repo, opts)
	if err != nil {
		g.logger.Error("failed to create check run", "owner", owner, "repo", repo, "error", err)
		return nil, err
	}
	return checkRun, nil
}

// UpdateCheckRun updates an existing check run.
func (g *gitHubClient) UpdateCheckRun(ctx context.Context, owner, repo string, checkRunID int64, opts github.UpdateCheckRunOptions) (*github.CheckRun, error) {
	checkRun, _, err := g.client.Checks.UpdateCheckRun(ctx, owner, repo, checkRunID, opts)
	if err != nil {
		g.logger.Error("failed to update check run", "owner", owner, "repo", repo, "checkRunID", checkRunID, "error", err)
	}
	return checkRun, err
}

func sideOrRight(side string) string {
	if side == "" {
		return "RIGHT"
	}
	return side
}
