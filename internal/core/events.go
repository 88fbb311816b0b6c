// Package core holds the data structures shared by the review pipeline, the
// publisher and the HTTP surface.
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-github/v73/github"
)

// ReviewCommand is the issue comment that triggers a webhook review.
const ReviewCommand = "/review"

var (
	ErrNotPullRequest   = errors.New("comment is not on a pull request")
	ErrNotReviewCommand = errors.New("comment is not a review command")
)

// GitHubEvent is the part of a webhook delivery a review job needs.
type GitHubEvent struct {
	RepoOwner    string
	RepoName     string
	RepoFullName string

	PRNumber int
	PRTitle  string
	PRBody   string
	PRURL    string

	Commenter      string
	InstallationID int64
}

// EventFromIssueComment validates an issue comment delivery and keeps it only
// when it is a review command on a pull request.
func EventFromIssueComment(event *github.IssueCommentEvent) (*GitHubEvent, error) {
	if !event.GetIssue().IsPullRequest() {
		return nil, ErrNotPullRequest
	}
	if !strings.EqualFold(strings.TrimSpace(event.GetComment().GetBody()), ReviewCommand) {
		return nil, ErrNotReviewCommand
	}

	repo := event.GetRepo()
	owner := repo.GetOwner().GetLogin()
	if owner == "" || repo.GetName() == "" {
		return nil, fmt.Errorf("repository or owner information is missing from the event")
	}

	number := event.GetIssue().GetNumber()
	if number <= 0 {
		return nil, fmt.Errorf("invalid pull request number: %d", number)
	}

	commenter := event.GetComment().GetUser().GetLogin()
	if commenter == "" {
		return nil, fmt.Errorf("commenter information is missing from the event")
	}

	installationID := event.GetInstallation().GetID()
	if installationID == 0 {
		return nil, fmt.Errorf("installation ID is missing from the event")
	}

	fullName := repo.GetFullName()
	if fullName == "" {
		fullName = owner + "/" + repo.GetName()
	}

	return &GitHubEvent{
		RepoOwner:      owner,
		RepoName:       repo.GetName(),
		RepoFullName:   fullName,
		PRNumber:       number,
		PRTitle:        event.GetIssue().GetTitle(),
		PRBody:         event.GetIssue().GetBody(),
		PRURL:          fmt.Sprintf("https://github.com/%s/pull/%d", fullName, number),
		Commenter:      commenter,
		InstallationID: installationID,
	}, nil
}
