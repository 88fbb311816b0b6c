// Package gitutil parses GitHub pull request references and fetches
// repositories that hold review inputs.
package gitutil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidPullRequestURL is wrapped by every parse failure. Its text is
// part of the API contract: callers map messages containing "Invalid" to 400.
var ErrInvalidPullRequestURL = errors.New("Invalid GitHub PR URL format") //nolint:staticcheck // capitalized for API clients

// Trailing path segments such as /files or /commits/<sha> are accepted.
var prURLRegex = regexp.MustCompile(`^(?:https?://)?(?:www\.)?github\.com/([^/\s]+)/([^/\s]+)/pull/(\d+)(?:/[^?#]*)?(?:[?#].*)?$`)

// PullRequestRef identifies one pull request.
type PullRequestRef struct {
	Owner  string
	Repo   string
	Number int
}

// FullName returns "owner/repo".
func (r PullRequestRef) FullName() string { return r.Owner + "/" + r.Repo }

// URL renders the canonical https URL.
func (r PullRequestRef) URL() string {
	return fmt.Sprintf("https://github.com/%s/%s/pull/%d", r.Owner, r.Repo, r.Number)
}

// ParsePullRequestURL extracts owner, repository and number from a pull
// request URL such as https://github.com/{owner}/{repo}/pull/{number}.
func ParsePullRequestURL(url string) (PullRequestRef, error) {
	matches := prURLRegex.FindStringSubmatch(strings.TrimSpace(url))
	if len(matches) != 4 {
		return PullRequestRef{}, fmt.Errorf("%w: %s", ErrInvalidPullRequestURL, url)
	}

	number, err := strconv.Atoi(matches[3])
	if err != nil || number <= 0 {
		return PullRequestRef{}, fmt.Errorf("%w: invalid PR number %q", ErrInvalidPullRequestURL, matches[3])
	}

	return PullRequestRef{
		Owner:  matches[1],
		Repo:   strings.TrimSuffix(matches[2], ".git"),
		Number: number,
	}, nil
}
