package gitutil

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Client clones repositories with go-git.
type Client struct {
	logger *slog.Logger
}

func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{logger: logger}
}

// CloneOptions select what ShallowClone fetches.
type CloneOptions struct {
	// Ref is a branch or tag name; empty means the default branch.
	Ref   string
	Token string
}

// ShallowClone fetches a single commit of repoURL into path and returns its
// SHA.
func (c *Client) ShallowClone(ctx context.Context, repoURL, path string, opts CloneOptions) (string, error) {
	c.logger.InfoContext(ctx, "cloning repository", "url", repoURL, "ref", opts.Ref, "path", path)

	repo, err := git.PlainCloneContext(ctx, path, false, &git.CloneOptions{
		URL:           repoURL,
		Auth:          authFor(opts.Token),
		Depth:         1,
		SingleBranch:  true,
		ReferenceName: referenceName(opts.Ref),
		Tags:          git.NoTags,
	})
	if err != nil {
		return "", fmt.Errorf("failed to clone %s: %w", repoURL, err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD of %s: %w", repoURL, err)
	}
	return head.Hash().String(), nil
}

// authFor uses the token as the password of a basic-auth pair, which GitHub
// accepts for both PATs and installation tokens.
func authFor(token string) transport.AuthMethod {
	if token == "" {
		return nil
	}
	return &githttp.BasicAuth{Username: "x-access-token", Password: token}
}

func referenceName(ref string) plumbing.ReferenceName {
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "refs/"):
		return plumbing.ReferenceName(ref)
	default:
		return plumbing.NewBranchReferenceName(ref)
	}
}
