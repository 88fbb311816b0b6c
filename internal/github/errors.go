package github

import (
	"errors"
	"strings"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/review-warden/internal/publish"
)

// toAPIError converts a go-github error response into a *publish.APIError
// whose text carries the top-level message and every nested error message.
// Other errors are returned unchanged.
func toAPIError(err error) error {
	if err == nil {
		return nil
	}
	var ghErr *github.ErrorResponse
	if !errors.As(err, &ghErr) || ghErr.Response == nil {
		return err
	}

	parts := []string{ghErr.Message}
	for _, e := range ghErr.Errors {
		if e.Message != "" {
			parts = append(parts, e.Message)
		}
	}
	return &publish.APIError{
		Status: ghErr.Response.StatusCode,
		Text:   strings.Join(parts, "; "),
	}
}
