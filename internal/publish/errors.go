package publish

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// selfReviewMarker is the fragment GitHub puts in a 422 body when the review
// author also authored the pull request.
const selfReviewMarker = "own pull request"

// APIError is a rejection reported by the review API.
type APIError struct {
	Status int
	Text   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("review API returned %d: %s", e.Status, e.Text)
}

// Rejection classifies a failed call to the review API.
type Rejection int

const (
	// RejectionUnknown covers every error that is not a 422, including
	// transport failures.
	RejectionUnknown Rejection = iota
	// RejectionSelfReview is a 422 caused by a non-neutral verdict on the
	// reviewer's own pull request.
	RejectionSelfReview
	// RejectionInvalidLine is any other 422, read as invalid inline comment data.
	RejectionInvalidLine
)

func (r Rejection) String() string {
	switch r {
	case RejectionSelfReview:
		return "self-review"
	case RejectionInvalidLine:
		return "invalid-line"
	default:
		return "unknown"
	}
}

// Classify maps an error from the review API to a Rejection.
func Classify(err error) Rejection {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnprocessableEntity {
		return RejectionUnknown
	}
	if strings.Contains(strings.ToLower(apiErr.Text), selfReviewMarker) {
		return RejectionSelfReview
	}
	return RejectionInvalidLine
}
