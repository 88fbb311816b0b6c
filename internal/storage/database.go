package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sevigo/review-warden/internal/core"
)

// ErrReviewNotFound is returned when a pull request has no recorded review.
var ErrReviewNotFound = errors.New("review not found")

// Store persists review attempts.
type Store interface {
	SaveReview(ctx context.Context, review *core.ReviewRecord) error
	GetLatestReviewForPR(ctx context.Context, repoFullName string, prNumber int) (*core.ReviewRecord, error)
	ListRecentReviews(ctx context.Context, repoFullName string, limit int) ([]*core.ReviewRecord, error)
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore returns a Postgres-backed Store.
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

// reviewRow mirrors the reviews table; errors is a text[] column.
type reviewRow struct {
	core.ReviewRecord
	ErrorList pq.StringArray `db:"errors"`
}

const reviewColumns = `id, repo_full_name, pr_number, head_sha, outcome, github_review_id, verdict,
	inline_comments, overflow_posted, dropped_comments, errors, body, created_at`

// SaveReview inserts review, assigning an id and timestamp when missing.
func (s *postgresStore) SaveReview(ctx context.Context, review *core.ReviewRecord) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}

	errs := review.Errors
	if errs == nil {
		errs = []string{}
	}

	query := `INSERT INTO reviews (` + reviewColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := s.db.ExecContext(ctx, query,
		review.ID, review.RepoFullName, review.PRNumber, review.HeadSHA, review.Outcome,
		review.GitHubReviewID, review.Verdict, review.InlineComments, review.OverflowPosted,
		review.DroppedComments, pq.Array(errs), review.Body, review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save review for %s#%d: %w", review.RepoFullName, review.PRNumber, err)
	}
	return nil
}

// GetLatestReviewForPR returns the newest review of a pull request, or
// ErrReviewNotFound.
func (s *postgresStore) GetLatestReviewForPR(ctx context.Context, repoFullName string, prNumber int) (*core.ReviewRecord, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews
		WHERE repo_full_name = $1 AND pr_number = $2
		ORDER BY created_at DESC
		LIMIT 1`

	var row reviewRow
	if err := s.db.GetContext(ctx, &row, query, repoFullName, prNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w for %s#%d", ErrReviewNotFound, repoFullName, prNumber)
		}
		return nil, fmt.Errorf("failed to load review for %s#%d: %w", repoFullName, prNumber, err)
	}
	return row.record(), nil
}

// ListRecentReviews returns up to limit reviews of a repository, newest first.
func (s *postgresStore) ListRecentReviews(ctx context.Context, repoFullName string, limit int) ([]*core.ReviewRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + reviewColumns + ` FROM reviews
		WHERE repo_full_name = $1
		ORDER BY created_at DESC
		LIMIT $2`

	var rows []reviewRow
	if err := s.db.SelectContext(ctx, &rows, query, repoFullName, limit); err != nil {
		return nil, fmt.Errorf("failed to list reviews for %s: %w", repoFullName, err)
	}

	out := make([]*core.ReviewRecord, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].record())
	}
	return out, nil
}

func (r *reviewRow) record() *core.ReviewRecord {
	rec := r.ReviewRecord
	rec.Errors = []string(r.ErrorList)
	return &rec
}

// NopStore discards writes and finds nothing. It stands in when the database
// is disabled.
type NopStore struct{}

func (NopStore) SaveReview(context.Context, *core.ReviewRecord) error { return nil }

func (NopStore) GetLatestReviewForPR(_ context.Context, repoFullName string, prNumber int) (*core.ReviewRecord, error) {
	return nil, fmt.Errorf("%w for %s#%d", ErrReviewNotFound, repoFullName, prNumber)
}

func (NopStore) ListRecentReviews(context.Context, string, int) ([]*core.ReviewRecord, error) {
	return nil, nil
}
