package gitutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePullRequestURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    PullRequestRef
		wantErr bool
	}{
		{
			name: "Valid HTTPS URL",
			url:  "https://github.com/sevigo/review-warden/pull/123",
			want: PullRequestRef{Owner: "sevigo", Repo: "review-warden", Number: 123},
		},
		{
			name: "Valid URL without scheme",
			url:  "github.com/sevigo/review-warden/pull/456",
			want: PullRequestRef{Owner: "sevigo", Repo: "review-warden", Number: 456},
		},
		{
			name: "URL with trailing slash",
			url:  "https://github.com/sevigo/review-warden/pull/789/",
			want: PullRequestRef{Owner: "sevigo", Repo: "review-warden", Number: 789},
		},
		{
			name: "Files tab with query",
			url:  "http://www.github.com/acme/api/pull/7/files?diff=split",
			want: PullRequestRef{Owner: "acme", Repo: "api", Number: 7},
		},
		{
			name:    "Invalid PR ID",
			url:     "https://github.com/sevigo/review-warden/pull/abc",
			wantErr: true,
		},
		{
			name:    "Zero PR number",
			url:     "https://github.com/sevigo/review-warden/pull/0",
			wantErr: true,
		},
		{
			name:    "Invalid format (missing pull)",
			url:     "https://github.com/sevigo/review-warden/issues/123",
			wantErr: true,
		},
		{
			name:    "Other host",
			url:     "https://gitlab.com/sevigo/review-warden/pull/1",
			wantErr: true,
		},
		{
			name:    "Empty",
			url:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePullRequestURL(tt.url)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidPullRequestURL)
				assert.Contains(t, err.Error(), "Invalid")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPullRequestRef(t *testing.T) {
	ref := PullRequestRef{Owner: "o", Repo: "r", Number: 5}
	assert.Equal(t, "o/r", ref.FullName())
	assert.Equal(t, "https://github.com/o/r/pull/5", ref.URL())
}
