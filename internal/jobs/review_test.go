package jobs

import (
	"context"
	"errors"
	"testing"

	gh "github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/github"
	"github.com/sevigo/review-warden/internal/logger"
	"github.com/sevigo/review-warden/internal/standards"
	"github.com/sevigo/review-warden/mocks"
)

func testEvent() *core.GitHubEvent {
	return &core.GitHubEvent{
		RepoOwner: "o", RepoName: "r", RepoFullName: "o/r",
		PRNumber: 7, Commenter: "alice", InstallationID: 42,
	}
}

func newTestJob(client github.Client, analyzer *fakeAnalyzer) *ReviewJob {
	svc := NewReviewService(testConfig(), analyzer, standards.NopRetriever{}, &fakeStore{}, logger.Discard())
	return NewReviewJob(testConfig(), svc, logger.Discard()).
		WithClientFactory(func(_ context.Context, id int64) (github.Client, error) {
			if id != 42 {
				return nil, errors.New("unexpected installation")
			}
			return client, nil
		})
}

func TestReviewJob_Run_ReportsCheckRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	client.EXPECT().GetPullRequest(gomock.Any(), "o", "r", 7).Return(testPR, nil)
	expectFetch(client)
	client.EXPECT().CreateReview(gomock.Any(), "o", "r", 7, gomock.Any()).Return(int64(3), nil)

	client.EXPECT().CreateCheckRun(gomock.Any(), "o", "r", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, opts gh.CreateCheckRunOptions) (*gh.CheckRun, error) {
			assert.Equal(t, "abc", opts.HeadSHA)
			assert.Equal(t, "in_progress", opts.GetStatus())
			return &gh.CheckRun{ID: gh.Ptr(int64(11))}, nil
		})
	client.EXPECT().UpdateCheckRun(gomock.Any(), "o", "r", int64(11), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int64, opts gh.UpdateCheckRunOptions) (*gh.CheckRun, error) {
			assert.Equal(t, "success", opts.GetConclusion())
			return &gh.CheckRun{}, nil
		})

	err := newTestJob(client, &fakeAnalyzer{analysis: testAnalysis()}).Run(context.Background(), testEvent())
	require.NoError(t, err)
}

func TestReviewJob_Run_FailureCompletesCheckRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	client.EXPECT().GetPullRequest(gomock.Any(), "o", "r", 7).Return(testPR, nil)
	expectFetch(client)
	client.EXPECT().CreateCheckRun(gomock.Any(), "o", "r", gomock.Any()).
		Return(&gh.CheckRun{ID: gh.Ptr(int64(11))}, nil)
	client.EXPECT().UpdateCheckRun(gomock.Any(), "o", "r", int64(11), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int64, opts gh.UpdateCheckRunOptions) (*gh.CheckRun, error) {
			assert.Equal(t, "failure", opts.GetConclusion())
			return &gh.CheckRun{}, nil
		})

	err := newTestJob(client, &fakeAnalyzer{err: errors.New("model offline")}).Run(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model offline")
}

func TestReviewJob_Run_CheckRunUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	client.EXPECT().GetPullRequest(gomock.Any(), "o", "r", 7).Return(testPR, nil)
	expectFetch(client)
	client.EXPECT().CreateCheckRun(gomock.Any(), "o", "r", gomock.Any()).
		Return(nil, errors.New("403 Resource not accessible by integration"))
	client.EXPECT().CreateReview(gomock.Any(), "o", "r", 7, gomock.Any()).Return(int64(3), nil)

	err := newTestJob(client, &fakeAnalyzer{analysis: testAnalysis()}).Run(context.Background(), testEvent())
	require.NoError(t, err)
}

func TestReviewJob_Run_InvalidEvent(t *testing.T) {
	job := newTestJob(nil, &fakeAnalyzer{})

	tests := []struct {
		name   string
		mutate func(e *core.GitHubEvent)
	}{
		{"missing owner", func(e *core.GitHubEvent) { e.RepoOwner = "" }},
		{"missing repo", func(e *core.GitHubEvent) { e.RepoName = "" }},
		{"bad number", func(e *core.GitHubEvent) { e.PRNumber = 0 }},
		{"no installation", func(e *core.GitHubEvent) { e.InstallationID = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testEvent()
			tt.mutate(e)
			err := job.Run(context.Background(), e)
			assert.ErrorContains(t, err, "input validation failed")
		})
	}
	assert.Error(t, job.Run(context.Background(), nil))
}

func TestCheckConclusion(t *testing.T) {
	c, _ := checkConclusion(&ReviewResponse{Success: false})
	assert.Equal(t, "failure", c)
	c, _ = checkConclusion(&ReviewResponse{Success: true, Outcome: "fallback_comment"})
	assert.Equal(t, "neutral", c)
}
