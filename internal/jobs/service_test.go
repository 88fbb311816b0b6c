package jobs

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	gh "github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/github"
	"github.com/sevigo/review-warden/internal/gitutil"
	"github.com/sevigo/review-warden/internal/llm"
	"github.com/sevigo/review-warden/internal/logger"
	"github.com/sevigo/review-warden/internal/publish"
	"github.com/sevigo/review-warden/internal/standards"
	"github.com/sevigo/review-warden/mocks"
)

type fakeAnalyzer struct {
	analysis *core.Analysis
	err      error
	got      llm.AnalysisInput
}

func (f *fakeAnalyzer) Analyze(_ context.Context, in llm.AnalysisInput) (*core.Analysis, error) {
	f.got = in
	return f.analysis, f.err
}

type fakeStore struct {
	mu    sync.Mutex
	saved []*core.ReviewRecord
}

func (f *fakeStore) SaveReview(_ context.Context, r *core.ReviewRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, r)
	return nil
}

func (f *fakeStore) GetLatestReviewForPR(context.Context, string, int) (*core.ReviewRecord, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeStore) ListRecentReviews(context.Context, string, int) ([]*core.ReviewRecord, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		GitHub: config.GitHubConfig{Token: "default-token"},
		Review: config.ReviewConfig{MaxFilesPerReview: 50, MaxFileSizeKB: 500},
		Publish: config.PublishConfig{
			MaxInlineComments: 50,
			MaxLineDistance:   5,
			FallbackFactor:    2,
		},
	}
}

var testPR = &core.PullRequest{
	Owner: "o", Repo: "r", Number: 7,
	Title: "Add line2", HeadSHA: "abc", HeadRef: "feature",
}

var testFiles = []core.ChangedFile{
	{Filename: "a.go", Status: "modified", Changes: 1, Patch: "@@ -1,2 +1,3 @@\n line1\n+line2\n line3"},
	{Filename: "docs/guide.md", Status: "modified", Changes: 1, Patch: "@@ -1 +1 @@\n-old\n+new"},
	{Filename: "gone.go", Status: "removed", Changes: 1, Patch: "@@ -1,1 +0,0 @@\n-gone"},
}

func testAnalysis() *core.Analysis {
	return &core.Analysis{
		Issues: []core.Issue{
			{File: "a.go", Line: 2, Severity: core.SeverityHigh, Type: core.IssueBug, Description: "line2 is wrong"},
			{File: "a.go", Line: 40, Severity: core.SeverityLow, Type: core.IssueStyle, Description: "far away"},
		},
		Summary:                "Needs work.",
		ApprovalRecommendation: core.VerdictRequestChanges,
		FilesReviewed:          2,
		TotalIssues:            2,
		CriticalIssues:         1,
	}
}

// expectFetch scripts the reads every pipeline run performs.
func expectFetch(client *mocks.MockClient) {
	client.EXPECT().GetChangedFiles(gomock.Any(), "o", "r", 7).Return(testFiles, nil)
	client.EXPECT().GetFileContent(gomock.Any(), "o", "r", config.RepoConfigFile, "abc").
		Return("exclude_exts: [md]\ncustom_instructions: [be strict]\n", true, nil)
	client.EXPECT().GetFileContent(gomock.Any(), "o", "r", "a.go", "abc").
		Return("line1\nline2\nline3\n", true, nil)
}

func newTestService(t *testing.T, client github.Client, analyzer llm.Analyzer, store *fakeStore) *ReviewService {
	t.Helper()
	return NewReviewService(testConfig(), analyzer, standards.NopRetriever{}, store, logger.Discard()).
		WithClientFactory(func(_ context.Context, token string) github.Client {
			assert.Equal(t, "default-token", token)
			return client
		})
}

func TestReviewService_InvalidURL(t *testing.T) {
	svc := NewReviewService(testConfig(), &fakeAnalyzer{}, standards.NopRetriever{}, &fakeStore{}, logger.Discard())

	resp := svc.Review(context.Background(), ReviewRequest{PRURL: "https://example.com/not/a/pr"})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Invalid")
	assert.Equal(t, publish.OutcomeFailure, resp.Outcome)
}

func TestReviewService_MissingToken(t *testing.T) {
	cfg := testConfig()
	cfg.GitHub.Token = ""
	svc := NewReviewService(cfg, &fakeAnalyzer{}, standards.NopRetriever{}, &fakeStore{}, logger.Discard())

	resp := svc.Review(context.Background(), ReviewRequest{PRURL: "https://github.com/o/r/pull/7"})
	assert.False(t, resp.Success)
	assert.Equal(t, ErrMissingToken.Error(), resp.Message)
}

func TestReviewService_PublishesReview(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	analyzer := &fakeAnalyzer{analysis: testAnalysis()}
	store := &fakeStore{}

	client.EXPECT().GetPullRequest(gomock.Any(), "o", "r", 7).Return(testPR, nil)
	expectFetch(client)

	var got github.ReviewRequest
	client.EXPECT().CreateReview(gomock.Any(), "o", "r", 7, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, req github.ReviewRequest) (int64, error) {
			got = req
			return 99, nil
		})

	resp := newTestService(t, client, analyzer, store).
		Review(context.Background(), ReviewRequest{PRURL: "https://github.com/o/r/pull/7"})

	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, publish.OutcomeReviewWithComments, resp.Outcome)
	require.NotNil(t, resp.ReviewID)
	assert.Equal(t, int64(99), *resp.ReviewID)
	assert.Equal(t, "Review completed successfully. Found 2 issues.", resp.Message)
	assert.Contains(t, resp.Errors, "Only reviewing 2 of 3 files (1 excluded by repository config)")
	assert.Contains(t, resp.Errors, "dropped comment: a.go:40 not in diff")

	// The analyzer saw the selected files, the fetched content and the repo instructions.
	assert.Equal(t, []string{"be strict"}, analyzer.got.CustomInstructions)
	require.Len(t, analyzer.got.Files, 2)
	assert.Equal(t, "a.go", analyzer.got.Files[0].Filename)
	assert.Equal(t, map[string]string{"a.go": "line1\nline2\nline3\n"}, analyzer.got.Contents)

	assert.Equal(t, "abc", got.CommitID)
	assert.Equal(t, "REQUEST_CHANGES", got.Event)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "a.go", got.Comments[0].Path)
	assert.Equal(t, 2, got.Comments[0].Line)
	assert.Equal(t, "RIGHT", got.Comments[0].Side)
	assert.Contains(t, got.Body, "**a.go:40** (not anchored to diff)")
	assert.Equal(t, got.Body, resp.ReviewBody)

	require.Len(t, store.saved, 1)
	rec := store.saved[0]
	assert.Equal(t, "o/r", rec.RepoFullName)
	assert.Equal(t, 7, rec.PRNumber)
	assert.Equal(t, string(publish.OutcomeReviewWithComments), rec.Outcome)
	assert.Equal(t, 1, rec.InlineComments)
	assert.Equal(t, 1, rec.DroppedComments)
}

func TestReviewService_OwnPullRequestDowngrade(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	client.EXPECT().GetPullRequest(gomock.Any(), "o", "r", 7).Return(testPR, nil)
	expectFetch(client)

	ownPR := &gh.ErrorResponse{
		Response: &http.Response{StatusCode: http.StatusUnprocessableEntity},
		Message:  "Unprocessable Entity",
		Errors:   []gh.Error{{Message: "Can not request changes on your own pull request"}},
	}
	var events []string
	client.EXPECT().CreateReview(gomock.Any(), "o", "r", 7, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, req github.ReviewRequest) (int64, error) {
			events = append(events, req.Event)
			if len(events) == 1 {
				return 0, ownPR
			}
			return 5, nil
		}).Times(2)

	resp := newTestService(t, client, &fakeAnalyzer{analysis: testAnalysis()}, &fakeStore{}).
		Review(context.Background(), ReviewRequest{PRURL: "https://github.com/o/r/pull/7"})

	require.True(t, resp.Success)
	assert.Equal(t, []string{"REQUEST_CHANGES", "COMMENT"}, events)
	assert.Equal(t, publish.OutcomeReviewWithComments, resp.Outcome)
}

func TestReviewService_PublishFailureKeepsContent(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	store := &fakeStore{}

	client.EXPECT().GetPullRequest(gomock.Any(), "o", "r", 7).Return(testPR, nil)
	expectFetch(client)
	client.EXPECT().CreateReview(gomock.Any(), "o", "r", 7, gomock.Any()).
		Return(int64(0), errors.New("connection reset"))

	resp := newTestService(t, client, &fakeAnalyzer{analysis: testAnalysis()}, store).
		Review(context.Background(), ReviewRequest{PRURL: "https://github.com/o/r/pull/7"})

	assert.False(t, resp.Success)
	assert.Equal(t, publish.OutcomeFailure, resp.Outcome)
	assert.Contains(t, resp.Message, "connection reset")
	assert.Nil(t, resp.ReviewID)
	assert.NotNil(t, resp.Analysis)
	assert.Contains(t, resp.ReviewBody, "Review Warden Summary")
	require.Len(t, store.saved, 1)
	assert.Equal(t, string(publish.OutcomeFailure), store.saved[0].Outcome)
}

func TestReviewService_AnalyzerFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	client.EXPECT().GetPullRequest(gomock.Any(), "o", "r", 7).Return(testPR, nil)
	expectFetch(client)

	resp := newTestService(t, client, &fakeAnalyzer{err: errors.New("model offline")}, &fakeStore{}).
		Review(context.Background(), ReviewRequest{PRURL: "https://github.com/o/r/pull/7"})

	assert.False(t, resp.Success)
	assert.Equal(t, "Review failed: model offline", resp.Message)
	assert.Contains(t, resp.Errors, "model offline")
}

func TestReviewService_PullRequestLookupFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().GetPullRequest(gomock.Any(), "o", "r", 7).Return(nil, errors.New("404 Not Found"))

	resp := newTestService(t, client, &fakeAnalyzer{}, &fakeStore{}).
		Review(context.Background(), ReviewRequest{PRURL: "https://github.com/o/r/pull/7"})

	assert.False(t, resp.Success)
	assert.NotContains(t, resp.Message, "Invalid")
}

func TestReviewService_DryRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	store := &fakeStore{}

	client.EXPECT().GetPullRequest(gomock.Any(), "o", "r", 7).Return(testPR, nil)
	expectFetch(client)

	svc := NewReviewService(testConfig(), &fakeAnalyzer{analysis: testAnalysis()}, standards.NopRetriever{}, store, logger.Discard())
	ref := gitutil.PullRequestRef{Owner: "o", Repo: "r", Number: 7}
	resp := svc.Run(context.Background(), client, ref, RunOptions{DryRun: true})

	require.True(t, resp.Success)
	assert.Equal(t, OutcomeDryRun, resp.Outcome)
	require.Len(t, resp.Planned, 1)
	assert.Equal(t, "a.go:2", resp.Planned[0].Location())
	assert.Contains(t, resp.ReviewBody, "Recommendation:** REQUEST_CHANGES")
	assert.Contains(t, resp.Errors, "dropped comment: a.go:40 not in diff")
	assert.Empty(t, store.saved)
}

func TestBuildDraft_RendersStandardsNote(t *testing.T) {
	std := standards.Context{Text: "- Title: x", Types: []string{"team"}}
	draft := buildDraft(testPR, testFiles[:1], testAnalysis(), std)

	require.Len(t, draft.Comments, 2)
	assert.Equal(t, "RIGHT", draft.Comments[0].Side)

	body := draft.Render(publish.Resolution{Lines: []int{2, 0}})
	assert.Contains(t, body, "coding standards (team)")
}
