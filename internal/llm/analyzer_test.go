package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/logger"
)

func newTestAnalyzer(t *testing.T, generate func(context.Context, string) (string, error)) *analyzer {
	t.Helper()
	pm, err := NewPromptManager()
	require.NoError(t, err)
	return &analyzer{generate: generate, prompts: pm, provider: "gemini", logger: logger.Discard()}
}

func TestAnalyze_NoReviewableFilesSkipsModel(t *testing.T) {
	a := newTestAnalyzer(t, func(context.Context, string) (string, error) {
		t.Fatal("model must not be called")
		return "", nil
	})

	got, err := a.Analyze(context.Background(), AnalysisInput{
		PR:    &core.PullRequest{Title: "binary only"},
		Files: []core.ChangedFile{{Filename: "logo.png", Status: "added"}},
	})
	require.NoError(t, err)
	assert.Equal(t, NoChangesSummary, got.Summary)
	assert.Equal(t, core.VerdictApprove, got.ApprovalRecommendation)
	assert.Zero(t, got.FilesReviewed)
}

func TestAnalyze_BuildsPromptAndParses(t *testing.T) {
	var prompt string
	a := newTestAnalyzer(t, func(_ context.Context, p string) (string, error) {
		prompt = p
		return `{"issues":[{"file":"main.go","line":3,"severity":"medium","type":"bug","description":"x"}],"summary":"s","approval_recommendation":"COMMENT"}`, nil
	})

	got, err := a.Analyze(context.Background(), AnalysisInput{
		PR: &core.PullRequest{Title: "Add retries", Body: "Retries flaky calls."},
		Files: []core.ChangedFile{
			{Filename: "main.go", Status: "modified", Additions: 3, Patch: "@@ -1,3 +1,6 @@\n a\n+b\n+c\n+d\n e\n@@ -9,2 +12,3 @@\n x\n+y\n z"},
			{Filename: "logo.png", Status: "added"},
		},
		Contents:           map[string]string{"main.go": "package main"},
		Standards:          "Always wrap errors.",
		CustomInstructions: []string{"Prefer table tests."},
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "## Pull Request: Add retries")
	assert.Contains(t, prompt, "Retries flaky calls.")
	assert.Contains(t, prompt, "**Changed lines (ONLY these lines can be commented on):** 2-4, 13")
	assert.Contains(t, prompt, "package main")
	assert.Contains(t, prompt, "Always wrap errors.")
	assert.Contains(t, prompt, "- Prefer table tests.")
	assert.NotContains(t, prompt, "logo.png")

	assert.Equal(t, 1, got.FilesReviewed)
	assert.Len(t, got.Issues, 1)
}

func TestAnalyze_UnparseableResponseDegrades(t *testing.T) {
	a := newTestAnalyzer(t, func(context.Context, string) (string, error) {
		return "sorry", nil
	})

	got, err := a.Analyze(context.Background(), AnalysisInput{
		Files: []core.ChangedFile{{Filename: "a.go", Patch: "@@ -1 +1 @@\n-a\n+b"}},
	})
	require.NoError(t, err)
	assert.Contains(t, got.Summary, "Failed to parse review response")
	assert.Equal(t, core.VerdictComment, got.ApprovalRecommendation)
	assert.Empty(t, got.Issues)
}

func TestAnalyze_ModelErrorIsReturned(t *testing.T) {
	a := newTestAnalyzer(t, func(context.Context, string) (string, error) {
		return "", errors.New("quota exceeded")
	})

	_, err := a.Analyze(context.Background(), AnalysisInput{
		Files: []core.ChangedFile{{Filename: "a.go", Patch: "@@ -1 +1 @@\n-a\n+b"}},
	})
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestPromptManager_FallsBackToDefault(t *testing.T) {
	pm, err := NewPromptManager()
	require.NoError(t, err)

	_, err = pm.Get(CodeReviewPrompt, "ollama")
	assert.NoError(t, err)

	_, err = pm.Get("unknown", DefaultProvider)
	assert.Error(t, err)
}
