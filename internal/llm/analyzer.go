// Package llm turns pull request changes into a structured analysis using a
// generative model.
package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/goframe/llms"

	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/diff"
)

// NoChangesSummary is the summary of an analysis without reviewable files.
const NoChangesSummary = "No reviewable code changes found in this PR."

// AnalysisInput is everything the model sees about a pull request.
type AnalysisInput struct {
	PR                 *core.PullRequest
	Files              []core.ChangedFile
	Contents           map[string]string
	Standards          string
	CustomInstructions []string
}

// Analyzer produces an Analysis for a pull request. Its output is untrusted:
// line numbers are validated again before publishing.
type Analyzer interface {
	Analyze(ctx context.Context, in AnalysisInput) (*core.Analysis, error)
}

type promptFile struct {
	Filename  string
	Status    string
	Additions int
	Deletions int
	Ranges    string
	Content   string
	Patch     string
}

type promptData struct {
	Title              string
	Body               string
	Standards          string
	CustomInstructions []string
	Files              []promptFile
}

type analyzer struct {
	generate func(ctx context.Context, prompt string) (string, error)
	prompts  *PromptManager
	provider ModelProvider
	logger   *slog.Logger
}

// NewAnalyzer creates an Analyzer backed by model. provider selects a
// provider specific prompt when one exists.
func NewAnalyzer(model llms.Model, prompts *PromptManager, provider ModelProvider, logger *slog.Logger) Analyzer {
	return &analyzer{
		generate: func(ctx context.Context, prompt string) (string, error) {
			return llms.GenerateFromSinglePrompt(ctx, model, prompt)
		},
		prompts:  prompts,
		provider: provider,
		logger:   logger,
	}
}

func (a *analyzer) Analyze(ctx context.Context, in AnalysisInput) (*core.Analysis, error) {
	var reviewable []core.ChangedFile
	for _, f := range in.Files {
		if f.Patch != "" {
			reviewable = append(reviewable, f)
		}
	}
	if len(reviewable) == 0 {
		return &core.Analysis{
			Issues:                 []core.Issue{},
			Summary:                NoChangesSummary,
			ApprovalRecommendation: core.VerdictApprove,
		}, nil
	}

	prompt, err := a.buildPrompt(in, reviewable)
	if err != nil {
		return nil, err
	}

	a.logger.Info("generating review", "files", len(reviewable), "prompt_chars", len(prompt))
	response, err := a.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate review: %w", err)
	}

	analysis, err := parseAnalysis(response, len(reviewable), a.logger)
	if err != nil {
		a.logger.Error("failed to parse model response", "error", err)
		return &core.Analysis{
			Issues:                 []core.Issue{},
			Summary:                fmt.Sprintf("Failed to parse review response: %v", err),
			ApprovalRecommendation: core.VerdictComment,
			FilesReviewed:          len(reviewable),
		}, nil
	}
	return analysis, nil
}

func (a *analyzer) buildPrompt(in AnalysisInput, files []core.ChangedFile) (string, error) {
	data := promptData{
		Standards:          in.Standards,
		CustomInstructions: in.CustomInstructions,
	}
	if in.PR != nil {
		data.Title = in.PR.Title
		data.Body = in.PR.Body
	}
	for _, f := range files {
		data.Files = append(data.Files, promptFile{
			Filename:  f.Filename,
			Status:    f.Status,
			Additions: f.Additions,
			Deletions: f.Deletions,
			Ranges:    diff.FormatRanges(diff.ChangedRanges(f.Patch)),
			Content:   in.Contents[f.Filename],
			Patch:     f.Patch,
		})
	}

	prompt, err := a.prompts.Render(CodeReviewPrompt, a.provider, data)
	if err != nil {
		return "", fmt.Errorf("failed to render review prompt: %w", err)
	}
	return prompt, nil
}
