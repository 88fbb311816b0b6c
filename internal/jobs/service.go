// Package jobs runs the review pipeline, both on demand and as background
// work for webhook events.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/diff"
	"github.com/sevigo/review-warden/internal/github"
	"github.com/sevigo/review-warden/internal/gitutil"
	"github.com/sevigo/review-warden/internal/llm"
	"github.com/sevigo/review-warden/internal/publish"
	"github.com/sevigo/review-warden/internal/standards"
	"github.com/sevigo/review-warden/internal/storage"
)

// OutcomeDryRun marks a response whose review was rendered but not published.
const OutcomeDryRun publish.Outcome = "dry_run"

// ErrMissingToken is reported when neither the request nor the configuration
// carries a GitHub token.
var ErrMissingToken = errors.New("a GitHub token is required: pass github_pat or set github.token")

// ReviewRequest asks for a review of one pull request.
type ReviewRequest struct {
	PRURL       string `json:"pr_url"`
	GitHubToken string `json:"github_pat,omitempty"`
}

// ReviewResponse reports what happened. The analysis and the rendered body are
// returned even when publishing failed.
type ReviewResponse struct {
	Success    bool            `json:"success"`
	PRURL      string          `json:"pr_url"`
	ReviewID   *int64          `json:"review_id"`
	Analysis   *core.Analysis  `json:"analysis,omitempty"`
	Message    string          `json:"message"`
	Errors     []string        `json:"errors"`
	Outcome    publish.Outcome `json:"outcome,omitempty"`
	ReviewBody string          `json:"review_body,omitempty"`

	// Planned holds the inline comments a dry run would have submitted.
	Planned []publish.Comment `json:"-"`
}

// RunOptions adjust a single pipeline run.
type RunOptions struct {
	// DryRun renders the review without publishing or persisting it.
	DryRun bool
	// PR skips the pull request lookup when the caller already has it.
	PR *core.PullRequest
}

// ClientFactory builds a GitHub client for a token.
type ClientFactory func(ctx context.Context, token string) github.Client

// ReviewService runs the review pipeline.
type ReviewService struct {
	cfg       *config.Config
	analyzer  llm.Analyzer
	retriever standards.Retriever
	store     storage.Store
	newClient ClientFactory
	logger    *slog.Logger
}

// NewReviewService wires the pipeline collaborators. Clients are created
// from personal access tokens.
func NewReviewService(cfg *config.Config, analyzer llm.Analyzer, retriever standards.Retriever, store storage.Store, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		cfg:       cfg,
		analyzer:  analyzer,
		retriever: retriever,
		store:     store,
		newClient: func(ctx context.Context, token string) github.Client {
			return github.NewPATClient(ctx, token, logger)
		},
		logger: logger,
	}
}

// WithClientFactory replaces the token-based client constructor.
func (s *ReviewService) WithClientFactory(f ClientFactory) *ReviewService {
	s.newClient = f
	return s
}

// Review parses the pull request URL, authenticates and runs the pipeline.
func (s *ReviewService) Review(ctx context.Context, req ReviewRequest) *ReviewResponse {
	ref, err := gitutil.ParsePullRequestURL(req.PRURL)
	if err != nil {
		s.logger.Warn("invalid review request", "pr_url", req.PRURL, "error", err)
		return failed(req.PRURL, err.Error(), nil)
	}

	token := req.GitHubToken
	if token == "" {
		token = s.cfg.GitHub.Token
	}
	if token == "" {
		return failed(req.PRURL, ErrMissingToken.Error(), nil)
	}

	resp := s.Run(ctx, s.newClient(ctx, token), ref, RunOptions{})
	resp.PRURL = req.PRURL
	return resp
}

// Run executes the pipeline for ref with an authenticated client.
func (s *ReviewService) Run(ctx context.Context, client github.Client, ref gitutil.PullRequestRef, opts RunOptions) *ReviewResponse {
	prURL := ref.URL()
	log := s.logger.With("repo", ref.FullName(), "pr", ref.Number)

	pr := opts.PR
	if pr == nil {
		var err error
		pr, err = client.GetPullRequest(ctx, ref.Owner, ref.Repo, ref.Number)
		if err != nil {
			return failed(prURL, "Review failed: "+err.Error(), nil)
		}
	}
	log.Info("reviewing pull request", "title", pr.Title, "head", pr.HeadSHA)

	files, err := client.GetChangedFiles(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return failed(prURL, "Review failed: "+err.Error(), nil)
	}

	var notes []string
	repoCfg := s.loadRepoConfig(ctx, client, pr, log)

	sel := SelectFiles(files, repoCfg, s.cfg.Review.MaxFilesPerReview, s.cfg.Review.MaxFileSizeKB)
	if note := sel.Note(); note != "" {
		notes = append(notes, note)
	}
	log.Info("changed files selected", "total", sel.Total, "reviewing", len(sel.Files))

	contents := fetchContents(ctx, client, pr, sel.Files, log)
	std := s.retriever.Retrieve(ctx, pr, sel.Files)

	analysis, err := s.analyzer.Analyze(ctx, llm.AnalysisInput{
		PR:                 pr,
		Files:              sel.Files,
		Contents:           contents,
		Standards:          std.Text,
		CustomInstructions: repoCfg.CustomInstructions,
	})
	if err != nil {
		return failed(prURL, "Review failed: "+err.Error(), notes)
	}
	log.Info("analysis complete", "issues", analysis.TotalIssues, "recommendation", analysis.ApprovalRecommendation)

	draft := buildDraft(pr, sel.Files, analysis, std)

	if opts.DryRun {
		return s.preview(prURL, draft, analysis, notes)
	}

	publisher := publish.NewPublisher(
		github.NewReviewTarget(client, ref.Owner, ref.Repo, ref.Number),
		s.publishConfig(),
		log,
	)
	result := publisher.Publish(ctx, draft)

	s.record(ctx, pr, result, log)

	resp := &ReviewResponse{
		Success:    result.Success,
		PRURL:      prURL,
		ReviewID:   result.ReviewID,
		Analysis:   analysis,
		Errors:     append(notes, result.Errors...),
		Outcome:    result.Outcome,
		ReviewBody: result.Body,
	}
	if resp.Errors == nil {
		resp.Errors = []string{}
	}

	if result.Success {
		resp.Message = fmt.Sprintf("Review completed successfully. Found %d issues.", analysis.TotalIssues)
		if result.Outcome != publish.OutcomeReviewWithComments {
			resp.Message += " " + result.Message + "."
		}
		log.Info("review published", "outcome", result.Outcome, "verdict", result.Verdict, "review_id", result.ReviewID)
	} else {
		resp.Message = "Review failed: " + result.Message
		log.Error("review could not be published", "message", result.Message)
	}
	return resp
}

func (s *ReviewService) loadRepoConfig(ctx context.Context, client github.Client, pr *core.PullRequest, log *slog.Logger) *core.RepoConfig {
	content, found, err := client.GetFileContent(ctx, pr.Owner, pr.Repo, config.RepoConfigFile, pr.HeadSHA)
	if err != nil {
		log.Warn("failed to fetch repository config, using defaults", "file", config.RepoConfigFile, "error", err)
		return core.DefaultRepoConfig()
	}
	if !found {
		return core.DefaultRepoConfig()
	}

	cfg, err := config.ParseRepoConfig(content)
	if err != nil {
		log.Warn("invalid repository config, using defaults", "file", config.RepoConfigFile, "error", err)
		return core.DefaultRepoConfig()
	}
	return cfg
}

func (s *ReviewService) publishConfig() publish.Config {
	return publish.Config{
		MaxInlineComments: s.cfg.Publish.MaxInlineComments,
		MaxDistance:       s.cfg.Publish.MaxLineDistance,
		FallbackFactor:    s.cfg.Publish.FallbackFactor,
		OverflowInterval:  s.cfg.Publish.OverflowInterval,
	}
}

func (s *ReviewService) preview(prURL string, draft publish.Draft, analysis *core.Analysis, notes []string) *ReviewResponse {
	cfg := s.publishConfig()
	res := publish.Resolver{Locator: diff.Locator{
		MaxDistance:    cfg.MaxDistance,
		FallbackFactor: cfg.FallbackFactor,
	}}.Resolve(draft.Index, draft.Comments)

	errs := append([]string{}, notes...)
	for _, d := range res.Dropped {
		errs = append(errs, "dropped comment: "+d.Reason)
	}

	return &ReviewResponse{
		Success:    true,
		PRURL:      prURL,
		Analysis:   analysis,
		Message:    fmt.Sprintf("Dry run: %d issues, %d inline comments, %d dropped.", analysis.TotalIssues, len(res.Comments), len(res.Dropped)),
		Errors:     errs,
		Outcome:    OutcomeDryRun,
		ReviewBody: draft.Render(res),
		Planned:    res.Comments,
	}
}

func (s *ReviewService) record(ctx context.Context, pr *core.PullRequest, result *publish.Result, log *slog.Logger) {
	rec := &core.ReviewRecord{
		RepoFullName:    pr.FullName(),
		PRNumber:        pr.Number,
		HeadSHA:         pr.HeadSHA,
		Outcome:         string(result.Outcome),
		GitHubReviewID:  result.ReviewID,
		Verdict:         string(result.Verdict),
		InlineComments:  result.InlineComments,
		OverflowPosted:  result.OverflowPosted,
		DroppedComments: len(result.Dropped),
		Errors:          result.Errors,
		Body:            result.Body,
	}
	if err := s.store.SaveReview(ctx, rec); err != nil {
		log.Warn("failed to persist review record", "error", err)
	}
}

// buildDraft turns an analysis into a publish draft: one proposed comment per
// issue and a summary rendered once the comments are anchored.
func buildDraft(pr *core.PullRequest, files []core.ChangedFile, analysis *core.Analysis, std standards.Context) publish.Draft {
	patches := make(map[string]string, len(files))
	for _, f := range files {
		patches[f.Filename] = f.Patch
	}

	proposed := make([]core.ProposedComment, 0, len(analysis.Issues))
	for _, issue := range analysis.Issues {
		proposed = append(proposed, core.ProposedComment{
			Path:    issue.File,
			Line:    issue.Line,
			EndLine: issue.EndLine,
			Side:    string(diff.SideRight),
			Body:    github.FormatIssueComment(issue),
		})
	}

	return publish.Draft{
		CommitID: pr.HeadSHA,
		Verdict:  analysis.ApprovalRecommendation,
		Comments: proposed,
		Index:    diff.NewIndex(patches),
		Render: func(res publish.Resolution) string {
			return github.FormatReviewSummary(analysis, github.SummaryOptions{
				AnchoredLines: res.Lines,
				StandardTypes: std.Types,
				StandardsUsed: !std.Empty(),
			})
		},
	}
}

func failed(prURL, message string, notes []string) *ReviewResponse {
	errs := []string{strings.TrimPrefix(message, "Review failed: ")}
	return &ReviewResponse{
		Success: false,
		PRURL:   prURL,
		Message: message,
		Errors:  append(errs, notes...),
		Outcome: publish.OutcomeFailure,
	}
}
