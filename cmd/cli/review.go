package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/github"
	"github.com/sevigo/review-warden/internal/gitutil"
	"github.com/sevigo/review-warden/internal/jobs"
	"github.com/sevigo/review-warden/internal/publish"
)

var (
	dryRun     bool
	reviewJSON bool
	verbose    bool
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
	boldColor    = color.New(color.Bold)
)

var reviewCmd = &cobra.Command{
	Use:   "review [pr-url]",
	Short: "Review a GitHub pull request",
	Long: `Review a GitHub pull request and publish the result as a review.

With --dry-run nothing is posted: the summary and the inline comments that
would be submitted are printed instead.

Examples:
  warden-cli review https://github.com/owner/repo/pull/123
  warden-cli review --dry-run https://github.com/owner/repo/pull/123`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Render the review without publishing it")
	reviewCmd.Flags().BoolVar(&reviewJSON, "json", false, "Print the response as JSON")
	reviewCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show timing information")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	ref, err := gitutil.ParsePullRequestURL(args[0])
	if err != nil {
		return fmt.Errorf("%w\n\nExpected format: https://github.com/owner/repo/pull/123", err)
	}

	a, cleanup, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	tok := token(a)
	if tok == "" {
		return fmt.Errorf("%w\n\nTip: pass --github-token or set GITHUB_TOKEN", jobs.ErrMissingToken)
	}

	if !reviewJSON {
		titleColor.Println("Review Warden")
		dimColor.Printf("   Target: %s\n", ref.URL())
		if dryRun {
			warnColor.Println("   Dry run: nothing will be posted")
		}
		fmt.Println()
	}

	client := github.NewPATClient(ctx, tok, a.Logger)
	resp := a.Reviewer.Run(ctx, client, ref, jobs.RunOptions{DryRun: dryRun})
	resp.PRURL = args[0]

	if reviewJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return err
		}
	} else {
		printResponse(resp)
		if verbose {
			dimColor.Printf("\nTotal time: %s\n", time.Since(start).Round(time.Millisecond))
		}
	}

	if !resp.Success {
		return fmt.Errorf("review failed")
	}
	return nil
}

func printResponse(resp *jobs.ReviewResponse) {
	if resp.ReviewBody != "" {
		fmt.Println(renderMarkdown(resp.ReviewBody))
	}

	if verbose && resp.Analysis != nil {
		for _, issue := range resp.Analysis.Issues {
			fmt.Printf("%s %s:%d %s\n", severityBadge(issue.Severity), issue.File, issue.Line, issue.Description)
		}
		fmt.Println()
	}

	if len(resp.Planned) > 0 {
		warnColor.Printf("Inline comments (%d)\n", len(resp.Planned))
		for _, c := range resp.Planned {
			printPlanned(c)
		}
		fmt.Println()
	}

	for _, e := range resp.Errors {
		warnColor.Printf("  ! %s\n", e)
	}

	switch {
	case !resp.Success:
		errorColor.Println(resp.Message)
	case resp.Outcome == publish.OutcomeReviewWithComments || resp.Outcome == jobs.OutcomeDryRun:
		successColor.Println(resp.Message)
	default:
		warnColor.Println(resp.Message)
	}
	if resp.ReviewID != nil {
		dimColor.Printf("Review ID: %d\n", *resp.ReviewID)
	}
}

func printPlanned(c publish.Comment) {
	fmt.Print("  ")
	boldColor.Print(c.Location())
	dimColor.Printf(" (%s)\n", c.Side)
	first, _, _ := strings.Cut(c.Body, "\n")
	fmt.Printf("    %s\n", first)
}

// renderMarkdown falls back to the raw text when the terminal renderer fails.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// severityBadge colors a severity label.
func severityBadge(s core.Severity) string {
	switch s {
	case core.SeverityCritical:
		return color.New(color.BgRed, color.FgWhite, color.Bold).Sprintf(" %s ", s)
	case core.SeverityHigh:
		return color.New(color.BgHiRed, color.FgWhite).Sprintf(" %s ", s)
	case core.SeverityMedium:
		return color.New(color.BgYellow, color.FgBlack).Sprintf(" %s ", s)
	case core.SeverityLow:
		return color.New(color.BgGreen, color.FgWhite).Sprintf(" %s ", s)
	default:
		return color.New(color.BgWhite, color.FgBlack).Sprintf(" %s ", s)
	}
}
