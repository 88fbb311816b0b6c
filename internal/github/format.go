package github

import (
	"fmt"
	"strings"

	"github.com/sevigo/review-warden/internal/core"
)

// SummaryOptions carries what the summary needs beyond the analysis itself.
type SummaryOptions struct {
	// AnchoredLines holds, per issue index, the line the inline comment was
	// placed on, or 0 when it could not be anchored. Nil means every issue is
	// listed at its reported line.
	AnchoredLines []int
	// StandardTypes lists the kinds of standards that informed the review.
	StandardTypes []string
	StandardsUsed bool
}

var typeLabels = map[core.IssueType]string{
	core.IssueBug:             "Bug",
	core.IssueSecurity:        "Security",
	core.IssuePerformance:     "Performance",
	core.IssueStyle:           "Style",
	core.IssueMaintainability: "Maintainability",
	core.IssueBestPractice:    "Best Practice",
}

// FormatIssueComment renders an issue as the body of an inline comment.
func FormatIssueComment(issue core.Issue) string {
	label, ok := typeLabels[issue.Type]
	if !ok {
		label = "Issue"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "### %s %s | %s\n\n", severityEmoji(issue.Severity), capitalize(string(issue.Severity)), label)

	alert := severityAlert(issue.Severity)
	fmt.Fprintf(&sb, "> [!%s]\n", alert)
	for _, line := range strings.Split(strings.TrimSpace(issue.Description), "\n") {
		if strings.TrimSpace(line) == "" {
			sb.WriteString(">\n")
			continue
		}
		fmt.Fprintf(&sb, "> %s\n", line)
	}

	if s := strings.TrimRight(issue.Suggestion, "\n"); s != "" {
		// GitHub renders suggestion blocks as an applicable change; they only
		// make sense for multi-line code without nested fences.
		if strings.Contains(s, "\n") && !strings.Contains(s, "```") {
			fmt.Fprintf(&sb, "\n```suggestion\n%s\n```\n", s)
		} else {
			fmt.Fprintf(&sb, "\n**Suggestion:** %s\n", s)
		}
	}
	return sb.String()
}

// FormatReviewSummary renders the review body.
func FormatReviewSummary(a *core.Analysis, opts SummaryOptions) string {
	var sb strings.Builder

	sb.WriteString("## 🤖 Review Warden Summary\n\n")
	fmt.Fprintf(&sb, "**Files Reviewed:** %d\n", a.FilesReviewed)
	fmt.Fprintf(&sb, "**Issues Found:** %d\n", a.TotalIssues)
	fmt.Fprintf(&sb, "**Critical/High Issues:** %d\n\n", a.CriticalIssues)

	if s := strings.TrimSpace(a.Summary); s != "" {
		fmt.Fprintf(&sb, "### Summary\n%s\n\n", s)
	}

	if len(a.Issues) > 0 {
		sb.WriteString("### Issues by Severity\n")
		for _, sev := range core.SeverityOrder {
			var lines []string
			for i, issue := range a.Issues {
				if issue.Severity != sev {
					continue
				}
				lines = append(lines, issueLine(issue, anchoredLine(opts.AnchoredLines, i, issue.Line)))
			}
			if len(lines) == 0 {
				continue
			}
			fmt.Fprintf(&sb, "\n#### %s %s (%d)\n\n", severityEmoji(sev), capitalize(string(sev)), len(lines))
			for _, l := range lines {
				sb.WriteString(l)
			}
		}
		sb.WriteString("\n")
	}

	if opts.StandardsUsed {
		sb.WriteString("> [!NOTE]\n> This review was informed by your team's coding standards")
		if len(opts.StandardTypes) > 0 {
			fmt.Fprintf(&sb, " (%s)", strings.Join(opts.StandardTypes, ", "))
		}
		sb.WriteString(".\n\n")
	}

	verdict := a.ApprovalRecommendation
	if verdict == "" {
		verdict = core.NeutralVerdict
	}
	fmt.Fprintf(&sb, "---\n%s **Recommendation:** %s\n", verdictIcon(verdict), verdict)
	return sb.String()
}

func issueLine(issue core.Issue, line int) string {
	desc := firstLine(issue.Description)
	if line <= 0 {
		return fmt.Sprintf("- **%s:%d** (not anchored to diff) - %s\n", issue.File, issue.Line, desc)
	}
	return fmt.Sprintf("- **%s:%d** - %s\n", issue.File, line, desc)
}

func anchoredLine(lines []int, i, reported int) int {
	if lines == nil {
		return reported
	}
	if i < len(lines) {
		return lines[i]
	}
	return 0
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func verdictIcon(v core.Verdict) string {
	switch v {
	case core.VerdictApprove:
		return "✅"
	case core.VerdictRequestChanges:
		return "🚫"
	case core.VerdictComment:
		return "💬"
	default:
		return "📝"
	}
}

func severityEmoji(s core.Severity) string {
	switch s {
	case core.SeverityCritical:
		return "🔴"
	case core.SeverityHigh:
		return "🟠"
	case core.SeverityMedium:
		return "🟡"
	case core.SeverityLow:
		return "🟢"
	default:
		return "⚪"
	}
}

// severityAlert maps a severity to a GitHub alert type.
func severityAlert(s core.Severity) string {
	switch s {
	case core.SeverityCritical:
		return "CAUTION"
	case core.SeverityHigh:
		return "WARNING"
	case core.SeverityMedium:
		return "IMPORTANT"
	default:
		return "NOTE"
	}
}
