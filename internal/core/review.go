package core

import (
	"strings"
	"time"
)

// Verdict is the overall disposition of a review.
type Verdict string

const (
	VerdictApprove        Verdict = "APPROVE"
	VerdictRequestChanges Verdict = "REQUEST_CHANGES"
	VerdictComment        Verdict = "COMMENT"
)

// NeutralVerdict is accepted on every pull request, including self-authored ones.
const NeutralVerdict = VerdictComment

// ParseVerdict normalizes free text into a Verdict. Anything unrecognized
// becomes the neutral verdict.
func ParseVerdict(s string) Verdict {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, " ", "_")
	switch Verdict(v) {
	case VerdictApprove, VerdictRequestChanges, VerdictComment:
		return Verdict(v)
	default:
		return NeutralVerdict
	}
}

// Severity ranks an issue.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// SeverityOrder lists severities from most to least severe.
var SeverityOrder = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}

// ParseSeverity reports whether s names a known severity.
func ParseSeverity(s string) (Severity, bool) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range SeverityOrder {
		if sev == known {
			return sev, true
		}
	}
	return "", false
}

// IssueType categorizes an issue.
type IssueType string

const (
	IssueBug             IssueType = "bug"
	IssueSecurity        IssueType = "security"
	IssuePerformance     IssueType = "performance"
	IssueStyle           IssueType = "style"
	IssueMaintainability IssueType = "maintainability"
	IssueBestPractice    IssueType = "best_practice"
)

// ParseIssueType reports whether s names a known issue type.
func ParseIssueType(s string) (IssueType, bool) {
	t := IssueType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case IssueBug, IssueSecurity, IssuePerformance, IssueStyle, IssueMaintainability, IssueBestPractice:
		return t, true
	default:
		return "", false
	}
}

// Issue is a single finding produced by the analysis step. Line numbers are
// untrusted until they have been checked against the file's patch.
type Issue struct {
	File         string    `json:"file"`
	Line         int       `json:"line"`
	EndLine      int       `json:"end_line,omitempty"`
	Severity     Severity  `json:"severity"`
	Type         IssueType `json:"type"`
	Description  string    `json:"description"`
	Suggestion   string    `json:"suggestion,omitempty"`
	OriginalCode string    `json:"original_code,omitempty"`
}

// Analysis is the complete result of analyzing a pull request.
type Analysis struct {
	Issues                 []Issue `json:"issues"`
	Summary                string  `json:"summary"`
	ApprovalRecommendation Verdict `json:"approval_recommendation"`
	FilesReviewed          int     `json:"files_reviewed"`
	TotalIssues            int     `json:"total_issues"`
	CriticalIssues         int     `json:"critical_issues"`
}

// ProposedComment is an inline comment as suggested upstream, before its line
// has been validated.
type ProposedComment struct {
	Path    string
	Line    int
	EndLine int
	Side    string
	Body    string
}

// PullRequest holds the pull request metadata the review needs.
type PullRequest struct {
	Owner   string
	Repo    string
	Number  int
	Title   string
	Body    string
	State   string
	HeadSHA string
	BaseSHA string
	HeadRef string
	BaseRef string
	Author  string
	HTMLURL string
}

// FullName returns "owner/repo".
func (pr *PullRequest) FullName() string {
	return pr.Owner + "/" + pr.Repo
}

// ChangedFile is a file touched by a pull request.
type ChangedFile struct {
	Filename  string
	Status    string // added, removed, modified, renamed
	Additions int
	Deletions int
	Changes   int
	Patch     string
	SHA       string
}

// ReviewRecord is a persisted review attempt.
type ReviewRecord struct {
	ID              string    `db:"id" json:"id"`
	RepoFullName    string    `db:"repo_full_name" json:"repo_full_name"`
	PRNumber        int       `db:"pr_number" json:"pr_number"`
	HeadSHA         string    `db:"head_sha" json:"head_sha"`
	Outcome         string    `db:"outcome" json:"outcome"`
	GitHubReviewID  *int64    `db:"github_review_id" json:"github_review_id,omitempty"`
	Verdict         string    `db:"verdict" json:"verdict"`
	InlineComments  int       `db:"inline_comments" json:"inline_comments"`
	OverflowPosted  int       `db:"overflow_posted" json:"overflow_posted"`
	DroppedComments int       `db:"dropped_comments" json:"dropped_comments"`
	Errors          []string  `db:"-" json:"errors"`
	Body            string    `db:"body" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
