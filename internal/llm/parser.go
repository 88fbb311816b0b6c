package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/sevigo/review-warden/internal/core"
)

// flexInt accepts a JSON number, a numeric string or null. Models are not
// consistent about quoting line numbers.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if i := strings.IndexAny(s, "-–"); i > 0 {
		s = s[:i] // "12-14" keeps the first line
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("invalid line number %q", s)
	}
	*f = flexInt(n)
	return nil
}

type rawIssue struct {
	File         string  `json:"file"`
	Line         flexInt `json:"line"`
	EndLine      flexInt `json:"end_line"`
	Severity     string  `json:"severity"`
	Type         string  `json:"type"`
	Description  string  `json:"description"`
	Suggestion   string  `json:"suggestion"`
	OriginalCode string  `json:"original_code"`
}

type rawAnalysis struct {
	Issues                 []json.RawMessage `json:"issues"`
	Summary                string            `json:"summary"`
	ApprovalRecommendation string            `json:"approval_recommendation"`
}

// parseAnalysis decodes a model response into an Analysis. Malformed JSON is
// repaired first; individual issues that are incomplete are skipped.
func parseAnalysis(raw string, filesReviewed int, logger *slog.Logger) (*core.Analysis, error) {
	payload := extractJSONObject(stripMarkdownFence(raw))
	if payload == "" {
		return nil, fmt.Errorf("response contains no JSON object")
	}

	var ra rawAnalysis
	if err := json.Unmarshal([]byte(payload), &ra); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(payload)
		if repairErr != nil {
			return nil, fmt.Errorf("failed to repair JSON response: %w", repairErr)
		}
		if err := json.Unmarshal([]byte(repaired), &ra); err != nil {
			return nil, fmt.Errorf("failed to decode repaired JSON response: %w", err)
		}
		logger.Debug("repaired malformed model response")
	}

	analysis := &core.Analysis{
		Issues:                 []core.Issue{},
		Summary:                strings.TrimSpace(ra.Summary),
		ApprovalRecommendation: core.ParseVerdict(ra.ApprovalRecommendation),
		FilesReviewed:          filesReviewed,
	}
	if analysis.Summary == "" {
		analysis.Summary = "Review completed."
	}

	for i, msg := range ra.Issues {
		issue, err := toIssue(msg)
		if err != nil {
			logger.Warn("skipping malformed issue", "index", i, "error", err)
			continue
		}
		analysis.Issues = append(analysis.Issues, issue)
	}

	analysis.TotalIssues = len(analysis.Issues)
	for _, issue := range analysis.Issues {
		if issue.Severity == core.SeverityCritical || issue.Severity == core.SeverityHigh {
			analysis.CriticalIssues++
		}
	}
	return analysis, nil
}

func toIssue(msg json.RawMessage) (core.Issue, error) {
	var ri rawIssue
	if err := json.Unmarshal(msg, &ri); err != nil {
		return core.Issue{}, err
	}

	file := strings.TrimSpace(strings.Trim(ri.File, "`*"))
	if file == "" {
		return core.Issue{}, fmt.Errorf("missing file")
	}
	if ri.Line <= 0 {
		return core.Issue{}, fmt.Errorf("%s: non-positive line %d", file, ri.Line)
	}
	sev, ok := core.ParseSeverity(ri.Severity)
	if !ok {
		return core.Issue{}, fmt.Errorf("%s:%d: unknown severity %q", file, ri.Line, ri.Severity)
	}
	typ, ok := core.ParseIssueType(ri.Type)
	if !ok {
		return core.Issue{}, fmt.Errorf("%s:%d: unknown issue type %q", file, ri.Line, ri.Type)
	}

	issue := core.Issue{
		File:         file,
		Line:         int(ri.Line),
		Severity:     sev,
		Type:         typ,
		Description:  strings.TrimSpace(ri.Description),
		Suggestion:   ri.Suggestion,
		OriginalCode: ri.OriginalCode,
	}
	if int(ri.EndLine) > issue.Line {
		issue.EndLine = int(ri.EndLine)
	}
	return issue, nil
}

// stripMarkdownFence removes a ```json, ```markdown or bare ``` fence wrapping
// the whole response.
func stripMarkdownFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	idx := strings.Index(trimmed, "\n")
	if idx < 0 {
		return s
	}
	inner := trimmed[idx+1:]
	if lastFence := strings.LastIndex(inner, "```"); lastFence >= 0 {
		inner = inner[:lastFence]
	}
	return strings.TrimSpace(inner)
}

// extractJSONObject drops any preamble before the first brace and, when the
// result is valid, trailing prose after the last one. Anything else is left
// for repair.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	if end := strings.LastIndex(s, "}"); end > start && json.Valid([]byte(s[start:end+1])) {
		return s[start : end+1]
	}
	return strings.TrimSpace(s[start:])
}
