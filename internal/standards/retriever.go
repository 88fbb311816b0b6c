package standards

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tidwall/match"

	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/storage"
)

const (
	// MaxQueryChars caps the similarity query.
	MaxQueryChars = 2000
	// MaxQueryAddedLines caps the added lines sampled into the query.
	MaxQueryAddedLines = 50

	// overfetch widens the search so scoped standards filtered out afterwards
	// do not starve the result.
	overfetch = 3
)

// Context is the standards context handed to analysis.
type Context struct {
	Text  string
	Types []string
}

// Empty reports whether no standard was retrieved.
func (c Context) Empty() bool { return c.Text == "" }

// Retriever finds the standards relevant to a pull request. It never fails:
// errors degrade to an empty Context.
type Retriever interface {
	Retrieve(ctx context.Context, pr *core.PullRequest, files []core.ChangedFile) Context
}

// NopRetriever is used when retrieval is disabled.
type NopRetriever struct{}

func (NopRetriever) Retrieve(context.Context, *core.PullRequest, []core.ChangedFile) Context {
	return Context{}
}

// Options tune a vector-backed Retriever.
type Options struct {
	Collection string
	TopK       int
	MaxChars   int
}

type vectorRetriever struct {
	store  storage.VectorStore
	opts   Options
	logger *slog.Logger
}

// NewRetriever returns a Retriever backed by store.
func NewRetriever(store storage.VectorStore, opts Options, logger *slog.Logger) Retriever {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = 1200
	}
	return &vectorRetriever{store: store, opts: opts, logger: logger}
}

func (r *vectorRetriever) Retrieve(ctx context.Context, pr *core.PullRequest, files []core.ChangedFile) Context {
	query := BuildQuery(pr, files)
	if query == "" {
		return Context{}
	}

	docs, err := r.store.SimilaritySearch(ctx, r.opts.Collection, query, r.opts.TopK*overfetch)
	if err != nil {
		r.logger.Warn("standards retrieval failed, continuing without standards",
			"collection", r.opts.Collection, "error", err)
		return Context{}
	}

	changed := make([]string, 0, len(files))
	for _, f := range files {
		changed = append(changed, f.Filename)
	}

	var hits []hit
	for _, doc := range docs {
		h := hitFromDocument(doc)
		if applies(h, changed) {
			hits = append(hits, h)
		}
		if len(hits) == r.opts.TopK {
			break
		}
	}
	if len(hits) == 0 {
		return Context{}
	}

	sections := []string{fmt.Sprintf("### Coding Standards (%s)", r.opts.Collection)}
	for _, h := range hits {
		sections = append(sections, formatHit(h, r.opts.MaxChars))
	}

	r.logger.Debug("standards retrieved", "pr", pr.Number, "hits", len(hits), "candidates", len(docs))
	return Context{
		Text:  strings.Join(sections, "\n\n"),
		Types: distinctTypes(hits),
	}
}

// BuildQuery assembles the similarity query: title, body, changed file names
// and a sample of added lines.
func BuildQuery(pr *core.PullRequest, files []core.ChangedFile) string {
	var parts []string
	if pr != nil {
		parts = append(parts, pr.Title, pr.Body)
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Filename)
	}
	parts = append(parts, strings.Join(names, " "))

	var added []string
sample:
	for _, f := range files {
		for _, line := range strings.Split(f.Patch, "\n") {
			if strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++") {
				added = append(added, strings.TrimSpace(line[1:]))
				if len(added) >= MaxQueryAddedLines {
					break sample
				}
			}
		}
	}
	parts = append(parts, strings.Join(added, " "))

	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	query := strings.TrimSpace(strings.Join(nonEmpty, "\n"))
	return truncate(query, MaxQueryChars)
}

// applies keeps unscoped standards and scoped ones that name a changed file,
// directly or through a glob. Globs follow shell rules where "*" also
// crosses directory separators.
func applies(h hit, changed []string) bool {
	if !h.Type.Scoped() {
		return h.Type.valid()
	}
	for _, file := range changed {
		for _, f := range h.AffectedFiles {
			if f == file {
				return true
			}
		}
		for _, g := range h.AppliesToGlobs {
			if match.Match(file, g) {
				return true
			}
		}
	}
	return false
}

func formatHit(h hit, maxChars int) string {
	title := h.Title
	if title == "" {
		title = "Untitled"
	}
	parts := []string{"- Title: " + title}
	if h.Content != "" {
		parts = append(parts, "  Content: "+truncate(h.Content, maxChars))
	}
	if h.CodeSample != "" {
		parts = append(parts, "  Code Sample:\n"+truncate(h.CodeSample, maxChars))
	}
	return strings.Join(parts, "\n")
}

func distinctTypes(hits []hit) []string {
	var types []string
	seen := make(map[Type]bool)
	for _, h := range hits {
		if h.Type == "" || seen[h.Type] {
			continue
		}
		seen[h.Type] = true
		types = append(types, string(h.Type))
	}
	return types
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
