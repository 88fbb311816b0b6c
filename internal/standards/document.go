package standards

import (
	"fmt"
	"strings"

	"github.com/sevigo/goframe/schema"
)

// DefaultChunkChars bounds the content stored per vector document.
const DefaultChunkChars = 1800

// Metadata keys stored with each vector document.
const (
	metaID         = "standard_id"
	metaType       = "standard_type"
	metaTitle      = "title"
	metaCodeSample = "code_sample"
	metaSeverity   = "severity"
	metaLanguage   = "language"
	metaTags       = "tags"
	metaGlobs      = "applies_to_globs"
	metaAffected   = "affected_files"
	metaSource     = "source_file"
	metaChunk      = "chunk"
)

// Documents splits a standard into vector documents, one per content chunk.
// Every chunk carries the full metadata so filtering works on any hit.
func (s Standard) Documents(maxChars int) []schema.Document {
	chunks := chunkText(s.Content, maxChars)
	if len(chunks) == 0 {
		chunks = []string{""}
	}

	docs := make([]schema.Document, 0, len(chunks))
	for i, chunk := range chunks {
		docs = append(docs, schema.Document{
			PageContent: chunk,
			Metadata: map[string]any{
				metaID:         s.ID,
				metaType:       string(s.Type),
				metaTitle:      s.Title,
				metaCodeSample: s.CodeSample,
				metaSeverity:   s.Severity,
				metaLanguage:   s.Language,
				metaTags:       s.Tags,
				metaGlobs:      s.AppliesToGlobs,
				metaAffected:   s.AffectedFiles,
				metaSource:     s.Source,
				metaChunk:      fmt.Sprintf("%s-%d", s.ID, i+1),
			},
		})
	}
	return docs
}

// hit is a retrieved document decoded back into the fields retrieval needs.
type hit struct {
	Title          string
	Type           Type
	Content        string
	CodeSample     string
	AppliesToGlobs []string
	AffectedFiles  []string
}

func hitFromDocument(doc schema.Document) hit {
	return hit{
		Title:          metaString(doc.Metadata, metaTitle, "name", metaID),
		Type:           Type(strings.ToLower(metaString(doc.Metadata, metaType))),
		Content:        firstNonEmpty(doc.PageContent, metaString(doc.Metadata, "content")),
		CodeSample:     metaString(doc.Metadata, metaCodeSample),
		AppliesToGlobs: metaStrings(doc.Metadata, metaGlobs),
		AffectedFiles:  metaStrings(doc.Metadata, metaAffected),
	}
}

// metaString returns the first non-blank string stored under keys.
func metaString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// metaStrings reads a string list. Vector stores hand lists back as []any.
func metaStrings(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// chunkText packs Markdown sections (split before "# " and "## " headings)
// into chunks of at most maxChars. Oversized sections are cut hard.
func chunkText(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultChunkChars
	}

	var chunks []string
	var current string
	for _, block := range splitSections(text) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if len(current)+len(block)+2 <= maxChars {
			current = strings.TrimSpace(current + "\n\n" + block)
			continue
		}
		if current != "" {
			chunks = append(chunks, current)
			current = ""
		}
		if len(block) <= maxChars {
			current = block
			continue
		}
		for i := 0; i < len(block); i += maxChars {
			chunks = append(chunks, block[i:min(i+maxChars, len(block))])
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

func splitSections(text string) []string {
	var sections []string
	var b strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 && (strings.HasPrefix(line, "# ") || strings.HasPrefix(line, "## ")) {
			sections = append(sections, b.String())
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	sections = append(sections, b.String())
	return sections
}
