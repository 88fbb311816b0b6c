package publish

import (
	"fmt"
	"strings"

	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/diff"
)

// Comment is an inline comment whose line is known to be commentable. It is
// always placed on the RIGHT side.
type Comment struct {
	Path      string
	Line      int
	StartLine int // set for multi-line comments, always < Line
	Side      diff.Side
	Body      string
}

// Location renders "path:line" or "path:start-end".
func (c Comment) Location() string {
	if c.StartLine > 0 {
		return fmt.Sprintf("%s:%d-%d", c.Path, c.StartLine, c.Line)
	}
	return fmt.Sprintf("%s:%d", c.Path, c.Line)
}

// Dropped records a proposed comment that could not be anchored.
type Dropped struct {
	Index  int
	Path   string
	Line   int
	Reason string
}

// Resolution is the outcome of validating every proposed comment of a review.
type Resolution struct {
	Comments []Comment
	// Lines holds the anchored line for each proposed comment by index, or 0
	// when the comment was dropped.
	Lines     []int
	Dropped   []Dropped
	Corrected int
}

// Resolver anchors proposed comments to commentable lines.
type Resolver struct {
	Locator diff.Locator
}

// Resolve validates proposed comments against idx. Valid lines are kept,
// near misses are moved to the nearest added line and unresolvable comments
// are dropped with a reason. Input order is preserved.
func (r Resolver) Resolve(idx diff.Index, proposed []core.ProposedComment) Resolution {
	res := Resolution{Lines: make([]int, len(proposed))}

	for i, pc := range proposed {
		path, sets, ok := idx.Lookup(pc.Path)
		if !ok {
			res.Dropped = append(res.Dropped, Dropped{
				Index: i, Path: pc.Path, Line: pc.Line,
				Reason: fmt.Sprintf("%s:%d not in diff (file not changed)", pc.Path, pc.Line),
			})
			continue
		}

		line, found := r.Locator.Nearest(sets.Right, pc.Line)
		if !found {
			res.Dropped = append(res.Dropped, Dropped{
				Index: i, Path: pc.Path, Line: pc.Line,
				Reason: fmt.Sprintf("%s:%d not in diff", pc.Path, pc.Line),
			})
			continue
		}
		if line != pc.Line {
			res.Corrected++
		}

		c := Comment{Path: path, Line: line, Side: diff.SideRight, Body: pc.Body}
		exact := line == pc.Line
		if exact && pc.EndLine > line {
			if spans(sets.Right, line, pc.EndLine) {
				c.StartLine = line
				c.Line = pc.EndLine
			} else {
				exact = false
			}
		}
		if !exact {
			c.Body = demoteSuggestion(c.Body)
		}
		res.Lines[i] = line
		res.Comments = append(res.Comments, c)
	}
	return res
}

// demoteSuggestion turns applicable suggestion blocks into plain code blocks.
// A suggestion replaces the lines the comment is anchored to, so it is only
// kept when the comment sits exactly where it was proposed.
func demoteSuggestion(body string) string {
	return strings.ReplaceAll(body, "```suggestion\n", "**Suggestion:**\n```\n")
}

// spans reports whether every line in [from, to] is commentable, which keeps a
// multi-line comment inside a single run of added lines.
func spans(set diff.LineSet, from, to int) bool {
	for n := from; n <= to; n++ {
		if !set.Contains(n) {
			return false
		}
	}
	return true
}
