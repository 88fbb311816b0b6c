// Package diff reconstructs commentable line coordinates from unified diffs.
package diff

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Side identifies which version of a file a line number refers to.
type Side string

const (
	// SideLeft is the old version of the file (removed lines).
	SideLeft Side = "LEFT"
	// SideRight is the new version of the file (added lines).
	SideRight Side = "RIGHT"
)

var hunkHeaderRegex = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Hunk holds the coordinates announced by a hunk header.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
}

// ParseHunkHeader parses a line of the form "@@ -a[,c] +b[,d] @@".
// An omitted count means a count of one.
func ParseHunkHeader(line string) (Hunk, bool) {
	m := hunkHeaderRegex.FindStringSubmatch(line)
	if m == nil {
		return Hunk{}, false
	}
	var h Hunk
	var err error
	if h.OldStart, err = strconv.Atoi(m[1]); err != nil {
		return Hunk{}, false
	}
	if h.NewStart, err = strconv.Atoi(m[3]); err != nil {
		return Hunk{}, false
	}
	h.OldCount = countOrOne(m[2])
	h.NewCount = countOrOne(m[4])
	return h, true
}

func countOrOne(s string) int {
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return n
}

// LineSet is a set of positive line numbers.
type LineSet map[int]struct{}

// Contains reports whether line is in the set.
func (s LineSet) Contains(line int) bool {
	_, ok := s[line]
	return ok
}

// Len returns the number of lines in the set.
func (s LineSet) Len() int { return len(s) }

// Sorted returns the members in ascending order.
func (s LineSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// LineSets holds the commentable lines of a single file patch.
type LineSets struct {
	Left  LineSet
	Right LineSet
}

// Side returns the set for the given side. Unknown sides yield an empty set.
func (ls LineSets) Side(side Side) LineSet {
	switch side {
	case SideLeft:
		return ls.Left
	case SideRight:
		return ls.Right
	default:
		return LineSet{}
	}
}

// Empty reports whether neither side has a commentable line.
func (ls LineSets) Empty() bool {
	return len(ls.Left) == 0 && len(ls.Right) == 0
}

// Parse scans a unified diff and collects the old-side numbers of removed lines
// and the new-side numbers of added lines. Context lines advance both counters
// without entering either set. Lines before the first valid hunk header,
// lines following a malformed "@@" header, and file headers after a "diff "
// line are not attributed.
func Parse(patch string) LineSets {
	sets := LineSets{Left: LineSet{}, Right: LineSet{}}
	if patch == "" {
		return sets
	}

	inHunk := false
	left, right := 0, 0

	for _, line := range strings.Split(patch, "\n") {
		if strings.HasPrefix(line, "@@") {
			h, ok := ParseHunkHeader(line)
			inHunk = ok
			if ok {
				left, right = h.OldStart, h.NewStart
			}
			continue
		}
		if strings.HasPrefix(line, "diff ") {
			inHunk = false
			continue
		}
		if !inHunk {
			continue
		}

		// Inside a hunk "+++" and "---" are content whose text starts with "++" or "--".
		switch {
		case strings.HasPrefix(line, "+"):
			sets.Right[right] = struct{}{}
			right++
		case strings.HasPrefix(line, "-"):
			sets.Left[left] = struct{}{}
			left++
		case strings.HasPrefix(line, " "):
			left++
			right++
		}
	}

	return sets
}

// IsValidLine reports whether line on side can receive a comment in patch.
func IsValidLine(patch string, line int, side Side) bool {
	return Parse(patch).Side(side).Contains(line)
}
