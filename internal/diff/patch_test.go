package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		patch     string
		wantRight []int
		wantLeft  []int
	}{
		{
			name:      "single added line between context",
			patch:     "@@ -1,2 +1,3 @@\n line1\n+line2\n line3",
			wantRight: []int{2},
			wantLeft:  []int{},
		},
		{
			name:      "empty patch",
			patch:     "",
			wantRight: []int{},
			wantLeft:  []int{},
		},
		{
			name:      "no hunk header",
			patch:     "+orphan\n-removed\n context",
			wantRight: []int{},
			wantLeft:  []int{},
		},
		{
			name:      "replacement advances both sides independently",
			patch:     "@@ -10,3 +10,3 @@\n a\n-b\n+B\n c",
			wantRight: []int{11},
			wantLeft:  []int{11},
		},
		{
			name: "file headers and no-newline marker are ignored",
			patch: "diff --git a/x.go b/x.go\n--- a/x.go\n+++ b/x.go\n" +
				"@@ -1 +1,2 @@\n-old\n+new\n+more\n\\ No newline at end of file",
			wantRight: []int{1, 2},
			wantLeft:  []int{1},
		},
		{
			name:      "content lines starting with ++ or -- are counted",
			patch:     "@@ -1,3 +1,4 @@\n a\n+++i;\n+x\n---y\n b",
			wantRight: []int{2, 3},
			wantLeft:  []int{2},
		},
		{
			name: "second file headers are not attributed",
			patch: "diff --git a/x.go b/x.go\n--- a/x.go\n+++ b/x.go\n@@ -1 +1 @@\n-o\n+n\n" +
				"diff --git a/y.go b/y.go\n--- a/y.go\n+++ b/y.go\n@@ -5 +5 @@\n-p\n+q",
			wantRight: []int{1, 5},
			wantLeft:  []int{1, 5},
		},
		{
			name:      "multiple hunks reset counters",
			patch:     "@@ -1,2 +1,3 @@\n a\n+b\n c\n@@ -20,2 +21,3 @@\n x\n+y\n z",
			wantRight: []int{2, 22},
			wantLeft:  []int{},
		},
		{
			name:      "malformed header suspends attribution",
			patch:     "@@ -1,1 +1,2 @@\n+a\n@@ garbage @@\n+b\n@@ -5 +6 @@\n+c",
			wantRight: []int{1, 6},
			wantLeft:  []int{},
		},
		{
			name:      "hunk header with trailing section heading",
			patch:     "@@ -3,4 +3,5 @@ func main() {\n a\n+b\n c",
			wantRight: []int{4},
			wantLeft:  []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.patch)
			assert.Equal(t, tt.wantRight, got.Right.Sorted())
			assert.Equal(t, tt.wantLeft, got.Left.Sorted())
		})
	}
}

func TestParse_RightLinesStayInsideSingleHunk(t *testing.T) {
	patches := []string{
		"@@ -1,2 +1,3 @@\n line1\n+line2\n line3",
		"@@ -40,6 +40,8 @@\n a\n-b\n+c\n+d\n+e\n f\n g\n h\n i",
		"@@ -0,0 +1,3 @@\n+a\n+b\n+c",
		"@@ -7,3 +7 @@\n-a\n-b\n c",
	}

	for _, patch := range patches {
		header, _, _ := strings.Cut(patch, "\n")
		h, ok := ParseHunkHeader(header)
		require.True(t, ok, "header %q", header)

		for _, n := range Parse(patch).Right.Sorted() {
			assert.GreaterOrEqual(t, n, h.NewStart, "patch %q", patch)
			assert.LessOrEqual(t, n, h.NewStart+h.NewCount-1, "patch %q", patch)
		}
	}
}

func TestParseHunkHeader(t *testing.T) {
	h, ok := ParseHunkHeader("@@ -12 +14,0 @@")
	require.True(t, ok)
	assert.Equal(t, Hunk{OldStart: 12, OldCount: 1, NewStart: 14, NewCount: 0}, h)

	_, ok = ParseHunkHeader("@@ nope @@")
	assert.False(t, ok)
}

func TestIsValidLine(t *testing.T) {
	patch := "@@ -10,3 +10,3 @@\n a\n-b\n+B\n c"

	assert.True(t, IsValidLine(patch, 11, SideRight))
	assert.True(t, IsValidLine(patch, 11, SideLeft))
	assert.False(t, IsValidLine(patch, 10, SideRight))
	assert.False(t, IsValidLine(patch, 11, Side("MIDDLE")))
}
