package jobs

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/sevigo/review-warden/internal/core"
)

func names(files []core.ChangedFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Filename)
	}
	return out
}

func TestSelectFiles(t *testing.T) {
	files := []core.ChangedFile{
		{Filename: "main.go", Changes: 10},
		{Filename: "vendor/lib/x.go", Changes: 10},
		{Filename: "web/dist/app.js", Changes: 10},
		{Filename: "README.MD", Changes: 10},
		{Filename: "big.go", Changes: 5001},
		{Filename: "util.go", Changes: 10},
		{Filename: "extra.go", Changes: 10},
	}
	repoCfg := &core.RepoConfig{
		ExcludeDirs: []string{"vendor", "/dist/"},
		ExcludeExts: []string{".md"},
	}

	tests := []struct {
		name      string
		maxFiles  int
		wantFiles []string
		wantNote  string
	}{
		{
			name:      "cap applies after exclusions",
			maxFiles:  2,
			wantFiles: []string{"main.go", "util.go"},
			wantNote:  "Only reviewing 2 of 7 files (3 excluded by repository config, 1 over the size limit, 1 over max_files_per_review)",
		},
		{
			name:      "no cap",
			maxFiles:  0,
			wantFiles: []string{"main.go", "util.go", "extra.go"},
			wantNote:  "Only reviewing 3 of 7 files (3 excluded by repository config, 1 over the size limit)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := SelectFiles(files, repoCfg, tt.maxFiles, 500)
			if diff := cmp.Diff(tt.wantFiles, names(sel.Files)); diff != "" {
				t.Errorf("selected files mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.wantNote, sel.Note())
		})
	}
}

func TestSelectFiles_NothingSkipped(t *testing.T) {
	files := []core.ChangedFile{{Filename: "a.go", Changes: 3}}
	sel := SelectFiles(files, nil, 50, 500)
	assert.Len(t, sel.Files, 1)
	assert.Equal(t, 0, sel.Skipped())
	assert.Empty(t, sel.Note())
}

func TestSelectFiles_SizeBoundary(t *testing.T) {
	files := []core.ChangedFile{
		{Filename: "edge.go", Changes: 5000},
		{Filename: "over.go", Changes: 5001},
	}
	sel := SelectFiles(files, core.DefaultRepoConfig(), 50, 500)
	assert.Equal(t, []string{"edge.go"}, names(sel.Files))
	assert.Equal(t, 1, sel.TooLarge)
}
