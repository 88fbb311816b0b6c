package jobs

import (
	"fmt"
	"path"
	"strings"

	"github.com/sevigo/review-warden/internal/core"
)

// linesPerKB turns max_file_size_kb into a budget of changed lines, assuming
// roughly 100 bytes per line.
const linesPerKB = 10

// FileSelection is the outcome of picking the files to review.
type FileSelection struct {
	Files    []core.ChangedFile
	Excluded int
	TooLarge int
	Capped   int
	Total    int
}

// Skipped is the number of changed files left out of the review.
func (s FileSelection) Skipped() int { return s.Total - len(s.Files) }

// Note describes the skipped files, or returns "" when nothing was skipped.
func (s FileSelection) Note() string {
	if s.Skipped() == 0 {
		return ""
	}
	var reasons []string
	if s.Excluded > 0 {
		reasons = append(reasons, fmt.Sprintf("%d excluded by repository config", s.Excluded))
	}
	if s.TooLarge > 0 {
		reasons = append(reasons, fmt.Sprintf("%d over the size limit", s.TooLarge))
	}
	if s.Capped > 0 {
		reasons = append(reasons, fmt.Sprintf("%d over max_files_per_review", s.Capped))
	}
	return fmt.Sprintf("Only reviewing %d of %d files (%s)", len(s.Files), s.Total, strings.Join(reasons, ", "))
}

// SelectFiles drops excluded and oversized files, then caps the rest at
// maxFiles. Order is preserved.
func SelectFiles(files []core.ChangedFile, repoCfg *core.RepoConfig, maxFiles, maxFileSizeKB int) FileSelection {
	if repoCfg == nil {
		repoCfg = core.DefaultRepoConfig()
	}
	sel := FileSelection{Total: len(files)}

	for _, f := range files {
		switch {
		case excluded(f.Filename, repoCfg):
			sel.Excluded++
		case maxFileSizeKB > 0 && f.Changes > maxFileSizeKB*linesPerKB:
			sel.TooLarge++
		case maxFiles > 0 && len(sel.Files) >= maxFiles:
			sel.Capped++
		default:
			sel.Files = append(sel.Files, f)
		}
	}
	return sel
}

func excluded(filename string, cfg *core.RepoConfig) bool {
	ext := strings.ToLower(path.Ext(filename))
	for _, e := range cfg.ExcludeExts {
		e = "." + strings.TrimPrefix(strings.ToLower(e), ".")
		if ext != "" && ext == e {
			return true
		}
	}

	for _, dir := range cfg.ExcludeDirs {
		dir = strings.Trim(dir, "/")
		if dir == "" {
			continue
		}
		if strings.HasPrefix(filename, dir+"/") || strings.Contains(filename, "/"+dir+"/") {
			return true
		}
	}
	return false
}
