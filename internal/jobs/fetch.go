package jobs

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/github"
)

// fetchContents downloads the head version of every non-removed file, one
// goroutine per file. A failed fetch only loses that file's content, so the
// group never cancels its siblings.
func fetchContents(ctx context.Context, client github.Client, pr *core.PullRequest, files []core.ChangedFile, logger *slog.Logger) map[string]string {
	var (
		mu       sync.Mutex
		g        errgroup.Group
		contents = make(map[string]string, len(files))
	)

	for _, f := range files {
		if f.Status == "removed" {
			continue
		}
		g.Go(func() error {
			content, found, err := client.GetFileContent(ctx, pr.Owner, pr.Repo, f.Filename, pr.HeadSHA)
			if err != nil {
				logger.Warn("failed to fetch file content", "file", f.Filename, "ref", pr.HeadSHA, "error", err)
				return nil
			}
			if !found {
				logger.Debug("file content not found", "file", f.Filename)
				return nil
			}
			mu.Lock()
			contents[f.Filename] = content
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return contents
}
