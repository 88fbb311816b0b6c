package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/logger"
	"github.com/sevigo/review-warden/mocks"
)

func TestFetchContents(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	pr := &core.PullRequest{Owner: "o", Repo: "r", HeadSHA: "sha"}

	files := []core.ChangedFile{
		{Filename: "ok.go", Status: "modified"},
		{Filename: "broken.go", Status: "modified"},
		{Filename: "missing.go", Status: "added"},
		{Filename: "deleted.go", Status: "removed"},
	}

	client.EXPECT().GetFileContent(gomock.Any(), "o", "r", "ok.go", "sha").Return("package ok", true, nil)
	client.EXPECT().GetFileContent(gomock.Any(), "o", "r", "broken.go", "sha").Return("", false, errors.New("502 Bad Gateway"))
	client.EXPECT().GetFileContent(gomock.Any(), "o", "r", "missing.go", "sha").Return("", false, nil)

	got := fetchContents(context.Background(), client, pr, files, logger.Discard())
	assert.Equal(t, map[string]string{"ok.go": "package ok"}, got)
}
