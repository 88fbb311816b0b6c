package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	gh "github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/logger"
	"github.com/sevigo/review-warden/internal/publish"
)

func newTestClient(t *testing.T, mux *http.ServeMux) (Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := gh.NewClient(nil)
	u, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	c.BaseURL = u
	return NewGitHubClient(c, logger.Discard()), srv
}

func TestGetPullRequest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r/pulls/7", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"number":7,"title":"Add cache","body":"details","state":"open",
			"html_url":"https://github.com/o/r/pull/7","user":{"login":"dev"},
			"head":{"sha":"h1","ref":"feature"},"base":{"sha":"b1","ref":"main"}}`)
	})
	client, _ := newTestClient(t, mux)

	pr, err := client.GetPullRequest(context.Background(), "o", "r", 7)
	require.NoError(t, err)
	assert.Equal(t, &core.PullRequest{
		Owner: "o", Repo: "r", Number: 7, Title: "Add cache", Body: "details", State: "open",
		HeadSHA: "h1", BaseSHA: "b1", HeadRef: "feature", BaseRef: "main", Author: "dev",
		HTMLURL: "https://github.com/o/r/pull/7",
	}, pr)
}

func TestGetChangedFiles_Paginates(t *testing.T) {
	mux := http.NewServeMux()
	var srvURL string
	mux.HandleFunc("GET /repos/o/r/pulls/1/files", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"filename":"b.go","status":"added","additions":3,"changes":3,"patch":"@@ -0,0 +1,3 @@\n+a\n+b\n+c"}]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/repos/o/r/pulls/1/files?page=2&per_page=100>; rel="next"`, srvURL))
		fmt.Fprint(w, `[{"filename":"a.go","status":"modified","additions":1,"deletions":1,"changes":2,"sha":"s1","patch":"@@ -1 +1 @@\n-x\n+y"}]`)
	})
	client, srv := newTestClient(t, mux)
	srvURL = srv.URL

	files, err := client.GetChangedFiles(context.Background(), "o", "r", 1)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, core.ChangedFile{
		Filename: "a.go", Status: "modified", Additions: 1, Deletions: 1, Changes: 2, SHA: "s1",
		Patch: "@@ -1 +1 @@\n-x\n+y",
	}, files[0])
	assert.Equal(t, "added", files[1].Status)
}

func TestGetFileContent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r/contents/main.go", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "feature", r.URL.Query().Get("ref"))
		enc := base64.StdEncoding.EncodeToString([]byte("package main\n"))
		fmt.Fprintf(w, `{"type":"file","encoding":"base64","name":"main.go","path":"main.go","content":%q}`, enc)
	})
	mux.HandleFunc("GET /repos/o/r/contents/missing.go", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})
	mux.HandleFunc("GET /repos/o/r/contents/broken.go", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message":"boom"}`)
	})
	client, _ := newTestClient(t, mux)
	ctx := context.Background()

	content, found, err := client.GetFileContent(ctx, "o", "r", "main.go", "feature")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "package main\n", content)

	content, found, err = client.GetFileContent(ctx, "o", "r", "missing.go", "feature")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, content)

	_, _, err = client.GetFileContent(ctx, "o", "r", "broken.go", "feature")
	assert.Error(t, err)
}

func TestReviewTarget_CreateReview(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/o/r/pulls/3/reviews", func(w http.ResponseWriter, r *http.Request) {
		var req gh.PullRequestReviewRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sha", req.GetCommitID())
		assert.Equal(t, "APPROVE", req.GetEvent())
		require.Len(t, req.Comments, 2)
		assert.Equal(t, "RIGHT", req.Comments[0].GetSide())
		assert.Nil(t, req.Comments[0].StartLine)
		assert.Equal(t, 2, req.Comments[1].GetStartLine())
		assert.Equal(t, 4, req.Comments[1].GetLine())
		fmt.Fprint(w, `{"id":501}`)
	})
	client, _ := newTestClient(t, mux)
	target := NewReviewTarget(client, "o", "r", 3)

	id, err := target.CreateReview(context.Background(), publish.Submission{
		CommitID: "sha",
		Body:     "body",
		Verdict:  core.VerdictApprove,
		Comments: []publish.Comment{
			{Path: "a.go", Line: 3, Side: "RIGHT", Body: "x"},
			{Path: "a.go", StartLine: 2, Line: 4, Side: "RIGHT", Body: "y"},
		},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 501, id)
}

func TestReviewTarget_ConvertsRejections(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/o/r/pulls/3/reviews", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message":"Unprocessable Entity","errors":[{"message":"Review Can not approve your own pull request"}]}`)
	})
	mux.HandleFunc("POST /repos/o/r/issues/3/comments", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":9}`)
	})
	mux.HandleFunc("POST /repos/o/r/pulls/3/comments", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"Resource not accessible by integration"}`)
	})
	client, _ := newTestClient(t, mux)
	target := NewReviewTarget(client, "o", "r", 3)
	ctx := context.Background()

	_, err := target.CreateReview(ctx, publish.Submission{CommitID: "sha", Verdict: core.VerdictApprove})
	var apiErr *publish.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Contains(t, apiErr.Text, "own pull request")
	assert.Equal(t, publish.RejectionSelfReview, publish.Classify(err))

	_, err = target.CreateSingleComment(ctx, "sha", publish.Comment{Path: "a.go", Line: 1, Side: "RIGHT", Body: "x"})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, publish.RejectionUnknown, publish.Classify(err))

	id, err := target.CreateThreadComment(ctx, "fallback")
	require.NoError(t, err)
	assert.EqualValues(t, 9, id)
}
