package audit_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devops-trace/internal/audit"
	"devops-trace/internal/azdo"
	"devops-trace/internal/config"
	"devops-trace/internal/models"
)

// newAuditServer fakes the full API surface for one scenario: feature 100
// with children 101 and 102, where 101 links pull request 5 on repository
// "svc" and 102 links nothing.
func newAuditServer(t *testing.T) *httptest.Server {
	t.Helper()

	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(v))
	}

	relations := map[int][]map[string]any{
		100: {
			{"rel": "System.LinkTypes.Hierarchy-Forward", "url": "https://dev.azure.com/org/_apis/wit/workItems/101"},
			{"rel": "System.LinkTypes.Hierarchy-Forward", "url": "https://dev.azure.com/org/_apis/wit/workItems/102"},
		},
		101: {
			{"rel": "ArtifactLink", "url": "vstfs:///Git/PullRequestId/x", "attributes": map[string]any{"pullRequestId": 5}},
		},
		102: nil,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/wit/workitems/"):
			parts := strings.Split(r.URL.Path, "/")
			id, err := strconv.Atoi(parts[len(parts)-1])
			require.NoError(t, err)

			if r.URL.Query().Get("fields") != "" {
				writeJSON(w, map[string]any{
					"id":     id,
					"fields": map[string]any{"System.TeamProject": "ProjA", "System.State": "Closed"},
				})
				return
			}
			writeJSON(w, map[string]any{"id": id, "relations": relations[id]})

		case strings.Contains(r.URL.Path, "/git/pullrequests/5"):
			writeJSON(w, map[string]any{
				"pullRequestId": 5,
				"status":        "active",
				"title":         "Implement feature",
				"url":           "https://dev.azure.com/org/ProjA/_apis/git/pullRequests/5",
				"creationDate":  "2024-01-01T00:00:00.000Z",
				"targetRefName": "refs/heads/main",
				"repository":    map[string]any{"name": "svc"},
				"reviewers": []map[string]any{
					{"displayName": "Alice"},
				},
				"lastMergeSourceCommit": map[string]any{"commitId": "abc123"},
				"lastMergeTargetCommit": map[string]any{"commitId": "def456"},
			})

		case strings.HasSuffix(r.URL.Path, "/diffs/commits"):
			writeJSON(w, map[string]any{"changes": []map[string]any{
				{"item": map[string]any{"path": "/src/main.go"}},
			}})

		case strings.HasSuffix(r.URL.Path, "/diffs/contents"):
			writeJSON(w, map[string]any{"addLineCount": 3, "deleteLineCount": 1})

		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newRunner(t *testing.T, resultsDir string) *audit.Runner {
	t.Helper()

	srv := newAuditServer(t)
	client := azdo.New(azdo.Config{Organization: "org", PAT: "p", BaseURL: srv.URL}, nil)

	seed := &config.Seed{ParentFeatureIDs: config.IDList{100}}
	return audit.NewRunner(client, seed, resultsDir, nil)
}

func TestRunner_EndToEnd(t *testing.T) {
	runner := newRunner(t, t.TempDir())

	require.NoError(t, runner.Run(context.Background()))

	res, err := runner.Results()
	require.NoError(t, err)

	assert.Equal(t, []int{100, 101, 102}, res.WorkItemIDs)

	require.Len(t, res.Records, 1)
	rec := res.Records[0]
	assert.Equal(t, "svc", rec.Repository)
	assert.Equal(t, "main", rec.TargetBranch)
	assert.Equal(t, "abc123", rec.CommitID)

	require.Len(t, res.Details, 1)
	assert.Equal(t, 101, res.Details[0].WorkItemID)

	require.Len(t, res.Diffs, 1)
	assert.Equal(t, 5, res.Diffs[0].PullRequestID)
	assert.Equal(t, 4, res.Diffs[0].Diff.Modified)

	svc := res.Summary["svc"]
	require.NotNil(t, svc)
	main := svc.Branches["main"]
	require.NotNil(t, main)
	expected := models.CommitRef{Date: "2024-01-01T00:00:00.000Z", Hash: "abc123"}
	assert.Equal(t, expected, main.OldestCommit)
	assert.Equal(t, expected, main.NewestCommit)
	assert.Equal(t, []string{"Alice"}, svc.Reviewers)
}

func TestRunner_SaveArtifacts(t *testing.T) {
	dir := t.TempDir()
	runner := newRunner(t, dir)

	require.NoError(t, runner.Run(context.Background()))

	paths, err := runner.SaveArtifacts()
	require.NoError(t, err)

	data, err := os.ReadFile(paths.Summary)
	require.NoError(t, err)
	var summary models.Summary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Contains(t, summary, "svc")

	data, err = os.ReadFile(paths.Details)
	require.NoError(t, err)
	var details []audit.WorkItemPullRequest
	require.NoError(t, json.Unmarshal(data, &details))
	require.Len(t, details, 1)
	assert.Equal(t, 101, details[0].WorkItemID)

	data, err = os.ReadFile(paths.DiffStats)
	require.NoError(t, err)
	var diffs []audit.PullRequestDiff
	require.NoError(t, json.Unmarshal(data, &diffs))
	require.Len(t, diffs, 1)
}

func TestRunner_ResultsBeforeRun(t *testing.T) {
	runner := newRunner(t, t.TempDir())

	_, err := runner.Results()
	assert.ErrorIs(t, err, audit.ErrNotRun)

	_, err = runner.SaveArtifacts()
	assert.ErrorIs(t, err, audit.ErrNotRun)
}

func TestRunner_CancelledContext(t *testing.T) {
	runner := newRunner(t, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runner.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = runner.Results()
	assert.ErrorIs(t, err, audit.ErrNotRun)
}
