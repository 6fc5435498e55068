package azdo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// maxDiffChanges caps the changed-file list to the first page. Diffs with
// more changed files are truncated.
const maxDiffChanges = 1000

// GetPullRequest fetches pull request details. The raw response body is kept
// on the returned value for artifact output.
func (c *Client) GetPullRequest(ctx context.Context, project string, id int) (*PullRequest, error) {
	u := fmt.Sprintf("%s/git/pullrequests/%d?api-version=%s", c.projectAPIs(project), id, apiVersion)

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var pr PullRequest
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("decode pull request %d: %w", id, err)
	}
	pr.Raw = json.RawMessage(body)

	return &pr, nil
}

// GetCommitDiffs fetches the changed-file list between two commits.
func (c *Client) GetCommitDiffs(ctx context.Context, project, repository, baseCommit, targetCommit string) (*CommitDiffs, error) {
	u := fmt.Sprintf("%s/diffs/commits?baseVersion=%s&targetVersion=%s&$top=%d&api-version=%s",
		c.repositoryAPIs(project, repository),
		url.QueryEscape(baseCommit), url.QueryEscape(targetCommit),
		maxDiffChanges, apiVersionPreview)

	var diffs CommitDiffs
	if err := c.GetJSON(ctx, u, &diffs); err != nil {
		return nil, err
	}
	return &diffs, nil
}

// GetContentDiff fetches added/deleted line counts for a single file between
// two commits.
func (c *Client) GetContentDiff(ctx context.Context, project, repository, baseCommit, targetCommit, path string) (*ContentDiff, error) {
	u := fmt.Sprintf("%s/diffs/contents?baseVersion=%s&targetVersion=%s&path=%s&api-version=%s",
		c.repositoryAPIs(project, repository),
		url.QueryEscape(baseCommit), url.QueryEscape(targetCommit),
		url.QueryEscape(path), apiVersionPreview)

	var diff ContentDiff
	if err := c.GetJSON(ctx, u, &diff); err != nil {
		return nil, err
	}
	return &diff, nil
}

// ListRepositories fetches all git repositories of a project.
func (c *Client) ListRepositories(ctx context.Context, project string) ([]GitRepository, error) {
	u := fmt.Sprintf("%s/git/repositories?api-version=%s", c.projectAPIs(project), apiVersionPreview)

	var list struct {
		Count int             `json:"count"`
		Value []GitRepository `json:"value"`
	}
	if err := c.GetJSON(ctx, u, &list); err != nil {
		return nil, err
	}
	return list.Value, nil
}
