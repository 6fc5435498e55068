// Package pullrequest collects pull request details and folds the extracted
// records into the per-repository summary.
package pullrequest

import (
	"context"
	"log/slog"
	"strings"

	"devops-trace/internal/azdo"
	"devops-trace/internal/models"
)

const branchRefPrefix = "refs/heads/"

type Collector struct {
	client *azdo.Client
	logger *slog.Logger
}

func NewCollector(client *azdo.Client, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{client: client, logger: logger}
}

// FetchDetails fetches one pull request. Any failure is logged and yields
// nil; the caller skips that pull request.
func (c *Collector) FetchDetails(ctx context.Context, project string, prID int) *azdo.PullRequest {
	pr, err := c.client.GetPullRequest(ctx, project, prID)
	if err != nil {
		c.logger.Error("failed to fetch pull request",
			"project", project, "pull_request_id", prID, "error", err)
		return nil
	}
	return pr
}

// Extract maps pull request details to the normalized record. Abandoned pull
// requests, and nil input, yield nil.
func Extract(pr *azdo.PullRequest) *models.PullRequestRecord {
	if pr == nil || pr.Status == azdo.StatusAbandoned {
		return nil
	}

	reviewers := make([]string, 0, len(pr.Reviewers))
	for _, reviewer := range pr.Reviewers {
		reviewers = append(reviewers, reviewer.DisplayName)
	}

	commitID := ""
	if pr.LastMergeSourceCommit != nil {
		commitID = pr.LastMergeSourceCommit.CommitID
	}

	return &models.PullRequestRecord{
		Repository:   pr.Repository.Name,
		TargetBranch: strings.TrimPrefix(pr.TargetRefName, branchRefPrefix),
		CreatedDate:  pr.CreationDate,
		CommitID:     commitID,
		Reviewers:    reviewers,
		Status:       pr.Status,
		Title:        pr.Title,
		URL:          pr.URL,
	}
}
