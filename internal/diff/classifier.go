// Package diff classifies per-file commit diffs between two commits of a
// repository.
package diff

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"devops-trace/internal/azdo"
	"devops-trace/internal/models"
)

type Classifier struct {
	client *azdo.Client
	logger *slog.Logger
}

func NewClassifier(client *azdo.Client, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{client: client, logger: logger}
}

// Classify fetches the changed files between baseCommit and targetCommit,
// drops anything under excludeDirs, and classifies each remaining file by its
// line counts. A file whose counts cannot be fetched is logged and skipped;
// only the changed-file listing itself is fatal.
func (c *Classifier) Classify(ctx context.Context, project, repository, baseCommit, targetCommit string, excludeDirs []string) (*models.DiffSummary, error) {
	diffs, err := c.client.GetCommitDiffs(ctx, project, repository, baseCommit, targetCommit)
	if err != nil {
		return nil, fmt.Errorf("fetch commit diffs for %s/%s: %w", project, repository, err)
	}

	summary := &models.DiffSummary{Files: []models.FileDiff{}}

	for _, change := range diffs.Changes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := change.Item.Path
		if excluded(path, excludeDirs) {
			continue
		}

		contents, err := c.client.GetContentDiff(ctx, project, repository, baseCommit, targetCommit, path)
		if err != nil {
			c.logger.Warn("skipping file diff",
				"repository", repository, "path", path, "error", err)
			continue
		}

		added, deleted := contents.AddLineCount, contents.DeleteLineCount

		var kind string
		switch {
		case added > 0 && deleted > 0:
			kind = models.DiffModified
			summary.Modified += added + deleted
		case added > 0:
			kind = models.DiffAdded
			summary.Added += added
		case deleted > 0:
			kind = models.DiffDeleted
			summary.Deleted += deleted
		default:
			kind = models.DiffUnchanged
		}

		summary.Files = append(summary.Files, models.FileDiff{
			Path:    path,
			Added:   added,
			Deleted: deleted,
			Type:    kind,
		})
	}

	return summary, nil
}

// excluded reports whether path sits under one of the exclude dirs. The match
// is on whole path segments: "docs" excludes "docs/x" but not "docsother/x".
// Leading slashes are ignored on both sides since the API roots paths at "/".
func excluded(path string, dirs []string) bool {
	p := strings.TrimPrefix(path, "/")
	for _, dir := range dirs {
		dir = strings.TrimPrefix(strings.TrimSuffix(dir, "/"), "/")
		if dir == "" {
			continue
		}
		if strings.HasPrefix(p, dir+"/") {
			return true
		}
	}
	return false
}
