// Package audit drives the traceability pipeline: work item closure, pull
// request collection, diff classification, and summary aggregation.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"devops-trace/internal/azdo"
	"devops-trace/internal/config"
	"devops-trace/internal/diff"
	"devops-trace/internal/models"
	"devops-trace/internal/pullrequest"
	"devops-trace/internal/workitem"
)

// ErrNotRun is returned when results are requested before Run has completed.
var ErrNotRun = errors.New("audit has not been run")

// WorkItemPullRequest pairs a work item with the raw details of one of its
// pull requests, as saved in the pr_details artifact.
type WorkItemPullRequest struct {
	WorkItemID  int             `json:"work_item_id"`
	PullRequest json.RawMessage `json:"pull_request"`
}

// PullRequestDiff holds the classified diff of one pull request.
type PullRequestDiff struct {
	WorkItemID    int                 `json:"work_item_id"`
	PullRequestID int                 `json:"pull_request_id"`
	Diff          *models.DiffSummary `json:"diff"`
}

// Results is everything one run produces.
type Results struct {
	WorkItemIDs []int
	Records     []*models.PullRequestRecord
	Details     []WorkItemPullRequest
	Diffs       []PullRequestDiff
	Summary     models.Summary
}

// ArtifactPaths names the JSON documents written by SaveArtifacts.
type ArtifactPaths struct {
	Summary   string
	Details   string
	DiffStats string
}

type Runner struct {
	seed       *config.Seed
	resultsDir string
	resolver   *workitem.Resolver
	collector  *pullrequest.Collector
	classifier *diff.Classifier
	aggregator *pullrequest.Aggregator
	logger     *slog.Logger

	results *Results
}

func NewRunner(client *azdo.Client, seed *config.Seed, resultsDir string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		seed:       seed,
		resultsDir: resultsDir,
		resolver:   workitem.NewResolver(client, logger),
		collector:  pullrequest.NewCollector(client, logger),
		classifier: diff.NewClassifier(client, logger),
		aggregator: pullrequest.NewAggregator(logger),
		logger:     logger,
	}
}

// Run executes the pipeline. Per-item failures are logged and skipped inside
// their own iteration; only cancellation aborts the run.
func (r *Runner) Run(ctx context.Context) error {
	closure := r.resolver.ComputeClosure(ctx, r.seed)

	ids := make([]int, 0, len(closure))
	for id := range closure {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	r.logger.Info("resolved work item closure", "count", len(ids))

	// Empty runs still serialize as JSON arrays, not null.
	res := &Results{
		WorkItemIDs: ids,
		Records:     []*models.PullRequestRecord{},
		Details:     []WorkItemPullRequest{},
		Diffs:       []PullRequestDiff{},
	}

	for _, itemID := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		if r.seed.OnlyCompleted {
			state, err := r.resolver.ItemState(ctx, itemID)
			if err != nil {
				r.logger.Error("failed to fetch work item state",
					"work_item_id", itemID, "error", err)
				continue
			}
			if !completedState(state) {
				r.logger.Info("skipping incomplete work item",
					"work_item_id", itemID, "state", state)
				continue
			}
		}

		project, err := r.resolver.ResolveProject(ctx, itemID)
		if err != nil {
			r.logger.Error("failed to resolve project",
				"work_item_id", itemID, "error", err)
			continue
		}

		for _, prID := range r.resolver.LinkedPullRequestIDs(ctx, itemID) {
			if err := ctx.Err(); err != nil {
				return err
			}

			pr := r.collector.FetchDetails(ctx, project, prID)
			if pr == nil {
				continue
			}

			rec := pullrequest.Extract(pr)
			if rec == nil {
				r.logger.Info("skipping abandoned pull request",
					"work_item_id", itemID, "pull_request_id", prID)
				continue
			}

			res.Records = append(res.Records, rec)
			res.Details = append(res.Details, WorkItemPullRequest{
				WorkItemID:  itemID,
				PullRequest: pr.Raw,
			})

			if pr.LastMergeSourceCommit == nil || pr.LastMergeTargetCommit == nil {
				r.logger.Info("pull request has no merge commits, skipping diff",
					"work_item_id", itemID, "pull_request_id", prID)
				continue
			}

			diffSummary, err := r.classifier.Classify(ctx, project, pr.Repository.Name,
				pr.LastMergeTargetCommit.CommitID, pr.LastMergeSourceCommit.CommitID,
				r.seed.ExcludeDirs)
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				r.logger.Error("failed to classify diff",
					"work_item_id", itemID, "pull_request_id", prID, "error", err)
				continue
			}

			res.Diffs = append(res.Diffs, PullRequestDiff{
				WorkItemID:    itemID,
				PullRequestID: prID,
				Diff:          diffSummary,
			})
		}
	}

	res.Summary = r.aggregator.Summarize(res.Records)
	r.results = res

	r.logger.Info("audit complete",
		"work_items", len(res.WorkItemIDs),
		"pull_requests", len(res.Records),
		"repositories", len(res.Summary))

	return nil
}

// Results returns what Run produced. Calling it before Run has completed is
// a contract violation.
func (r *Runner) Results() (*Results, error) {
	if r.results == nil {
		return nil, ErrNotRun
	}
	return r.results, nil
}

// SaveArtifacts writes the three timestamped JSON documents to the results
// directory.
func (r *Runner) SaveArtifacts() (*ArtifactPaths, error) {
	if r.results == nil {
		return nil, ErrNotRun
	}

	if err := os.MkdirAll(r.resultsDir, 0755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}

	ts := time.Now().Format("20060102_150405")
	paths := &ArtifactPaths{
		Summary:   filepath.Join(r.resultsDir, fmt.Sprintf("summary_%s.json", ts)),
		Details:   filepath.Join(r.resultsDir, fmt.Sprintf("pr_details_%s.json", ts)),
		DiffStats: filepath.Join(r.resultsDir, fmt.Sprintf("diff_stats_%s.json", ts)),
	}

	if err := writeJSON(paths.Summary, r.results.Summary); err != nil {
		return nil, err
	}
	if err := writeJSON(paths.Details, r.results.Details); err != nil {
		return nil, err
	}
	if err := writeJSON(paths.DiffStats, r.results.Diffs); err != nil {
		return nil, err
	}

	return paths, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// completedState reports whether a work item state counts as done for the
// is_only_completed_item filter.
func completedState(state string) bool {
	switch strings.ToLower(state) {
	case "closed", "done", "completed":
		return true
	}
	return false
}
