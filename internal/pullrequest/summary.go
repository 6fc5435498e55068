package pullrequest

import (
	"log/slog"
	"sort"
	"time"

	"devops-trace/internal/models"
)

type Aggregator struct {
	logger *slog.Logger
}

func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger}
}

// Summarize folds records into the per-repository summary. Nil records are
// skipped. Reviewers are unioned per repository across all its branches and
// emitted sorted. Oldest/newest per branch use strict comparisons on the
// parsed creation time, so equal timestamps keep the first-seen commit.
func (a *Aggregator) Summarize(records []*models.PullRequestRecord) models.Summary {
	summary := make(models.Summary)

	type window struct {
		oldest time.Time
		newest time.Time
	}
	windows := make(map[*models.BranchSummary]window)
	reviewerSets := make(map[string]map[string]struct{})

	for _, rec := range records {
		if rec == nil {
			continue
		}

		repo, ok := summary[rec.Repository]
		if !ok {
			repo = &models.RepoSummary{Branches: make(map[string]*models.BranchSummary)}
			summary[rec.Repository] = repo
			reviewerSets[rec.Repository] = make(map[string]struct{})
		}

		for _, reviewer := range rec.Reviewers {
			reviewerSets[rec.Repository][reviewer] = struct{}{}
		}

		branch, ok := repo.Branches[rec.TargetBranch]
		if !ok {
			branch = &models.BranchSummary{}
			repo.Branches[rec.TargetBranch] = branch
		}

		created, err := time.Parse(time.RFC3339Nano, rec.CreatedDate)
		if err != nil {
			a.logger.Warn("unparsable pull request creation date",
				"repository", rec.Repository, "created_date", rec.CreatedDate, "error", err)
			continue
		}

		commit := models.CommitRef{Date: rec.CreatedDate, Hash: rec.CommitID}

		w, seen := windows[branch]
		if !seen {
			windows[branch] = window{oldest: created, newest: created}
			branch.OldestCommit = commit
			branch.NewestCommit = commit
			continue
		}

		if created.Before(w.oldest) {
			w.oldest = created
			branch.OldestCommit = commit
		}
		if created.After(w.newest) {
			w.newest = created
			branch.NewestCommit = commit
		}
		windows[branch] = w
	}

	for name, repo := range summary {
		reviewers := make([]string, 0, len(reviewerSets[name]))
		for reviewer := range reviewerSets[name] {
			reviewers = append(reviewers, reviewer)
		}
		sort.Strings(reviewers)
		repo.Reviewers = reviewers
	}

	return summary
}
