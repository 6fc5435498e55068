package models

import "time"

// PullRequestRecord is the normalized view of a pull request used for
// aggregation and saved artifacts. Abandoned pull requests never produce one.
type PullRequestRecord struct {
	Repository   string   `json:"repository"`
	TargetBranch string   `json:"target_branch"`
	CreatedDate  string   `json:"created_date"`
	CommitID     string   `json:"commit_id"`
	Reviewers    []string `json:"reviewers"`
	Status       string   `json:"status"`
	Title        string   `json:"title"`
	URL          string   `json:"url"`
}

// CommitRef points at one commit by creation date and hash.
type CommitRef struct {
	Date string `json:"date"`
	Hash string `json:"hash"`
}

// BranchSummary tracks the commit window observed for one target branch.
type BranchSummary struct {
	OldestCommit CommitRef `json:"oldest_commit"`
	NewestCommit CommitRef `json:"newest_commit"`
}

// RepoSummary groups per-branch commit windows with the reviewers seen
// across all branches of the repository.
type RepoSummary struct {
	Branches  map[string]*BranchSummary `json:"branches"`
	Reviewers []string                  `json:"reviewers"`
}

// Summary maps repository name to its aggregated view.
type Summary map[string]*RepoSummary

// File diff classification tags.
const (
	DiffAdded     = "added"
	DiffDeleted   = "deleted"
	DiffModified  = "modified"
	DiffUnchanged = "unchanged"
)

// FileDiff holds line counts and the classification for one changed file.
type FileDiff struct {
	Path    string `json:"path"`
	Added   int    `json:"added"`
	Deleted int    `json:"deleted"`
	Type    string `json:"type"`
}

// DiffSummary aggregates line counts for one base/target commit pair.
// Unchanged files appear in Files but contribute to no total.
type DiffSummary struct {
	Added    int        `json:"added"`
	Deleted  int        `json:"deleted"`
	Modified int        `json:"modified"`
	Files    []FileDiff `json:"files"`
}

// Run is one recorded audit execution.
type Run struct {
	ID               string
	StartedAt        time.Time
	FinishedAt       time.Time
	WorkItemCount    int
	PullRequestCount int
	SummaryFile      string
	DetailsFile      string
	DiffFile         string
	CreatedAt        time.Time
}
