package azdo

import "encoding/json"

// Relation kinds and attributes the audit cares about.
const (
	RelHierarchyForward = "System.LinkTypes.Hierarchy-Forward"
	RelArtifactLink     = "ArtifactLink"

	AttrPullRequestID = "pullRequestId"
)

// Work item field reference names.
const (
	FieldTeamProject = "System.TeamProject"
	FieldState       = "System.State"
)

// Pull request status values.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusAbandoned = "abandoned"
)

type WorkItem struct {
	ID        int            `json:"id"`
	Fields    map[string]any `json:"fields"`
	Relations []Relation     `json:"relations"`
}

// StringField returns the named field as a string, reporting whether it was
// present with that type.
func (w *WorkItem) StringField(name string) (string, bool) {
	v, ok := w.Fields[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

type Relation struct {
	Rel        string         `json:"rel"`
	URL        string         `json:"url"`
	Attributes map[string]any `json:"attributes"`
}

type IdentityRef struct {
	DisplayName string `json:"displayName"`
	UniqueName  string `json:"uniqueName"`
}

type GitCommitRef struct {
	CommitID string `json:"commitId"`
	URL      string `json:"url"`
}

type GitRepository struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DefaultBranch string `json:"defaultBranch"`
	RemoteURL     string `json:"remoteUrl"`
}

type PullRequest struct {
	PullRequestID         int           `json:"pullRequestId"`
	Status                string        `json:"status"`
	Title                 string        `json:"title"`
	URL                   string        `json:"url"`
	CreationDate          string        `json:"creationDate"`
	SourceRefName         string        `json:"sourceRefName"`
	TargetRefName         string        `json:"targetRefName"`
	Repository            GitRepository `json:"repository"`
	Reviewers             []IdentityRef `json:"reviewers"`
	LastMergeSourceCommit *GitCommitRef `json:"lastMergeSourceCommit"`
	LastMergeTargetCommit *GitCommitRef `json:"lastMergeTargetCommit"`

	// Raw keeps the untouched response body for the pr_details artifact.
	Raw json.RawMessage `json:"-"`
}

type DiffChange struct {
	ChangeType string `json:"changeType"`
	Item       struct {
		Path string `json:"path"`
	} `json:"item"`
}

type CommitDiffs struct {
	Changes []DiffChange `json:"changes"`
}

// ContentDiff carries per-file line counts from the diffs/contents endpoint.
type ContentDiff struct {
	AddLineCount    int `json:"addLineCount"`
	DeleteLineCount int `json:"deleteLineCount"`
}
