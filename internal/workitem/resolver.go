// Package workitem resolves the work item graph: owning projects, hierarchy
// children, linked pull requests, and the seed closure for an audit run.
package workitem

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"devops-trace/internal/azdo"
	"devops-trace/internal/config"
)

type Resolver struct {
	client *azdo.Client
	logger *slog.Logger

	// projects caches work item id -> owning project for the lifetime of
	// the resolver. Entries are never invalidated.
	projects map[int]string
}

func NewResolver(client *azdo.Client, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		client:   client,
		logger:   logger,
		projects: make(map[int]string),
	}
}

// ResolveProject returns the project owning a work item. Failures surface to
// the caller; there is no automatic retry.
func (r *Resolver) ResolveProject(ctx context.Context, id int) (string, error) {
	if project, ok := r.projects[id]; ok {
		return project, nil
	}

	wi, err := r.client.GetWorkItemFields(ctx, id, azdo.FieldTeamProject)
	if err != nil {
		return "", fmt.Errorf("resolve project for work item %d: %w", id, err)
	}

	project, ok := wi.StringField(azdo.FieldTeamProject)
	if !ok || project == "" {
		return "", fmt.Errorf("work item %d has no %s field", id, azdo.FieldTeamProject)
	}

	r.projects[id] = project
	return project, nil
}

// ItemState returns the current state of a work item (e.g. "Closed").
func (r *Resolver) ItemState(ctx context.Context, id int) (string, error) {
	wi, err := r.client.GetWorkItemFields(ctx, id, azdo.FieldState)
	if err != nil {
		return "", fmt.Errorf("fetch state of work item %d: %w", id, err)
	}

	state, ok := wi.StringField(azdo.FieldState)
	if !ok {
		return "", fmt.Errorf("work item %d has no %s field", id, azdo.FieldState)
	}
	return state, nil
}

// ChildIDs collects the ids reachable from the given parents over
// hierarchy-forward relations. A parent that cannot be fetched is logged and
// skipped so one bad id does not block the rest of the batch.
func (r *Resolver) ChildIDs(ctx context.Context, parentIDs []int) map[int]struct{} {
	children := make(map[int]struct{})

	for _, parentID := range parentIDs {
		project, err := r.ResolveProject(ctx, parentID)
		if err != nil {
			r.logger.Error("failed to resolve project of parent work item",
				"work_item_id", parentID, "error", err)
			continue
		}

		wi, err := r.client.GetWorkItem(ctx, project, parentID, true)
		if err != nil {
			r.logger.Error("failed to fetch children of work item",
				"work_item_id", parentID, "error", err)
			continue
		}

		for _, rel := range wi.Relations {
			if rel.Rel != azdo.RelHierarchyForward {
				continue
			}
			childID, err := trailingID(rel.URL)
			if err != nil {
				r.logger.Error("malformed child relation url",
					"work_item_id", parentID, "url", rel.URL, "error", err)
				continue
			}
			children[childID] = struct{}{}
		}
	}

	return children
}

// LinkedPullRequestIDs returns, in relation order, the pull request ids a
// work item links to through ArtifactLink relations carrying a pullRequestId
// attribute. Duplicates are suppressed, first occurrence wins. A work item
// without relations, or one that cannot be fetched, yields an empty result.
func (r *Resolver) LinkedPullRequestIDs(ctx context.Context, id int) []int {
	project, err := r.ResolveProject(ctx, id)
	if err != nil {
		r.logger.Error("failed to resolve project of work item",
			"work_item_id", id, "error", err)
		return nil
	}

	wi, err := r.client.GetWorkItem(ctx, project, id, true)
	if err != nil {
		r.logger.Error("failed to fetch work item relations",
			"work_item_id", id, "error", err)
		return nil
	}

	seen := make(map[int]struct{})
	var prIDs []int
	for _, rel := range wi.Relations {
		if rel.Rel != azdo.RelArtifactLink {
			continue
		}
		prID, ok := attributeID(rel.Attributes, azdo.AttrPullRequestID)
		if !ok {
			continue
		}
		if _, dup := seen[prID]; dup {
			continue
		}
		seen[prID] = struct{}{}
		prIDs = append(prIDs, prID)
	}

	return prIDs
}

// ComputeClosure expands the seed configuration into the set of work item ids
// to audit: children of the parent features, plus the backlog ids, plus the
// children of that union, plus the parents themselves, minus the ignore ids.
// The two child-expansion passes are ordered; the second one sees the backlog
// ids, the first one does not.
func (r *Resolver) ComputeClosure(ctx context.Context, seed *config.Seed) map[int]struct{} {
	items := make(map[int]struct{})

	for id := range r.ChildIDs(ctx, seed.ParentFeatureIDs) {
		items[id] = struct{}{}
	}

	for _, id := range seed.BacklogIDs {
		items[id] = struct{}{}
	}

	union := make([]int, 0, len(items))
	for id := range items {
		union = append(union, id)
	}
	sort.Ints(union)
	for id := range r.ChildIDs(ctx, union) {
		items[id] = struct{}{}
	}

	for _, id := range seed.ParentFeatureIDs {
		items[id] = struct{}{}
	}

	for _, id := range seed.IgnoreIDs {
		delete(items, id)
	}

	return items
}

// trailingID extracts the numeric id from the last path segment of a work
// item URL.
func trailingID(rawURL string) (int, error) {
	idx := strings.LastIndex(rawURL, "/")
	if idx < 0 || idx == len(rawURL)-1 {
		return 0, fmt.Errorf("no id segment in %q", rawURL)
	}
	id, err := strconv.Atoi(rawURL[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("non-numeric id segment in %q", rawURL)
	}
	return id, nil
}

// attributeID reads a numeric relation attribute. The API serializes it as a
// JSON number but string-typed variants exist in older data.
func attributeID(attrs map[string]any, name string) (int, bool) {
	v, ok := attrs[name]
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return int(t), true
	case string:
		id, err := strconv.Atoi(t)
		if err != nil {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}
