package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Seed is the per-run audit configuration loaded from a JSON file in the
// configs directory. It names the work items that seed the traversal.
type Seed struct {
	ParentFeatureIDs IDList     `json:"parent_feature_ids"`
	BacklogIDs       IDList     `json:"backlog_ids"`
	IgnoreIDs        IDList     `json:"ignore_ids"`
	ExcludeDirs      StringList `json:"exclude_dirs"`
	OnlyCompleted    bool       `json:"is_only_completed_item"`
}

func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed config %s: %w", path, err)
	}

	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed config %s: %w", path, err)
	}

	return &seed, nil
}

// ListSeedFiles returns the JSON files available in the configs directory,
// sorted by name.
func ListSeedFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// IDList is a list of work item ids. Seed files in the wild carry these as a
// JSON array (of numbers or numeric strings), a comma-separated string, or a
// single number; each shape normalizes to []int, anything else is rejected.
type IDList []int

func (l *IDList) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*l = nil
		return nil
	case []any:
		ids := make([]int, 0, len(v))
		for _, elem := range v {
			id, err := toID(elem)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		*l = ids
		return nil
	case string:
		ids, err := parseIDString(v)
		if err != nil {
			return err
		}
		*l = ids
		return nil
	case float64:
		id, err := toID(v)
		if err != nil {
			return err
		}
		*l = []int{id}
		return nil
	default:
		return fmt.Errorf("unsupported id list shape %T", v)
	}
}

func toID(v any) (int, error) {
	switch t := v.(type) {
	case float64:
		id := int(t)
		if float64(id) != t {
			return 0, fmt.Errorf("id %v is not an integer", t)
		}
		return id, nil
	case string:
		id, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, fmt.Errorf("invalid id %q", t)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("unsupported id shape %T", v)
	}
}

func parseIDString(s string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// StringList accepts a JSON array of strings or a comma-separated string.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*l = nil
		return nil
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			s, ok := elem.(string)
			if !ok {
				return fmt.Errorf("unsupported list element shape %T", elem)
			}
			out = append(out, strings.TrimSpace(s))
		}
		*l = out
		return nil
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("unsupported string list shape %T", v)
	}
}
