package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// StudyFolder is one exported study session on disk.
type StudyFolder struct {
	Path      string
	Study     string
	CreatedAt time.Time
}

// RetentionPolicy decides which study folders survive a prune.
// Input is sorted newest first.
type RetentionPolicy interface {
	Apply(folders []StudyFolder) (keep []StudyFolder)
}

// CountPolicy keeps the MaxCount most recent folders.
type CountPolicy struct {
	MaxCount int
}

func (p *CountPolicy) Apply(folders []StudyFolder) []StudyFolder {
	if p.MaxCount < 0 || len(folders) <= p.MaxCount {
		return folders
	}
	return folders[:p.MaxCount]
}

// AgePolicy keeps folders created within MaxAge of Now.
type AgePolicy struct {
	MaxAge time.Duration
	Now    func() time.Time
}

func (p *AgePolicy) Apply(folders []StudyFolder) []StudyFolder {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	cutoff := now().Add(-p.MaxAge)
	var keep []StudyFolder
	for _, f := range folders {
		if f.CreatedAt.After(cutoff) {
			keep = append(keep, f)
		}
	}
	return keep
}

// CompositePolicy keeps a folder if any sub-policy keeps it.
type CompositePolicy struct {
	Policies []RetentionPolicy
}

func (p *CompositePolicy) Apply(folders []StudyFolder) []StudyFolder {
	kept := make(map[string]bool)
	for _, policy := range p.Policies {
		for _, f := range policy.Apply(folders) {
			kept[f.Path] = true
		}
	}
	var result []StudyFolder
	for _, f := range folders {
		if kept[f.Path] {
			result = append(result, f)
		}
	}
	return result
}

// ListStudyFolders returns the study folders under the project root, newest
// first. Entries whose names do not end in a study timestamp are skipped.
func ListStudyFolders(projectRoot string) ([]StudyFolder, error) {
	dir := filepath.Join(DataDir(projectRoot), "studies")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading studies directory: %w", err)
	}

	var folders []StudyFolder
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name, created, ok := parseStudyFolder(e.Name())
		if !ok {
			continue
		}
		folders = append(folders, StudyFolder{
			Path:      filepath.Join(dir, e.Name()),
			Study:     name,
			CreatedAt: created,
		})
	}

	sort.Slice(folders, func(i, j int) bool {
		if !folders[i].CreatedAt.Equal(folders[j].CreatedAt) {
			return folders[i].CreatedAt.After(folders[j].CreatedAt)
		}
		return folders[i].Path > folders[j].Path
	})
	return folders, nil
}

// parseStudyFolder splits "<slug>_<YYYYmmdd-HHMMSS>[_<n>]". Slugs may
// contain underscores, so the split is taken from the right.
func parseStudyFolder(name string) (string, time.Time, bool) {
	i := strings.LastIndexByte(name, '_')
	if i <= 0 {
		return "", time.Time{}, false
	}
	if _, err := strconv.Atoi(name[i+1:]); err == nil {
		name = name[:i]
		if i = strings.LastIndexByte(name, '_'); i <= 0 {
			return "", time.Time{}, false
		}
	}
	t, err := time.ParseInLocation(studyTimeLayout, name[i+1:], time.Local)
	if err != nil {
		return "", time.Time{}, false
	}
	return name[:i], t, true
}

// PruneStudyFolders removes the study folders the policy does not keep.
// With dryRun set it only reports what would go.
func PruneStudyFolders(projectRoot string, policy RetentionPolicy, dryRun bool) (removed []StudyFolder, err error) {
	folders, err := ListStudyFolders(projectRoot)
	if err != nil {
		return nil, err
	}

	keep := make(map[string]bool)
	for _, f := range policy.Apply(folders) {
		keep[f.Path] = true
	}

	for _, f := range folders {
		if keep[f.Path] {
			continue
		}
		if !dryRun {
			if err := os.RemoveAll(f.Path); err != nil {
				return removed, fmt.Errorf("removing %s: %w", filepath.Base(f.Path), err)
			}
		}
		removed = append(removed, f)
	}
	return removed, nil
}

// ParseAge parses ages like "30d", "2w" or any time.ParseDuration string.
func ParseAge(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("empty age")
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid age: %q", s)
	}
	num, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || num < 0 {
		return 0, fmt.Errorf("invalid age: %q", s)
	}
	switch s[len(s)-1] {
	case 'd':
		return time.Duration(num) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(num) * 7 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown age suffix in %q", s)
	}
}
