package compare

import "github.com/pascalheritier/FeatureComparator/internal/tracker"

// FeatureSet is the outcome of mining and resolving one branch group:
// the issues that could be resolved, de-duplicated by id, and the short
// messages of merge commits that could not be tied to an issue,
// de-duplicated by exact text.
type FeatureSet struct {
	Issues  []*tracker.Issue
	Unknown []string
}

// IDs returns the set of issue ids present in the feature set.
func (s *FeatureSet) IDs() map[int]bool {
	ids := make(map[int]bool, len(s.Issues))
	for _, issue := range s.Issues {
		ids[issue.ID] = true
	}
	return ids
}

// RepoResult is the final outcome for one repository comparison: the
// features considered unplanned-missing and the unresolved commit summaries,
// after classification and incremental filtering.
type RepoResult struct {
	// Name is the logical repository name
	Name string

	// Missing are the unplanned missing features
	Missing []*tracker.Issue

	// Unknown are the unresolved merge commit summaries from the "from"
	// group, in accumulated order
	Unknown []string
}
