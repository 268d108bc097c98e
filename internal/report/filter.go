package report

import (
	"strconv"
	"strings"

	"github.com/pascalheritier/FeatureComparator/internal/compare"
	"github.com/pascalheritier/FeatureComparator/internal/tracker"
)

// Filter removes from the current results everything already listed in a
// prior note: a missing issue is dropped when its id, as a string, is a
// substring of some fragment under the same repository; an unknown entry is
// dropped when it is itself a substring of some fragment. Repositories
// absent from the prior note are left untouched. The operation only ever
// removes entries, which makes it idempotent.
func Filter(results []compare.RepoResult, prior map[string][]string) []compare.RepoResult {
	filtered := make([]compare.RepoResult, 0, len(results))
	for _, result := range results {
		fragments := prior[strings.ToLower(result.Name)]
		filtered = append(filtered, compare.RepoResult{
			Name:    result.Name,
			Missing: filterMissing(result.Missing, fragments),
			Unknown: filterUnknown(result.Unknown, fragments),
		})
	}
	return filtered
}

func filterMissing(missing []*tracker.Issue, fragments []string) []*tracker.Issue {
	var kept []*tracker.Issue
	for _, issue := range missing {
		if !anyContains(fragments, strconv.Itoa(issue.ID)) {
			kept = append(kept, issue)
		}
	}
	return kept
}

func filterUnknown(unknown, fragments []string) []string {
	var kept []string
	for _, entry := range unknown {
		if !anyContains(fragments, entry) {
			kept = append(kept, entry)
		}
	}
	return kept
}

func anyContains(fragments []string, needle string) bool {
	for _, fragment := range fragments {
		if strings.Contains(fragment, needle) {
			return true
		}
	}
	return false
}
