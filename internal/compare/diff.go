package compare

import "github.com/pascalheritier/FeatureComparator/internal/tracker"

// Missing returns the issues present in from but absent from to, compared by
// id only. The result is a stable filter of from: relative order is
// preserved, presentation order is imposed later by the report generator.
func Missing(from, to *FeatureSet) []*tracker.Issue {
	toIDs := to.IDs()
	var missing []*tracker.Issue
	for _, issue := range from.Issues {
		if !toIDs[issue.ID] {
			missing = append(missing, issue)
		}
	}
	return missing
}
