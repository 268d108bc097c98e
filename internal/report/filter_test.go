package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pascalheritier/FeatureComparator/internal/compare"
	"github.com/pascalheritier/FeatureComparator/internal/tracker"
)

func missingIDs(result compare.RepoResult) []int {
	ids := make([]int, 0, len(result.Missing))
	for _, issue := range result.Missing {
		ids = append(ids, issue.ID)
	}
	return ids
}

// Scenario: the prior note already lists #11; only #12 survives the filter.
func TestFilter_DropsAlreadyReportedIssues(t *testing.T) {
	current := []compare.RepoResult{{
		Name: "Backend",
		Missing: []*tracker.Issue{
			{ID: 11, Tracker: "Bug", Subject: "Title"},
			{ID: 12, Tracker: "Bug", Subject: "Other"},
		},
	}}
	prior := map[string][]string{
		"backend": {" - Bug #11: Title"},
	}

	filtered := Filter(current, prior)
	require.Len(t, filtered, 1)
	assert.Equal(t, []int{12}, missingIDs(filtered[0]))
}

func TestFilter_DropsAlreadyReportedUnknowns(t *testing.T) {
	current := []compare.RepoResult{{
		Name:    "backend",
		Unknown: []string{"Merge branch 'mystery' into 'main'", "Merge branch 'new' into 'main'"},
	}}
	prior := map[string][]string{
		"backend": {" - Merge branch 'mystery' into 'main'"},
	}

	filtered := Filter(current, prior)
	assert.Equal(t, []string{"Merge branch 'new' into 'main'"}, filtered[0].Unknown)
}

func TestFilter_RepoAbsentFromPriorNoteUntouched(t *testing.T) {
	current := []compare.RepoResult{{
		Name:    "frontend",
		Missing: []*tracker.Issue{{ID: 5, Tracker: "Bug", Subject: "x"}},
		Unknown: []string{"some merge"},
	}}
	prior := map[string][]string{
		"backend": {" - Bug #5: x", "some merge"},
	}

	filtered := Filter(current, prior)
	assert.Equal(t, []int{5}, missingIDs(filtered[0]))
	assert.Equal(t, []string{"some merge"}, filtered[0].Unknown)
}

func TestFilter_NilPriorIsNoOp(t *testing.T) {
	current := []compare.RepoResult{{
		Name:    "backend",
		Missing: []*tracker.Issue{{ID: 1}},
		Unknown: []string{"u"},
	}}

	filtered := Filter(current, nil)
	assert.Equal(t, []int{1}, missingIDs(filtered[0]))
	assert.Equal(t, []string{"u"}, filtered[0].Unknown)
}

func TestFilter_Idempotent(t *testing.T) {
	current := []compare.RepoResult{{
		Name: "backend",
		Missing: []*tracker.Issue{
			{ID: 11, Tracker: "Bug", Subject: "a"},
			{ID: 12, Tracker: "Bug", Subject: "b"},
			{ID: 13, Tracker: "Feature", Subject: "c"},
		},
		Unknown: []string{"one", "two"},
	}}
	prior := map[string][]string{
		"backend": {" - Bug #12: b", "one"},
	}

	once := Filter(current, prior)
	twice := Filter(once, prior)
	assert.Equal(t, once, twice)
}

// End-to-end: render a note, parse it back, and filter a superset run.
func TestFilter_ConvergesAcrossRuns(t *testing.T) {
	firstRun := []compare.RepoResult{{
		Name:    "backend",
		Missing: []*tracker.Issue{{ID: 11, Tracker: "Bug", Subject: "Title"}},
	}}
	path := writeNote(t, string(Render(firstRun)))

	prior, err := LoadExisting(path)
	require.NoError(t, err)

	secondRun := []compare.RepoResult{{
		Name: "backend",
		Missing: []*tracker.Issue{
			{ID: 11, Tracker: "Bug", Subject: "Title"},
			{ID: 12, Tracker: "Feature", Subject: "New"},
		},
	}}
	filtered := Filter(secondRun, prior)
	assert.Equal(t, []int{12}, missingIDs(filtered[0]))
}
