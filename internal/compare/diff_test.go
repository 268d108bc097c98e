package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pascalheritier/FeatureComparator/internal/tracker"
)

func issues(ids ...int) []*tracker.Issue {
	result := make([]*tracker.Issue, 0, len(ids))
	for _, id := range ids {
		result = append(result, &tracker.Issue{ID: id, Tracker: "Feature"})
	}
	return result
}

func ids(issues []*tracker.Issue) []int {
	result := make([]int, 0, len(issues))
	for _, issue := range issues {
		result = append(result, issue.ID)
	}
	return result
}

func TestMissing_Reflexivity(t *testing.T) {
	a := &FeatureSet{Issues: issues(1, 2, 3)}
	assert.Empty(t, Missing(a, a))
}

func TestMissing_SetDifferenceByID(t *testing.T) {
	from := &FeatureSet{Issues: issues(10, 11, 12)}
	to := &FeatureSet{Issues: issues(10, 12)}

	assert.Equal(t, []int{11}, ids(Missing(from, to)))
}

func TestMissing_PreservesFromOrder(t *testing.T) {
	from := &FeatureSet{Issues: issues(5, 3, 9, 1)}
	to := &FeatureSet{Issues: issues(3)}

	assert.Equal(t, []int{5, 9, 1}, ids(Missing(from, to)))
}

func TestMissing_IgnoresNonIDFields(t *testing.T) {
	from := &FeatureSet{Issues: []*tracker.Issue{
		{ID: 7, Tracker: "Bug", Subject: "from subject"},
	}}
	to := &FeatureSet{Issues: []*tracker.Issue{
		{ID: 7, Tracker: "Feature", Subject: "different subject"},
	}}

	assert.Empty(t, Missing(from, to), "equality is by id only")
}

func TestMissing_EmptyTo(t *testing.T) {
	from := &FeatureSet{Issues: issues(1, 2)}
	assert.Equal(t, []int{1, 2}, ids(Missing(from, &FeatureSet{})))
}
