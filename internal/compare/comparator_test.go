package compare

import (
	"bytes"
	"context"
	"errors"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pascalheritier/FeatureComparator/internal/config"
	"github.com/pascalheritier/FeatureComparator/internal/gitrepo"
	"github.com/pascalheritier/FeatureComparator/internal/tracker"
)

type stubSyncer struct {
	synced []gitrepo.SyncSpec
	err    error
}

func (s *stubSyncer) Sync(ctx context.Context, spec gitrepo.SyncSpec) (*git.Repository, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.synced = append(s.synced, spec)
	return nil, nil
}

func notFoundLookup(ctx context.Context, id int, includeChildren bool) (*tracker.Issue, error) {
	return nil, tracker.ErrIssueNotFound
}

func scenarioConfig() *config.Config {
	return &config.Config{
		Tracker:   config.TrackerConfig{BaseURL: "http://tracker", OpenStatusID: 1},
		Workspace: "repos",
		Output:    "note.txt",
		Repositories: []config.RepositoryConfig{
			{
				Name:         "r1",
				RemoteURL:    "http://git/r1.git",
				StartSHA:     "s0",
				FromBranches: []string{"main"},
				ToBranches:   []string{"release"},
			},
		},
	}
}

// Scenario: from-branch main merged #10 and #11, to-branch release merged
// only #10; the missing set is exactly {#11}.
func TestComparator_MissingFeatureFlow(t *testing.T) {
	miner := &stubMiner{byBranch: map[string][]gitrepo.Commit{
		"main":    {mergeCommit(10), mergeCommit(11)},
		"release": {mergeCommit(10)},
	}}
	resolver := &stubResolver{known: knownIssues(10, 11)}

	syncer := &stubSyncer{}
	builder := NewBuilder(miner, resolver, &bytes.Buffer{})
	classifier := NewClassifier(notFoundLookup, []string{"[Planned]"}, 1, &bytes.Buffer{})
	comparator := NewComparator(syncer, builder, classifier, scenarioConfig(), nil, &bytes.Buffer{})

	results, err := comparator.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "r1", results[0].Name)
	assert.Equal(t, []int{11}, ids(results[0].Missing))
	assert.Empty(t, results[0].Unknown)

	// Every branch of both groups is synchronized.
	require.Len(t, syncer.synced, 2)
	assert.Equal(t, "main", syncer.synced[0].BranchName)
	assert.Equal(t, "release", syncer.synced[1].BranchName)
}

func TestComparator_SyncFailureIsFatal(t *testing.T) {
	syncer := &stubSyncer{err: errors.New("remote branch missing")}
	builder := NewBuilder(&stubMiner{}, &stubResolver{}, &bytes.Buffer{})
	classifier := NewClassifier(notFoundLookup, nil, 1, &bytes.Buffer{})
	comparator := NewComparator(syncer, builder, classifier, scenarioConfig(), nil, &bytes.Buffer{})

	_, err := comparator.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote branch missing")
	assert.Contains(t, err.Error(), "r1")
}

func TestComparator_FilterApplied(t *testing.T) {
	miner := &stubMiner{byBranch: map[string][]gitrepo.Commit{
		"main": {mergeCommit(11), mergeCommit(12)},
	}}
	resolver := &stubResolver{known: knownIssues(11, 12)}

	filter := func(results []RepoResult) ([]RepoResult, error) {
		for i := range results {
			var kept []*tracker.Issue
			for _, issue := range results[i].Missing {
				if issue.ID != 11 {
					kept = append(kept, issue)
				}
			}
			results[i].Missing = kept
		}
		return results, nil
	}

	cfg := scenarioConfig()
	cfg.Repositories[0].ToBranches = []string{"empty"}

	builder := NewBuilder(miner, resolver, &bytes.Buffer{})
	classifier := NewClassifier(notFoundLookup, nil, 1, &bytes.Buffer{})
	comparator := NewComparator(&stubSyncer{}, builder, classifier, cfg, filter, &bytes.Buffer{})

	results, err := comparator.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{12}, ids(results[0].Missing))
}

func TestComparator_UnknownsComeFromTheFromGroup(t *testing.T) {
	miner := &stubMiner{byBranch: map[string][]gitrepo.Commit{
		"main":    {unknownCommit("Merge branch 'mystery' into 'main'")},
		"release": {unknownCommit("Merge branch 'other' into 'release'")},
	}}

	builder := NewBuilder(miner, &stubResolver{}, &bytes.Buffer{})
	classifier := NewClassifier(notFoundLookup, nil, 1, &bytes.Buffer{})
	comparator := NewComparator(&stubSyncer{}, builder, classifier, scenarioConfig(), nil, &bytes.Buffer{})

	results, err := comparator.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Merge branch 'mystery' into 'main'"}, results[0].Unknown)
}
