package compare

import (
	"context"
	"fmt"
	"io"
	"os"

	git "github.com/go-git/go-git/v5"
	"github.com/google/uuid"

	"github.com/pascalheritier/FeatureComparator/internal/config"
	"github.com/pascalheritier/FeatureComparator/internal/gitrepo"
)

// BranchSynchronizer brings one branch of one repository up to date and
// returns an open handle on the working copy.
type BranchSynchronizer interface {
	Sync(ctx context.Context, spec gitrepo.SyncSpec) (*git.Repository, error)
}

// ResultFilter removes already-reported entries from a run's results.
// A nil filter is a no-op (first run).
type ResultFilter func(results []RepoResult) ([]RepoResult, error)

// Comparator owns the run sequence: sync repositories, build feature sets
// per comparison, diff, classify, and filter. Comparisons are processed
// strictly sequentially; the issue cache and repository handle map are
// shared across all of them.
type Comparator struct {
	sync       BranchSynchronizer
	builder    *Builder
	classifier *Classifier
	cfg        *config.Config
	filter     ResultFilter
	stderr     io.Writer
}

// NewComparator creates a comparator.
func NewComparator(sync BranchSynchronizer, builder *Builder, classifier *Classifier, cfg *config.Config, filter ResultFilter, stderr io.Writer) *Comparator {
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Comparator{
		sync:       sync,
		builder:    builder,
		classifier: classifier,
		cfg:        cfg,
		filter:     filter,
		stderr:     stderr,
	}
}

// Run executes one full comparison pass and returns the per-repository
// results, incrementally filtered. Synchronization failures are fatal:
// nothing has been written yet, so an aborted run leaves any prior note
// untouched.
func (c *Comparator) Run(ctx context.Context) ([]RepoResult, error) {
	runID := uuid.NewString()
	fmt.Fprintf(c.stderr, "run %s: comparing %d repositories\n", runID, len(c.cfg.Repositories))

	var results []RepoResult
	for _, repoCfg := range c.cfg.Repositories {
		result, err := c.compareRepository(ctx, repoCfg)
		if err != nil {
			return nil, fmt.Errorf("run %s: repository %s: %w", runID, repoCfg.Name, err)
		}
		results = append(results, *result)
	}

	if c.filter != nil {
		filtered, err := c.filter(results)
		if err != nil {
			return nil, fmt.Errorf("run %s: filtering against prior note: %w", runID, err)
		}
		results = filtered
	}

	fmt.Fprintf(c.stderr, "run %s: done\n", runID)
	return results, nil
}

func (c *Comparator) compareRepository(ctx context.Context, repoCfg config.RepositoryConfig) (*RepoResult, error) {
	var creds *gitrepo.Credentials
	if repoCfg.Username != "" || repoCfg.Password != "" {
		creds = &gitrepo.Credentials{Username: repoCfg.Username, Password: repoCfg.Password}
	}

	var repo *git.Repository
	branches := make([]string, 0, len(repoCfg.FromBranches)+len(repoCfg.ToBranches))
	branches = append(branches, repoCfg.FromBranches...)
	branches = append(branches, repoCfg.ToBranches...)
	for _, branch := range branches {
		handle, err := c.sync.Sync(ctx, gitrepo.SyncSpec{
			RepoName:    repoCfg.Name,
			BranchName:  branch,
			LocalPath:   c.cfg.LocalPath(repoCfg.Name),
			RemoteURL:   repoCfg.RemoteURL,
			Credentials: creds,
		})
		if err != nil {
			return nil, fmt.Errorf("synchronizing branch %q: %w", branch, err)
		}
		repo = handle
	}

	fromSet, err := c.builder.Build(ctx, repo, repoCfg.Name, "from", repoCfg.FromBranches, repoCfg.StartSHA)
	if err != nil {
		return nil, err
	}
	toSet, err := c.builder.Build(ctx, repo, repoCfg.Name, "to", repoCfg.ToBranches, repoCfg.StartSHA)
	if err != nil {
		return nil, err
	}

	missing := Missing(fromSet, toSet)
	unplanned := c.classifier.Unplanned(ctx, missing)

	fmt.Fprintf(c.stderr, "repository %s: %d missing (%d unplanned), %d unknown\n",
		repoCfg.Name, len(missing), len(unplanned), len(fromSet.Unknown))

	return &RepoResult{
		Name:    repoCfg.Name,
		Missing: unplanned,
		Unknown: fromSet.Unknown,
	}, nil
}
