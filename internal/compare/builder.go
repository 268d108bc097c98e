package compare

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	git "github.com/go-git/go-git/v5"

	"github.com/pascalheritier/FeatureComparator/internal/gitrepo"
	"github.com/pascalheritier/FeatureComparator/internal/tracker"
)

// CommitMiner yields the qualifying merge commits of one branch.
type CommitMiner interface {
	Mine(ctx context.Context, repo *git.Repository, branchName, startSHA string) ([]gitrepo.Commit, error)
}

// IssueResolver resolves an issue id to a full issue record, or reports it
// unresolvable.
type IssueResolver interface {
	Resolve(ctx context.Context, id int) (*tracker.Issue, bool)
}

// Builder drives the miner and resolver over the branches of one group and
// accumulates a de-duplicated feature set.
type Builder struct {
	miner    CommitMiner
	resolver IssueResolver
	stderr   io.Writer
}

// NewBuilder creates a feature set builder.
func NewBuilder(miner CommitMiner, resolver IssueResolver, stderr io.Writer) *Builder {
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Builder{miner: miner, resolver: resolver, stderr: stderr}
}

// Build mines every branch of the group and resolves the commits into a
// feature set. A branch or baseline that cannot be found is reported as a
// warning and contributes nothing; any other mining failure aborts the
// build. Duplicate issues are suppressed by id, duplicate unknown entries by
// exact short-message text, keeping the first occurrence in branch iteration
// order.
func (b *Builder) Build(ctx context.Context, repo *git.Repository, repoName, group string, branches []string, startSHA string) (*FeatureSet, error) {
	set := &FeatureSet{}
	seenIDs := make(map[int]bool)
	seenUnknown := make(map[string]bool)

	for _, branch := range branches {
		commits, err := b.miner.Mine(ctx, repo, branch, startSHA)
		if err != nil {
			if errors.Is(err, gitrepo.ErrBranchNotFound) || errors.Is(err, gitrepo.ErrBaselineNotFound) {
				fmt.Fprintf(b.stderr, "warning: repository %s, %s branch %q: %v\n", repoName, group, branch, err)
				continue
			}
			return nil, fmt.Errorf("mining %s branch %q of %s: %w", group, branch, repoName, err)
		}

		for _, commit := range commits {
			id, ok := tracker.ResolveIssueID(commit.Message)
			if !ok {
				if !seenUnknown[commit.ShortMessage] {
					seenUnknown[commit.ShortMessage] = true
					set.Unknown = append(set.Unknown, commit.ShortMessage)
				}
				continue
			}

			issue, ok := b.resolver.Resolve(ctx, id)
			if !ok {
				// The reference looked resolvable but the tracker has
				// nothing for it; the resolver already logged the
				// failure, and the commit is dropped rather than
				// reported as unknown.
				continue
			}
			if !seenIDs[issue.ID] {
				seenIDs[issue.ID] = true
				set.Issues = append(set.Issues, issue)
			}
		}
	}

	return set, nil
}
