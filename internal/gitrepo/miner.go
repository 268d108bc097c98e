package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

var (
	// ErrBranchNotFound is returned when no tracked reference matches the
	// requested branch name. Scoped to a single branch, non-fatal.
	ErrBranchNotFound = errors.New("branch not found")

	// ErrBaselineNotFound is returned when the baseline commit SHA does
	// not exist in the repository. Scoped to a single branch, non-fatal.
	ErrBaselineNotFound = errors.New("baseline commit not found")
)

// Miner extracts merge commits from a repository branch.
type Miner struct{}

// NewMiner creates a commit miner.
func NewMiner() *Miner {
	return &Miner{}
}

// mergeMarker is the message fragment that identifies a merge into the named
// branch, as opposed to merges of unrelated branches that also appear in its
// history. The quoting convention comes from the forge's generated merge
// messages.
func mergeMarker(branchName string) string {
	return fmt.Sprintf("into '%s'", branchName)
}

// Mine returns the merge commits on the named branch whose author timestamp
// is at or after the baseline commit's. The walk is committer-time ordered;
// commit time, not graph ancestry, bounds the window, which tolerates
// rewritten history at the cost of admitting unrelated merges in the same
// window.
func (m *Miner) Mine(ctx context.Context, repo *git.Repository, branchName, startSHA string) ([]Commit, error) {
	tip, err := FindBranch(repo, branchName)
	if err != nil {
		return nil, err
	}

	baseline, err := repo.CommitObject(plumbing.NewHash(startSHA))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBaselineNotFound, startSHA)
	}

	iter, err := repo.Log(&git.LogOptions{From: tip, Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("walking history of %q: %w", branchName, err)
	}
	defer iter.Close()

	marker := mergeMarker(branchName)
	var commits []Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.NumParents() <= 1 {
			return nil
		}
		if !strings.Contains(c.Message, marker) {
			return nil
		}
		if c.Author.When.Before(baseline.Author.When) {
			return nil
		}
		commits = append(commits, Commit{
			SHA:          c.Hash.String(),
			Message:      c.Message,
			ShortMessage: shortMessage(c.Message),
			AuthorTime:   c.Author.When,
			ParentCount:  c.NumParents(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking history of %q: %w", branchName, err)
	}

	return commits, nil
}

// FindBranch resolves a branch name to its tip hash. An exact short-name
// match wins; otherwise the first tracked reference whose full name contains
// the branch name is used, which tolerates remote-prefixed names like
// "refs/remotes/origin/main". With only a contains-match, a branch name that
// is a substring of another tracked branch name can resolve the wrong branch.
func FindBranch(repo *git.Repository, branchName string) (plumbing.Hash, error) {
	refs, err := repo.References()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("listing references: %w", err)
	}
	defer refs.Close()

	var contains *plumbing.Reference
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name()
		if !name.IsBranch() && !name.IsRemote() {
			return nil
		}
		if name.Short() == branchName || strings.HasSuffix(name.Short(), "/"+branchName) {
			contains = ref
			return storer.ErrStop
		}
		if contains == nil && strings.Contains(name.String(), branchName) {
			contains = ref
		}
		return nil
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("listing references: %w", err)
	}
	if contains == nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: %s", ErrBranchNotFound, branchName)
	}
	return contains.Hash(), nil
}

func shortMessage(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		return strings.TrimSpace(message[:i])
	}
	return strings.TrimSpace(message)
}
