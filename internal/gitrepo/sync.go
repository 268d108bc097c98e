package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Synchronizer brings local working copies up to date with their remotes.
// Opened repository handles are cached per local path for the run, so two
// branch groups of the same comparison share one handle.
type Synchronizer struct {
	mu      sync.Mutex
	handles map[string]*git.Repository

	prompt CredentialPrompt
	stderr io.Writer
}

// NewSynchronizer creates a synchronizer. prompt may be nil, in which case
// repositories without configured credentials are accessed anonymously.
func NewSynchronizer(prompt CredentialPrompt, stderr io.Writer) *Synchronizer {
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Synchronizer{
		handles: make(map[string]*git.Repository),
		prompt:  prompt,
		stderr:  stderr,
	}
}

// Sync guarantees on return that the local working copy at spec.LocalPath
// exists and that the local branch tip matches the remote tracking branch.
// Any failure, including a non-fast-forwardable local branch, is fatal for
// the run.
func (s *Synchronizer) Sync(ctx context.Context, spec SyncSpec) (*git.Repository, error) {
	auth, err := s.auth(spec)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	repo, opened := s.handles[spec.LocalPath]
	s.mu.Unlock()

	if !opened {
		repo, err = s.openOrClone(ctx, spec, auth)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.handles[spec.LocalPath] = repo
		s.mu.Unlock()
	}

	if err := s.updateBranch(ctx, repo, spec, auth); err != nil {
		return nil, err
	}
	return repo, nil
}

func (s *Synchronizer) auth(spec SyncSpec) (transport.AuthMethod, error) {
	creds := spec.Credentials
	if creds == nil && s.prompt != nil {
		prompted, err := s.prompt.Prompt(spec.RepoName)
		if err != nil {
			return nil, fmt.Errorf("reading credentials for %s: %w", spec.RepoName, err)
		}
		creds = prompted
	}
	if creds == nil {
		return nil, nil
	}
	return &githttp.BasicAuth{Username: creds.Username, Password: creds.Password}, nil
}

func (s *Synchronizer) openOrClone(ctx context.Context, spec SyncSpec, auth transport.AuthMethod) (*git.Repository, error) {
	repo, err := git.PlainOpen(spec.LocalPath)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("opening %s at %s: %w", spec.RepoName, spec.LocalPath, err)
	}

	fmt.Fprintf(s.stderr, "cloning %s from %s\n", spec.RepoName, spec.RemoteURL)
	repo, err = git.PlainCloneContext(ctx, spec.LocalPath, false, &git.CloneOptions{
		URL:  spec.RemoteURL,
		Auth: auth,
	})
	if err != nil {
		return nil, fmt.Errorf("cloning %s: %w", spec.RepoName, err)
	}
	return repo, nil
}

// updateBranch fetches the remote and fast-forwards the local branch to its
// remote tracking ref. The local branch is created from the remote tracking
// ref when it does not exist yet.
func (s *Synchronizer) updateBranch(ctx context.Context, repo *git.Repository, spec SyncSpec, auth transport.AuthMethod) error {
	err := repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: git.DefaultRemoteName,
		Auth:       auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("fetching %s: %w", spec.RepoName, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree of %s: %w", spec.RepoName, err)
	}

	branchRef := plumbing.NewBranchReferenceName(spec.BranchName)
	if _, err := repo.Reference(branchRef, true); err != nil {
		remoteRef, remoteErr := repo.Reference(
			plumbing.NewRemoteReferenceName(git.DefaultRemoteName, spec.BranchName), true)
		if remoteErr != nil {
			return fmt.Errorf("repository %s has no branch %q locally or on the remote", spec.RepoName, spec.BranchName)
		}
		err = worktree.Checkout(&git.CheckoutOptions{
			Hash:   remoteRef.Hash(),
			Branch: branchRef,
			Create: true,
		})
		if err != nil {
			return fmt.Errorf("creating local branch %q in %s: %w", spec.BranchName, spec.RepoName, err)
		}
		return nil
	}

	if err := worktree.Checkout(&git.CheckoutOptions{Branch: branchRef}); err != nil {
		return fmt.Errorf("checking out %q in %s: %w", spec.BranchName, spec.RepoName, err)
	}

	err = worktree.PullContext(ctx, &git.PullOptions{
		RemoteName:    git.DefaultRemoteName,
		ReferenceName: branchRef,
		Auth:          auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("updating %q in %s: %w", spec.BranchName, spec.RepoName, err)
	}
	return nil
}
