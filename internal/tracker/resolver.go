package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// issueRefPattern matches the first "#<digits>" reference in a commit message.
// The convention is part of the team's merge-message discipline, not a general
// parser.
var issueRefPattern = regexp.MustCompile(`#(\d+)`)

// ResolveIssueID extracts the referenced issue id from a commit message.
// Returns false when the message carries no "#<digits>" reference.
func ResolveIssueID(message string) (int, bool) {
	match := issueRefPattern.FindStringSubmatch(message)
	if match == nil {
		return 0, false
	}
	id, err := strconv.Atoi(match[1])
	if err != nil {
		// Digits too large for an int; treat as no reference.
		return 0, false
	}
	return id, true
}

// Lookup is one tier of issue resolution. Implementations return
// ErrIssueNotFound for a clean miss and any other error for a transport
// failure.
type Lookup func(ctx context.Context, id int, includeChildren bool) (*Issue, error)

// Resolver resolves issue ids against the tracker through an ordered list of
// lookup tiers and a per-run append-only cache. One Resolver is shared across
// every repository comparison in a run, so an id is fetched at most once.
type Resolver struct {
	lookups []Lookup

	mu    sync.Mutex
	cache map[int]*Issue
	group singleflight.Group

	stderr io.Writer
}

// NewResolver creates a resolver backed by the given client, querying open
// issues first and closed issues second.
func NewResolver(client *Client, stderr io.Writer) *Resolver {
	return NewResolverWithLookups(stderr, client.OpenIssue, client.ClosedIssue)
}

// NewResolverWithLookups creates a resolver with an explicit lookup order.
func NewResolverWithLookups(stderr io.Writer, lookups ...Lookup) *Resolver {
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Resolver{
		lookups: lookups,
		cache:   make(map[int]*Issue),
		stderr:  stderr,
	}
}

// Resolve returns the issue for the given id, fetching it through the lookup
// tiers on first use. A transport failure in a tier degrades to a miss for
// that tier. When every tier misses, one error is logged and the id is
// reported unresolvable; unresolvable ids are not cached and contribute
// nothing to any feature set.
func (r *Resolver) Resolve(ctx context.Context, id int) (*Issue, bool) {
	r.mu.Lock()
	if issue, ok := r.cache[id]; ok {
		r.mu.Unlock()
		return issue, true
	}
	r.mu.Unlock()

	result, err, _ := r.group.Do(strconv.Itoa(id), func() (interface{}, error) {
		return r.fetch(ctx, id)
	})
	if err != nil {
		fmt.Fprintf(r.stderr, "error: issue #%d could not be resolved: %v\n", id, err)
		return nil, false
	}

	issue := result.(*Issue)
	r.mu.Lock()
	if cached, ok := r.cache[id]; ok {
		issue = cached
	} else {
		r.cache[id] = issue
	}
	r.mu.Unlock()
	return issue, true
}

// CachedCount returns the number of issues resolved so far in this run.
func (r *Resolver) CachedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

func (r *Resolver) fetch(ctx context.Context, id int) (*Issue, error) {
	var lastErr error
	for _, lookup := range r.lookups {
		issue, err := lookup(ctx, id, true)
		if err == nil {
			return issue, nil
		}
		if !errors.Is(err, ErrIssueNotFound) {
			lastErr = err
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrIssueNotFound
}
