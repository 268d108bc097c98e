package compare

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pascalheritier/FeatureComparator/internal/tracker"
)

// Classifier separates missing features into planned and unplanned. A
// feature counts as planned when one of its children carries a configured
// marker in its subject and that child is still open: the work is already
// scheduled for the target line and needs no report entry.
type Classifier struct {
	openLookup   tracker.Lookup
	markers      []string
	openStatusID int
	stderr       io.Writer
}

// NewClassifier creates a classifier. openLookup must query the tracker's
// open tier; a child that only exists closed must not count as planned.
func NewClassifier(openLookup tracker.Lookup, markers []string, openStatusID int, stderr io.Writer) *Classifier {
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Classifier{
		openLookup:   openLookup,
		markers:      markers,
		openStatusID: openStatusID,
		stderr:       stderr,
	}
}

// Unplanned returns the subset of missing features with no open planned
// child. Each feature is decided independently; a failed child fetch retains
// the feature.
func (c *Classifier) Unplanned(ctx context.Context, missing []*tracker.Issue) []*tracker.Issue {
	var unplanned []*tracker.Issue
	for _, issue := range missing {
		if c.isPlanned(ctx, issue) {
			continue
		}
		unplanned = append(unplanned, issue)
	}
	return unplanned
}

func (c *Classifier) isPlanned(ctx context.Context, issue *tracker.Issue) bool {
	child, ok := c.plannedChild(issue)
	if !ok {
		return false
	}

	// Child references carry no status, so the open tier decides: a hit
	// with the open status code means the planned task is still live.
	full, err := c.openLookup(ctx, child.ID, true)
	if err != nil {
		fmt.Fprintf(c.stderr, "warning: planned child #%d of issue #%d could not be fetched: %v\n", child.ID, issue.ID, err)
		return false
	}
	return full.Status.ID == c.openStatusID
}

func (c *Classifier) plannedChild(issue *tracker.Issue) (tracker.ChildRef, bool) {
	for _, child := range issue.Children {
		for _, marker := range c.markers {
			if strings.Contains(child.Subject, marker) {
				return child, true
			}
		}
	}
	return tracker.ChildRef{}, false
}
