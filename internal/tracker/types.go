package tracker

// Issue represents a tracked work item fetched from the issue tracker.
// Issues are owned by the resolver's per-run cache and are never mutated
// after first fetch.
type Issue struct {
	// ID is the tracker-wide stable identifier
	ID int

	// Tracker is the category label (e.g. "Bug", "Feature")
	Tracker string

	// Subject is the issue title
	Subject string

	// Status is the workflow state at fetch time
	Status Status

	// Children holds lightweight references to child work items,
	// populated only when the query requested them inline
	Children []ChildRef
}

// Status represents an issue's workflow state.
type Status struct {
	// ID is the tracker's numeric status code
	ID int

	// Name is the display name (e.g. "New", "Closed")
	Name string

	// Closed is true if the status counts as closed
	Closed bool
}

// ChildRef is a lightweight reference to a child work item.
// It carries no status; callers needing status must fetch the full issue.
type ChildRef struct {
	ID      int
	Subject string
}
