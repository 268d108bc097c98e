package gitrepo

import "time"

// Commit is the read-only view of a repository commit used by the miner's
// callers.
type Commit struct {
	// SHA is the full commit hash
	SHA string

	// Message is the full commit message
	Message string

	// ShortMessage is the first line of the message
	ShortMessage string

	// AuthorTime is the author timestamp, the ordering key for the
	// baseline cut
	AuthorTime time.Time

	// ParentCount is the number of parent commits; merges have more
	// than one
	ParentCount int
}

// Credentials authenticates against a git remote over HTTP.
type Credentials struct {
	Username string
	Password string
}

// SyncSpec identifies one branch of one remote repository to bring up to
// date locally.
type SyncSpec struct {
	// RepoName is the logical repository name used in operator output
	RepoName string

	// BranchName is the branch whose local tip must match the remote
	BranchName string

	// LocalPath is the working copy location
	LocalPath string

	// RemoteURL is the clone/fetch URL
	RemoteURL string

	// Credentials is optional; when nil the synchronizer falls back to
	// its credential prompt, or to anonymous access if no prompt is set
	Credentials *Credentials
}
