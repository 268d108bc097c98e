package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables that override secrets from the config file, so the
// file can be committed without credentials.
const (
	EnvTrackerKey  = "FEATCOMP_TRACKER_KEY"
	EnvGitUser     = "FEATCOMP_GIT_USER"
	EnvGitPassword = "FEATCOMP_GIT_PASSWORD"
)

// Config is the full run configuration loaded from YAML.
type Config struct {
	// Tracker configures the issue tracker connection
	Tracker TrackerConfig `yaml:"tracker"`

	// Workspace is the directory holding local working copies
	Workspace string `yaml:"workspace"`

	// Output is the path the comparison note is written to
	Output string `yaml:"output"`

	// Previous is the path of the prior note used for incremental
	// filtering; empty means no filtering (first run)
	Previous string `yaml:"previous,omitempty"`

	// PlannedMarkers are the substrings that identify a planned child
	// task's subject (case-sensitive)
	PlannedMarkers []string `yaml:"planned_markers"`

	// Repositories lists the repository comparisons to run
	Repositories []RepositoryConfig `yaml:"repositories"`
}

// TrackerConfig configures the issue tracker connection.
type TrackerConfig struct {
	// BaseURL is the tracker root URL
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates tracker queries; overridable via
	// FEATCOMP_TRACKER_KEY
	APIKey string `yaml:"api_key,omitempty"`

	// OpenStatusID is the numeric status code the tracker uses for open
	// planned tasks. Default: 1.
	OpenStatusID int `yaml:"open_status_id,omitempty"`

	// RequestsPerSecond caps tracker query rate. Zero disables limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
}

// RepositoryConfig describes one repository comparison: a baseline commit,
// a "from" branch group, and a "to" branch group.
type RepositoryConfig struct {
	// Name is the logical repository name; it keys the note sections
	Name string `yaml:"name"`

	// RemoteURL is the clone/fetch URL
	RemoteURL string `yaml:"remote_url"`

	// StartSHA is the baseline commit; merges older than its author
	// timestamp are ignored
	StartSHA string `yaml:"start_sha"`

	// Username and Password authenticate against the remote; when both
	// are empty the operator is prompted interactively. Overridable via
	// FEATCOMP_GIT_USER / FEATCOMP_GIT_PASSWORD.
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`

	// FromBranches is the reference branch group (what has been merged)
	FromBranches []string `yaml:"from_branches"`

	// ToBranches is the comparison branch group (what should catch up)
	ToBranches []string `yaml:"to_branches"`
}

// Load reads, env-overrides, and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if key := os.Getenv(EnvTrackerKey); key != "" {
		c.Tracker.APIKey = key
	}
	user := os.Getenv(EnvGitUser)
	password := os.Getenv(EnvGitPassword)
	if user == "" && password == "" {
		return
	}
	for i := range c.Repositories {
		if user != "" {
			c.Repositories[i].Username = user
		}
		if password != "" {
			c.Repositories[i].Password = password
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Tracker.OpenStatusID == 0 {
		c.Tracker.OpenStatusID = 1
	}
	if c.Workspace == "" {
		c.Workspace = "repos"
	}
	if c.Output == "" {
		c.Output = "comparison-note.txt"
	}
}

// Validate checks the configuration for conditions that would make a run
// meaningless, with messages pointing at the offending entry.
func (c *Config) Validate() error {
	if c.Tracker.BaseURL == "" {
		return fmt.Errorf("tracker.base_url is required")
	}
	if len(c.Repositories) == 0 {
		return fmt.Errorf("at least one repository comparison is required")
	}
	seen := make(map[string]bool)
	for i, repo := range c.Repositories {
		if repo.Name == "" {
			return fmt.Errorf("repositories[%d]: name is required", i)
		}
		if seen[repo.Name] {
			return fmt.Errorf("repositories[%d]: duplicate name %q", i, repo.Name)
		}
		seen[repo.Name] = true
		if repo.RemoteURL == "" {
			return fmt.Errorf("repository %q: remote_url is required", repo.Name)
		}
		if repo.StartSHA == "" {
			return fmt.Errorf("repository %q: start_sha is required", repo.Name)
		}
		if len(repo.FromBranches) == 0 {
			return fmt.Errorf("repository %q: from_branches must not be empty", repo.Name)
		}
		if len(repo.ToBranches) == 0 {
			return fmt.Errorf("repository %q: to_branches must not be empty", repo.Name)
		}
	}
	return nil
}

// LocalPath returns the working copy location for a repository inside the
// configured workspace.
func (c *Config) LocalPath(repoName string) string {
	return filepath.Join(c.Workspace, repoName)
}
