package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// ErrIssueNotFound is returned when the tracker answered the query but
// reported no issue matching the id and status filter. It is distinct from
// transport errors so callers can tell absence apart from an outage.
var ErrIssueNotFound = errors.New("issue not found")

// statusFilterOpen and statusFilterClosed are the tracker's query values for
// the two lookup tiers.
const (
	statusFilterOpen   = "open"
	statusFilterClosed = "closed"
)

// Client is a read-only client for a Redmine-style issue tracker REST API.
// All methods are side-effect-free GETs.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	limiter *rate.Limiter
}

// ClientOptions configures a tracker client.
type ClientOptions struct {
	// BaseURL is the tracker root, e.g. "https://tracker.example.com"
	BaseURL string

	// APIKey authenticates requests via the X-Redmine-API-Key header
	APIKey string

	// RequestsPerSecond caps the query rate. Zero disables limiting.
	RequestsPerSecond float64

	// Timeout bounds a single HTTP request. Defaults to 30s.
	Timeout time.Duration
}

// NewClient creates a tracker client.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("tracker base URL is required")
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid tracker base URL %q: %w", opts.BaseURL, err)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Client{
		baseURL: opts.BaseURL,
		apiKey:  opts.APIKey,
		httpc:   &http.Client{Timeout: timeout},
		limiter: limiter,
	}, nil
}

// OpenIssue queries the tracker for an open issue with the given id.
// Returns ErrIssueNotFound if the tracker has no open issue with that id.
func (c *Client) OpenIssue(ctx context.Context, id int, includeChildren bool) (*Issue, error) {
	return c.queryIssue(ctx, id, statusFilterOpen, includeChildren)
}

// ClosedIssue queries the tracker for a closed issue with the given id.
// Returns ErrIssueNotFound if the tracker has no closed issue with that id.
func (c *Client) ClosedIssue(ctx context.Context, id int, includeChildren bool) (*Issue, error) {
	return c.queryIssue(ctx, id, statusFilterClosed, includeChildren)
}

// issuesPayload mirrors the tracker's list response.
type issuesPayload struct {
	Issues []issuePayload `json:"issues"`
}

type issuePayload struct {
	ID       int            `json:"id"`
	Subject  string         `json:"subject"`
	Tracker  namedRef       `json:"tracker"`
	Status   statusRef      `json:"status"`
	Children []childPayload `json:"children"`
}

type namedRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type statusRef struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	IsClosed bool   `json:"is_closed"`
}

type childPayload struct {
	ID      int    `json:"id"`
	Subject string `json:"subject"`
}

func (c *Client) queryIssue(ctx context.Context, id int, statusFilter string, includeChildren bool) (*Issue, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	query := url.Values{}
	query.Set("issue_id", strconv.Itoa(id))
	query.Set("status_id", statusFilter)
	query.Set("limit", "1")
	if includeChildren {
		query.Set("include", "children")
	}

	endpoint := fmt.Sprintf("%s/issues.json?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building tracker request for issue #%d: %w", id, err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Redmine-API-Key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying %s issue #%d: %w", statusFilter, id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrIssueNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("querying %s issue #%d: tracker returned %s", statusFilter, id, resp.Status)
	}

	var payload issuesPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding tracker response for issue #%d: %w", id, err)
	}
	if len(payload.Issues) == 0 {
		return nil, ErrIssueNotFound
	}

	return payload.Issues[0].toIssue(), nil
}

func (p *issuePayload) toIssue() *Issue {
	issue := &Issue{
		ID:      p.ID,
		Tracker: p.Tracker.Name,
		Subject: p.Subject,
		Status: Status{
			ID:     p.Status.ID,
			Name:   p.Status.Name,
			Closed: p.Status.IsClosed,
		},
	}
	for _, child := range p.Children {
		issue.Children = append(issue.Children, ChildRef{ID: child.ID, Subject: child.Subject})
	}
	return issue
}
