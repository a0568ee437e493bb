// Package taiga is a client for the Taiga v1 REST API covering the endpoints
// the terminal client needs: auth, projects, milestones, stories and tasks.
package taiga

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultHost is the hosted Taiga API.
	DefaultHost = "https://api.taiga.io"

	defaultTimeout   = 30 * time.Second
	defaultRateLimit = rate.Limit(10)
	defaultBurst     = 5

	apiPrefix = "/api/v1"
)

// Client talks to one Taiga host. It is safe for concurrent use.
type Client struct {
	host       string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRateLimit sets the request rate limit. A non-positive limit disables it.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithToken sets an auth token obtained earlier (for example from a saved session).
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client for host (DefaultHost when empty).
func NewClient(host string, opts ...Option) *Client {
	if host == "" {
		host = DefaultHost
	}
	c := &Client{
		host:       strings.TrimRight(host, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(defaultRateLimit, defaultBurst),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Host returns the API host this client talks to.
func (c *Client) Host() string { return c.host }

// SetToken replaces the auth token sent with subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current auth token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login authenticates with username and password. The returned token is
// not stored on the client; callers decide whether to keep it.
func (c *Client) Login(ctx context.Context, username, password string) (Auth, error) {
	body := map[string]string{
		"type":     "normal",
		"username": username,
		"password": password,
	}
	var auth Auth
	if err := c.do(ctx, http.MethodPost, "/auth", nil, body, &auth); err != nil {
		return Auth{}, fmt.Errorf("taiga: login: %w", err)
	}
	return auth, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &u); err != nil {
		return User{}, fmt.Errorf("taiga: current user: %w", err)
	}
	return u, nil
}

// Projects lists the projects userID is a member of.
func (c *Client) Projects(ctx context.Context, userID int) ([]Project, error) {
	q := url.Values{}
	if userID > 0 {
		q.Set("member", strconv.Itoa(userID))
	}
	var ps []Project
	if err := c.do(ctx, http.MethodGet, "/projects", q, nil, &ps); err != nil {
		return nil, fmt.Errorf("taiga: listing projects: %w", err)
	}
	return ps, nil
}

// Project fetches the project detail.
func (c *Client) Project(ctx context.Context, id int) (Project, error) {
	var p Project
	if err := c.do(ctx, http.MethodGet, "/projects/"+strconv.Itoa(id), nil, nil, &p); err != nil {
		return Project{}, fmt.Errorf("taiga: project %d: %w", id, err)
	}
	return p, nil
}

// Milestones lists the milestones of a project.
func (c *Client) Milestones(ctx context.Context, projectID int) ([]Milestone, error) {
	q := url.Values{"project": {strconv.Itoa(projectID)}}
	var ms []Milestone
	if err := c.do(ctx, http.MethodGet, "/milestones", q, nil, &ms); err != nil {
		return nil, fmt.Errorf("taiga: milestones of project %d: %w", projectID, err)
	}
	return ms, nil
}

// Milestone fetches one milestone.
func (c *Client) Milestone(ctx context.Context, id int) (Milestone, error) {
	var m Milestone
	if err := c.do(ctx, http.MethodGet, "/milestones/"+strconv.Itoa(id), nil, nil, &m); err != nil {
		return Milestone{}, fmt.Errorf("taiga: milestone %d: %w", id, err)
	}
	return m, nil
}

// MilestoneStats fetches the burndown statistics of a milestone.
func (c *Client) MilestoneStats(ctx context.Context, id int) (MilestoneStats, error) {
	var s MilestoneStats
	if err := c.do(ctx, http.MethodGet, "/milestones/"+strconv.Itoa(id)+"/stats", nil, nil, &s); err != nil {
		return MilestoneStats{}, fmt.Errorf("taiga: milestone %d stats: %w", id, err)
	}
	return s, nil
}

// UserStories lists the user stories of a project planned in milestoneID.
func (c *Client) UserStories(ctx context.Context, projectID, milestoneID int) ([]UserStory, error) {
	q := url.Values{
		"project":   {strconv.Itoa(projectID)},
		"milestone": {strconv.Itoa(milestoneID)},
	}
	var us []UserStory
	if err := c.do(ctx, http.MethodGet, "/userstories", q, nil, &us); err != nil {
		return nil, fmt.Errorf("taiga: user stories of milestone %d: %w", milestoneID, err)
	}
	return us, nil
}

// Tasks lists the tasks of a project planned in milestoneID.
func (c *Client) Tasks(ctx context.Context, projectID, milestoneID int) ([]Task, error) {
	q := url.Values{
		"project":   {strconv.Itoa(projectID)},
		"milestone": {strconv.Itoa(milestoneID)},
	}
	var ts []Task
	if err := c.do(ctx, http.MethodGet, "/tasks", q, nil, &ts); err != nil {
		return nil, fmt.Errorf("taiga: tasks of milestone %d: %w", milestoneID, err)
	}
	return ts, nil
}

// do performs one JSON request and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	u := c.host + apiPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// Project lists are paginated by default; ask for everything.
	req.Header.Set("X-Disable-Pagination", "True")
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	reqID := RequestID(ctx)
	if reqID != "" {
		req.Header.Set("X-Request-Id", reqID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
		slog.String("request_id", reqID),
	)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

type requestIDKey struct{}

// WithRequestID returns a context carrying id, sent as X-Request-Id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id carried by ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
