// Package issueclient talks to the remote issue store over its REST contract.
package issueclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"issuetrack/internal/logging"
	"issuetrack/internal/model"

	"github.com/google/uuid"
)

const (
	defaultUserAgent = "issuetrack"

	// maxBodyBytes caps how much of a response we read.
	maxBodyBytes = 8 << 20

	// RequestIDHeader correlates client and server log lines.
	RequestIDHeader = "X-Request-ID"
)

// Client is safe for concurrent use; the TUI shares one instance across all views.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	log        *logging.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests use httptest's).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds every request. Zero means no timeout. It applies to a copy
// of the HTTP client, whatever order the options come in.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// New returns a client for the store rooted at baseURL (e.g. http://localhost:8000).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %q", baseURL)
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{},
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) (model.Health, error) {
	var out model.Health
	err := c.do(ctx, http.MethodGet, "/health", nil, nil, &out)
	return out, err
}

// List fetches one page of issues for q. Only present, non-empty filter fields are
// sent; absent fields are omitted entirely.
func (c *Client) List(ctx context.Context, q model.CanonicalQuery) (model.IssuePage, error) {
	var out model.IssuePage
	if err := c.do(ctx, http.MethodGet, "/issues", EncodeQuery(q), nil, &out); err != nil {
		return model.IssuePage{}, err
	}
	if out.Items == nil {
		out.Items = []model.Issue{}
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id int) (model.Issue, error) {
	var out model.Issue
	err := c.do(ctx, http.MethodGet, "/issues/"+strconv.Itoa(id), nil, nil, &out)
	return out, err
}

func (c *Client) Create(ctx context.Context, in model.IssueCreate) (model.Issue, error) {
	var out model.Issue
	err := c.do(ctx, http.MethodPost, "/issues", nil, in, &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, id int, in model.IssueUpdate) (model.Issue, error) {
	var out model.Issue
	err := c.do(ctx, http.MethodPut, "/issues/"+strconv.Itoa(id), nil, in, &out)
	return out, err
}

// Assignees returns every distinct assignee the store knows about.
func (c *Client) Assignees(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/assignees", nil, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// EncodeQuery turns q into request parameters. Empty optional fields never appear.
func EncodeQuery(q model.CanonicalQuery) url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	if q.Title != "" {
		v.Set("title", q.Title)
	}
	if q.Status != nil && *q.Status != "" {
		v.Set("status", string(*q.Status))
	}
	if q.Priority != nil && *q.Priority != "" {
		v.Set("priority", string(*q.Priority))
	}
	if q.Assignee != "" {
		v.Set("assignee", q.Assignee)
	}
	if q.SortBy != "" {
		v.Set("sort_by", string(q.SortBy))
	}
	v.Set("sort_desc", strconv.FormatBool(q.SortDesc))
	return v
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Method: method, Path: path, Message: "encode request: " + err.Error(), Err: err}
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return newNetworkError(method, path, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.log.With("method", method, "path", path, "request_id", reqID)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", "err", err, "dur", time.Since(start))
		return newNetworkError(method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Warn("read response failed", "status", resp.StatusCode, "err", err)
		return newNetworkError(method, path, err)
	}
	log.Debug("request done", "status", resp.StatusCode, "dur", time.Since(start), "bytes", len(respBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(method, path, resp.StatusCode, resp.Status, respBody)
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &TransportError{Method: method, Path: path, StatusCode: resp.StatusCode, Message: "decode response: " + err.Error(), Err: err}
	}
	return nil
}
