package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/rmax-ai/collabgraph/pkg/artist"
	"github.com/rmax-ai/collabgraph/pkg/backoff"
)

// DefaultEndpoint is the address collabgraph serve listens on by default.
const DefaultEndpoint = "http://127.0.0.1:8091"

// Client is the collabgraph SDK client.
type Client struct {
	endpoint   string
	http       *http.Client
	backoff    backoff.Strategy
	maxRetries int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRetries sets how many times a 5xx or 429 response is retried and the
// delay strategy between attempts.
func WithRetries(n int, strategy backoff.Strategy) Option {
	return func(c *Client) {
		c.maxRetries = n
		if strategy != nil {
			c.backoff = strategy
		}
	}
}

// NewClient creates a new collabgraph client.
// endpoint defaults to DefaultEndpoint if empty.
func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: endpoint,
		// Expansions fan out to the catalog; give them room.
		http: &http.Client{
			Timeout: 5 * time.Minute,
		},
		backoff:    backoff.Default(),
		maxRetries: 2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the server address the client talks to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Ping checks if the server is reachable and healthy.
func (c *Client) Ping(ctx context.Context) error {
	var status Status
	if err := c.getJSON(ctx, "/v1/health", nil, &status); err != nil {
		return err
	}
	if status.Status != "ok" {
		return errors.Newf("server unhealthy: %s", status.Status)
	}
	return nil
}

// Artist looks up the metadata of one artist.
func (c *Client) Artist(ctx context.Context, name string) (artist.Info, error) {
	var info artist.Info
	if name == "" {
		return info, errors.New("artist name is required")
	}
	err := c.getJSON(ctx, "/v1/artists", url.Values{"name": {name}}, &info)
	return info, err
}

// Songs returns up to limit songs of an artist, most collaborative first.
// limit <= 0 uses the server default.
func (c *Client) Songs(ctx context.Context, name string, limit int) (SongsResult, error) {
	var res SongsResult
	if name == "" {
		return res, errors.New("artist name is required")
	}
	q := url.Values{"artist": {name}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	err := c.getJSON(ctx, "/v1/songs", q, &res)
	return res, err
}

// Coauthors returns the n most frequent coauthors of an artist.
// n <= 0 uses the server default.
func (c *Client) Coauthors(ctx context.Context, name string, n int) ([]artist.CoauthorRank, error) {
	if name == "" {
		return nil, errors.New("artist name is required")
	}
	q := url.Values{"artist": {name}}
	if n > 0 {
		q.Set("n", strconv.Itoa(n))
	}
	var res struct {
		Coauthors []artist.CoauthorRank `json:"coauthors"`
	}
	if err := c.getJSON(ctx, "/v1/coauthors", q, &res); err != nil {
		return nil, err
	}
	return res.Coauthors, nil
}

// Filters lists the filter kinds and presets the server accepts.
func (c *Client) Filters(ctx context.Context) (FiltersResult, error) {
	var res FiltersResult
	err := c.getJSON(ctx, "/v1/filters", nil, &res)
	return res, err
}

// Expand builds the collaboration graph around req.Seed.
func (c *Client) Expand(ctx context.Context, req ExpandRequest) (*GraphResult, error) {
	q, err := graphQuery(req)
	if err != nil {
		return nil, err
	}
	var res GraphResult
	if err := c.getJSON(ctx, "/v1/graph", q, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Render expands req.Seed and returns the graph rendered by the server in
// format ("html", "json", "csv" or "text").
func (c *Client) Render(ctx context.Context, req ExpandRequest, format string) ([]byte, error) {
	q, err := graphQuery(req)
	if err != nil {
		return nil, err
	}
	if format != "" {
		q.Set("format", format)
	}
	resp, err := c.get(ctx, "/v1/graph", q)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func graphQuery(req ExpandRequest) (url.Values, error) {
	if req.Seed == "" {
		return nil, errors.New("seed is required")
	}
	q := url.Values{"seed": {req.Seed}}
	for param, v := range map[string]*int{"depth": req.MaxDepth, "breadth": req.Breadth} {
		if v == nil {
			continue
		}
		if *v < 0 {
			return nil, errors.Newf("%s must not be negative, got %d", param, *v)
		}
		q.Set(param, strconv.Itoa(*v))
	}
	if req.Preset != "" {
		q.Set("preset", req.Preset)
	}
	kinds := make([]string, 0, len(req.Filters))
	for k := range req.Filters {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		q.Set(k, req.Filters[k])
	}
	return q, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out interface{}) error {
	resp, err := c.get(ctx, path, q)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s response", path)
	}
	return nil
}

// get issues a GET and returns a 2xx response. 5xx and 429 responses are
// retried; other failures come back as *APIError.
func (c *Client) get(ctx context.Context, path string, q url.Values) (*http.Response, error) {
	target := c.endpoint + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, errors.Wrap(err, "create request")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, errors.Wrapf(err, "server unreachable at %s", c.endpoint)
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		apiErr := decodeError(resp)
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		if !retryable || attempt >= c.maxRetries {
			return nil, apiErr
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.backoff.Next(attempt)):
		}
	}
}

func decodeError(resp *http.Response) *APIError {
	defer resp.Body.Close()
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
