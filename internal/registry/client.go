package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"distress/pkg/platform/sentinel"
)

// Searcher is the capability the resolution pipeline needs from the company
// registry: a candidate set for a free-text name. An empty slice means no
// match; it is never an error.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Candidate, error)
}

// Detailer fetches company and insolvency detail for a resolved number.
// A nil result with nil error means the registry has no record (valid
// absence).
type Detailer interface {
	Profile(ctx context.Context, companyNumber string) (*CompanyProfile, error)
	Insolvency(ctx context.Context, companyNumber string) (*InsolvencyDetail, error)
}

// DefaultSearchLimit matches the registry's default result page used by the
// pipeline.
const DefaultSearchLimit = 5

const (
	maxAttempts = 3
	baseBackoff = 500 * time.Millisecond
)

// Client talks to the Companies House public data API. Transient failures
// (timeouts, 429s, 5xx) are retried with bounded exponential backoff here so
// the pipeline never carries retry logic.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(c *Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient constructs a Companies House client. The API key is sent as the
// Basic auth username with an empty password, per the registry's scheme.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns candidate companies for a free-text name query. No results
// is an empty slice, never an error.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("items_per_page", strconv.Itoa(limit))

	var payload struct {
		Items []Candidate `json:"items"`
	}
	if err := c.get(ctx, "/search/companies?"+q.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("search companies: %w", err)
	}
	return payload.Items, nil
}

// Profile returns company detail, or nil when the registry has no record.
func (c *Client) Profile(ctx context.Context, companyNumber string) (*CompanyProfile, error) {
	var profile CompanyProfile
	err := c.get(ctx, "/company/"+url.PathEscape(companyNumber), &profile)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("company profile: %w", err)
	}
	return &profile, nil
}

// Insolvency returns insolvency history, or nil when the company has none.
func (c *Client) Insolvency(ctx context.Context, companyNumber string) (*InsolvencyDetail, error) {
	var detail InsolvencyDetail
	err := c.get(ctx, "/company/"+url.PathEscape(companyNumber)+"/insolvency", &detail)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("company insolvency: %w", err)
	}
	return &detail, nil
}

// get performs an authenticated GET with bounded exponential backoff on
// transient failures. 404 surfaces as sentinel.ErrNotFound for callers to
// translate into valid absence.
func (c *Client) get(ctx context.Context, path string, out any) error {
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, baseBackoff<<(attempt-1)); err != nil {
				return err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return err
		}
		req.SetBasicAuth(c.apiKey, "")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			c.logger.Warn("registry request failed", "path", path, "attempt", attempt+1, "error", err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return sentinel.ErrNotFound
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("registry status %d", resp.StatusCode)
			c.logger.Warn("registry transient failure", "path", path, "status", resp.StatusCode, "attempt", attempt+1)
			continue
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("registry status %d", resp.StatusCode)
		}

		if readErr != nil {
			lastErr = readErr
			continue
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode registry response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, lastErr)
}

func isNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
