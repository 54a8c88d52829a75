// Paginated, retrying client for the provider resource API
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/spotify-backup/internal/shared"
)

const (
	DefaultBaseURL    = "https://api.spotify.com/v1"
	DefaultMaxTries   = 3
	DefaultRetryDelay = 2 * time.Second

	maxErrorBody = 512
)

// ClientOpts configures a [Client].
type ClientOpts struct {
	BaseURL    string
	HTTPClient *http.Client  // base transport; the bearer token is layered on top
	MaxTries   int           // attempts per request; <= 0 means [DefaultMaxTries]
	RetryDelay time.Duration // fixed wait between attempts
	RateLimit  float64       // requests per second; 0 disables limiting
	Logger     *log.Logger
}

// DefaultClientOpts returns options matching the provider's public API.
func DefaultClientOpts() ClientOpts {
	return ClientOpts{
		BaseURL:    DefaultBaseURL,
		MaxTries:   DefaultMaxTries,
		RetryDelay: DefaultRetryDelay,
	}
}

// Client performs authenticated GET requests against the provider API.
//
// Every failure kind (transport, non-2xx status, undecodable body) is retried the same way.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxTries   int
	retryDelay time.Duration
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewClient creates a client bound to an access token.
//
// An empty BaseURL or a non-positive MaxTries falls back to [DefaultClientOpts]. A zero RetryDelay retries immediately.
func NewClient(token string, opts ClientOpts) *Client {
	defaults := DefaultClientOpts()
	if opts.BaseURL == "" {
		opts.BaseURL = defaults.BaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.MaxTries <= 0 {
		opts.MaxTries = defaults.MaxTries
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, opts.HTTPClient)
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})

	httpClient := oauth2.NewClient(ctx, src)
	httpClient.Timeout = opts.HTTPClient.Timeout

	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		maxTries:   opts.MaxTries,
		retryDelay: opts.RetryDelay,
		logger:     opts.Logger,
	}
	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return c
}

// StatusError is returned for a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// FetchError reports that every attempt for a URL failed.
//
// It matches [shared.ErrFetchFailed] and the last attempt's cause with [errors.Is].
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%v: %s after %d attempts: %v", shared.ErrFetchFailed, e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{shared.ErrFetchFailed, e.Err}
}

// ResolveURL joins path to the base URL unless it is already absolute, then appends params.
func (c *Client) ResolveURL(path string, params url.Values) string {
	full := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		full = c.baseURL + "/" + strings.TrimLeft(path, "/")
	}

	if len(params) > 0 {
		sep := "?"
		if strings.Contains(full, "?") {
			sep = "&"
		}
		full += sep + params.Encode()
	}
	return full
}

// Get fetches path and decodes the JSON object it returns.
//
// maxTries <= 0 uses the client's configured attempt count. The delay is not applied after the last attempt.
func (c *Client) Get(ctx context.Context, path string, params url.Values, maxTries int) (JSONObject, error) {
	return fetch[JSONObject](ctx, c, c.ResolveURL(path, params), maxTries)
}

type page struct {
	Items []JSONObject `json:"items"`
	Next  *string      `json:"next"`
}

// List fetches path and every page after it, concatenating items in page order.
func (c *Client) List(ctx context.Context, path string, params url.Values) ([]JSONObject, error) {
	p, err := fetch[page](ctx, c, c.ResolveURL(path, params), c.maxTries)
	if err != nil {
		return nil, err
	}

	items := append([]JSONObject{}, p.Items...)
	for pages := 1; p.Next != nil && *p.Next != ""; pages++ {
		next := *p.Next
		if p, err = fetch[page](ctx, c, c.ResolveURL(next, nil), c.maxTries); err != nil {
			return nil, err
		}
		items = append(items, p.Items...)
		c.logger.Debug("fetched page", "url", next, "page", pages+1, "items", len(items))
	}

	return items, nil
}

// fetch decodes each attempt into a fresh T.
//
// Attempts are spaced by a constant delay; cancellation stops the retries immediately.
func fetch[T any](ctx context.Context, c *Client, rawURL string, maxTries int) (T, error) {
	var zero T
	if maxTries <= 0 {
		maxTries = c.maxTries
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryDelay), uint64(maxTries-1)),
		ctx,
	)

	var (
		out     T
		attempt int
		lastErr error
	)
	err := backoff.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}

		attempt++
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		var v T
		if err := c.do(ctx, rawURL, &v); err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			lastErr = err
			c.logger.Warn("error fetching URL", "url", rawURL, "attempt", attempt, "max_tries", maxTries, "err", err)
			return err
		}

		out = v
		return nil
	}, policy)

	switch {
	case err == nil:
		return out, nil
	case ctx.Err() != nil:
		return zero, ctx.Err()
	case lastErr == nil:
		return zero, err
	default:
		return zero, &FetchError{URL: rawURL, Attempts: attempt, Err: lastErr}
	}
}

func (c *Client) do(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))})
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
