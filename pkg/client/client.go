// Package client provides the HTTP client shared by the platform adapters.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultTimeout = 20 * time.Second

// Browser-like headers for plain HTML pages (dev.bukkit.org, curseforge.com,
// planetminecraft.com block obvious non-browser clients).
var htmlHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
}

// StatusError is returned for non-2xx upstream responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Body)
}

// Option configures the client during construction.
type Option interface {
	Apply(context.Context, *Client) error
}

// Client wraps an http.Client with the request helpers the adapters need.
type Client struct {
	client *http.Client
}

// New creates a client. All requests go through an otelhttp transport.
func New(ctx context.Context, options ...Option) (*Client, error) {
	c := &Client{
		client: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, opt := range options {
		err := opt.Apply(ctx, c)
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}

// GitHubClient builds a go-github client on top of this client's transport.
func (c *Client) GitHubClient() *github.Client {
	return github.NewClient(c.client)
}

// GetJSON performs a GET request and decodes the JSON response into target.
// Non-2xx responses are returned as a *StatusError.
func (c *Client) GetJSON(ctx context.Context, rawURL string, headers map[string]string, target interface{}) error {
	body, err := c.get(ctx, rawURL, headers)
	if err != nil {
		return err
	}

	err = json.Unmarshal(body, target)
	if err != nil {
		return fmt.Errorf("failed to unmarshall response from %s: %w", rawURL, err)
	}

	return nil
}

// GetHTML fetches a page with browser-like headers and returns the raw body.
func (c *Client) GetHTML(ctx context.Context, rawURL string) (string, error) {
	body, err := c.get(ctx, rawURL, htmlHeaders)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

func (c *Client) get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", rawURL, err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), 200),
		}
	}

	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// WithToken adds a static OAuth2 bearer token (GitHub API).
func WithToken(token string) Option {
	return authClient{token: token}
}

// WithRetry retries transient failures via go-retryablehttp.
func WithRetry(retryMax int, retryWaitMin time.Duration) Option {
	r := retryClient{
		retryClient: retryablehttp.NewClient(),
	}

	r.retryClient.RetryMax = retryMax
	r.retryClient.RetryWaitMin = retryWaitMin

	return r
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return timeoutClient{timeout: timeout}
}

// WithRateLimiter throttles requests based on X-RateLimit response headers.
func WithRateLimiter(remaining, safetyBuffer int, resetTime time.Time) Option {
	return &adaptiveRateLimiter{
		remaining:    remaining,
		resetTime:    resetTime,
		safetyBuffer: safetyBuffer,
	}
}

type timeoutClient struct {
	timeout time.Duration
}

func (t timeoutClient) Apply(_ context.Context, c *Client) error {
	if t.timeout <= 0 {
		return fmt.Errorf("invalid timeout: %s", t.timeout)
	}

	c.client.Timeout = t.timeout

	return nil
}
