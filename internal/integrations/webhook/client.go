// Package webhook posts completed assistance requests to the configured
// fulfillment endpoint. With no endpoint configured it degrades to a
// log-only no-op that still reports success.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"food-assist-agent/internal/domain"
)

const urlParameterSuffix = "/fulfillment-webhook-url"

// Getter fetches a named parameter, typically from SSM Parameter Store.
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("webhook: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client is the notification sink. The endpoint URL comes from WithURL or,
// when a paramstore getter is configured, is fetched lazily on the first
// Notify and reused for the lifetime of the process.
type Client struct {
	url         string
	httpClient  *http.Client
	getter      Getter
	paramPrefix string

	urlOnce     sync.Once
	resolvedURL string
	urlErr      error
}

type Option func(*Client)

// WithURL sets the webhook endpoint directly. An empty URL leaves the client
// in log-only mode.
func WithURL(url string) Option {
	return func(c *Client) {
		c.url = strings.TrimSpace(url)
	}
}

// WithParamStore resolves the endpoint from the parameter store under prefix
// instead of a static URL.
func WithParamStore(getter Getter, prefix string) Option {
	return func(c *Client) {
		c.getter = getter
		c.paramPrefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a notification sink client. The call never fails on a
// missing endpoint: absence of configuration is the supported no-op mode.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// resolveURL returns the endpoint, fetching it from the parameter store on
// the first call when a getter is configured. An empty result means log-only
// mode.
func (c *Client) resolveURL(ctx context.Context) (string, error) {
	if c.getter == nil || c.paramPrefix == "" {
		return c.url, nil
	}
	c.urlOnce.Do(func() {
		c.resolvedURL, c.urlErr = c.getter.GetParameter(ctx, c.paramPrefix+urlParameterSuffix)
		if c.urlErr != nil {
			c.urlErr = fmt.Errorf("webhook: resolve endpoint: %w", c.urlErr)
		}
	})
	return strings.TrimSpace(c.resolvedURL), c.urlErr
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// Notify POSTs the record to the fulfillment endpoint as JSON. A single
// attempt with the client's bounded timeout; the caller treats any error,
// timeouts included, as an ordinary sink failure.
func (c *Client) Notify(ctx context.Context, rec domain.FulfillmentRecord) error {
	url, err := c.resolveURL(ctx)
	if err != nil {
		return err
	}
	if url == "" {
		slog.Info("fulfillment webhook not configured, notification logged only",
			"session_id", rec.SessionID,
			"person_name", rec.PersonName,
			"assistance_type", rec.AssistanceType)
		return nil
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("webhook: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.resolvedHTTPClient().Do(req)
	if err != nil {
		return fmt.Errorf("webhook: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 1<<20))
	return nil
}
