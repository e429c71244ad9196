// Package forge provides a Gitea-compatible REST client for listing users,
// repositories and commits.
package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/forgeworks/forgestat/internal/logx"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultPageSize  = 50
	defaultMaxRetry  = 3
	defaultRetryBase = 500 * time.Millisecond
	defaultUserAgent = "forgestat"
)

// Options configures the Client.
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Token auth wins over basic auth when both are set.
	Token    string
	Username string
	Password string

	// Retry config for transient and rate limited responses.
	MaxRetries int
	RetryBase  time.Duration
	PageSize   int
}

// Client is a minimal forge REST client with bounded retries and
// page-loop pagination.
type Client struct {
	http  *http.Client
	opts  Options
	sleep func(time.Duration)
}

// NewClient creates a new Client with sane defaults.
func NewClient(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	if o.PageSize <= 0 {
		o.PageSize = defaultPageSize
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		sleep: time.Sleep,
	}
}

// getJSON issues a GET for path with query values and decodes the JSON
// response into out. Rate limited and transient server errors are retried
// with exponential backoff; any other non-200 status is an error.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	target := c.opts.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return fmt.Errorf("forge request for %s: %w", path, err)
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/json")
		if c.opts.Token != "" {
			req.Header.Set("Authorization", "token "+c.opts.Token)
		} else if c.opts.Username != "" {
			req.SetBasicAuth(c.opts.Username, c.opts.Password)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if !c.shouldRetry(attempts) {
				return fmt.Errorf("forge request for %s: %w", path, err)
			}
			c.backoffAndRetry(&attempts, path, err)
			continue
		}

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			_ = resp.Body.Close()
			if err != nil {
				return fmt.Errorf("forge response for %s: %w", path, err)
			}
			return nil
		case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			_ = drainAndClose(resp.Body)
			if !c.shouldRetry(attempts) {
				return fmt.Errorf("forge request for %s: status %d after %d attempts", path, resp.StatusCode, attempts+1)
			}
			c.backoffAndRetry(&attempts, path, fmt.Errorf("status %d", resp.StatusCode))
		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return fmt.Errorf("forge request for %s: unexpected status %d: %s", path, resp.StatusCode, string(body))
		}
	}
}

// getPaged fetches every page of a list endpoint until a short page signals
// the end, appending each page's raw JSON array into items.
func (c *Client) getPaged(ctx context.Context, path string, query url.Values, handle func(page json.RawMessage) (int, error)) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("limit", strconv.Itoa(c.opts.PageSize))
	for page := 1; ; page++ {
		query.Set("page", strconv.Itoa(page))
		var raw json.RawMessage
		if err := c.getJSON(ctx, path, query, &raw); err != nil {
			return err
		}
		n, err := handle(raw)
		if err != nil {
			return err
		}
		if n < c.opts.PageSize {
			return nil
		}
	}
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}

func (c *Client) backoffAndRetry(attempts *int, path string, cause error) {
	back := c.backoff(*attempts)
	logx.WithError(cause).WithField("path", path).WithField("retry_in", back.String()).Warn("forge request retrying")
	c.sleep(back)
	*attempts++
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase << uint(attempt)
	if max := 30 * time.Second; d > max {
		d = max
	}
	return d
}

func drainAndClose(body io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	return body.Close()
}
