package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jpillora/backoff"
)

const (
	maxRetryDelay = 30 * time.Second
	maxBodyBytes  = 8 << 20
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hyperscope api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable reports whether the status is worth another attempt: 429 or 5xx.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// getJSON GETs path and decodes the body into out, retrying transient failures.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	target := c.cfg.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	body, err := c.fetch(ctx, target)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// fetch runs attemptGet until it succeeds, fails permanently or runs out of retries.
func (c *Client) fetch(ctx context.Context, target string) ([]byte, error) {
	delays := &backoff.Backoff{
		Min:    c.cfg.RetryBackoff,
		Max:    maxRetryDelay,
		Factor: 2,
		Jitter: true,
	}

	var err error
	for attempt := 0; ; attempt++ {
		var body []byte
		if body, err = c.attemptGet(ctx, target); err == nil {
			return body, nil
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.IsRetryable() {
			return nil, err
		}
		if attempt == c.cfg.MaxRetries {
			break
		}

		wait := delays.Duration()
		c.logger.Debug("retrying request", "url", target, "status", apiErr.StatusCode, "retry", attempt+1, "backoff", wait)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", err)
}

func (c *Client) attemptGet(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}
	return body, nil
}
