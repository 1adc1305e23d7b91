package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// clientConfig configures the download client. Zero values are given
// sensible defaults: 60s timeout, 3 retries, 200ms initial backoff
// capped at 5s.
type clientConfig struct {
	timeout        time.Duration
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	transport      http.RoundTripper
}

// client wraps an http.Client with retry and exponential backoff on
// transient failures (network errors, 5xx, 429).
type client struct {
	httpClient     *http.Client
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

func newClient(cfg clientConfig) *client {
	if cfg.timeout <= 0 {
		cfg.timeout = 60 * time.Second
	}
	if cfg.maxRetries < 0 {
		cfg.maxRetries = 0
	}
	if cfg.initialBackoff <= 0 {
		cfg.initialBackoff = 200 * time.Millisecond
	}
	if cfg.maxBackoff <= 0 {
		cfg.maxBackoff = 5 * time.Second
	}
	return &client{
		httpClient: &http.Client{
			Timeout:   cfg.timeout,
			Transport: cfg.transport,
		},
		maxRetries:     cfg.maxRetries,
		initialBackoff: cfg.initialBackoff,
		maxBackoff:     cfg.maxBackoff,
	}
}

// get issues an HTTP GET, retrying transient failures with backoff. The
// returned response has a non-nil Body the caller must close. On error,
// either no response was obtained or the last attempt hit a
// non-retryable status.
func (c *client) get(ctx context.Context, url string) (*http.Response, error) {
	attempts := c.maxRetries + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("fetch: build request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else if resp.StatusCode == http.StatusOK {
			return resp, nil
		} else {
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("fetch: status %s from GET %s", resp.Status, url)
			if !retryableStatus(resp.StatusCode) {
				return nil, lastErr
			}
		}

		if attempt+1 >= attempts {
			return nil, lastErr
		}
		if err := sleepWithContext(ctx, backoffDuration(c.initialBackoff, attempt, c.maxBackoff)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// retryableStatus is intentionally conservative: 5xx and 429 are
// transient; everything else is final.
func retryableStatus(code int) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

// backoffDuration returns initial * 2^attempt, clamped to max.
func backoffDuration(initial time.Duration, attempt int, max time.Duration) time.Duration {
	d := initial
	if attempt > 0 {
		d = initial << attempt
	}
	if d > max {
		return max
	}
	return d
}

// sleepWithContext waits for d, aborting early when ctx is canceled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
