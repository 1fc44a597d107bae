/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
	"golang.org/x/oauth2"
)

const (
	// defaultRateThreshold is the low-water mark for remaining quota. Once a
	// response reports fewer remaining requests, the client sleeps until the
	// advertised reset before issuing the next request.
	defaultRateThreshold = 10

	// defaultGrace is added on top of the advertised reset time so we do not
	// race the quota window rollover.
	defaultGrace = 5 * time.Second

	// maxQuotaWaits bounds how many times a single call may wait out an
	// exhausted quota. Quota waits do not consume the retry budget, but they
	// must not loop forever either.
	maxQuotaWaits = 3
)

// Sleeper blocks for the given duration or until the context is done.
// Injectable so tests can observe cooldowns without waiting them out.
type Sleeper func(ctx context.Context, d time.Duration) error

func defaultSleeper(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Client is a rate-limit-aware GitHub API client. It is an explicitly
// constructed value passed to every component that needs it; there is no
// ambient singleton.
type Client struct {
	gh        *github.Client
	retry     RetryConfig
	threshold int
	grace     time.Duration
	sleep     Sleeper

	mu       sync.Mutex
	rate     github.Rate
	haveRate bool
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at an alternate API endpoint (tests).
// The URL must end with a trailing slash.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		u, err := url.Parse(base)
		if err != nil {
			panic(fmt.Sprintf("invalid base URL %q: %v", base, err))
		}
		c.gh.BaseURL = u
	}
}

// WithRetryConfig overrides the transport retry policy.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithRateThreshold overrides the remaining-quota low-water mark.
func WithRateThreshold(n int) Option {
	return func(c *Client) { c.threshold = n }
}

// WithGrace overrides the margin added to quota reset waits.
func WithGrace(d time.Duration) Option {
	return func(c *Client) { c.grace = d }
}

// WithSleeper overrides how the client waits between attempts.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) { c.sleep = s }
}

// New constructs a Client authenticated with the given token.
func New(ctx context.Context, token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("token is required")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	gh := github.NewClient(oauth2.NewClient(ctx, ts))
	// Quota waits are handled here, against the advertised reset; go-github's
	// own pre-request check would short-circuit the retry with a stale error.
	gh.DisableRateLimitCheck = true
	c := &Client{
		gh:        gh,
		retry:     DefaultRetryConfig(),
		threshold: defaultRateThreshold,
		grace:     defaultGrace,
		sleep:     defaultSleeper,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.retry.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry config: %w", err)
	}
	return c, nil
}

// observeRate refreshes the process-local rate-limit state from a response.
func (c *Client) observeRate(resp *github.Response) {
	if resp == nil || resp.Rate == (github.Rate{}) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rate = resp.Rate
	c.haveRate = true
}

// clearRate forgets the last rate observation after a quota wait so the next
// response re-establishes it.
func (c *Client) clearRate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.haveRate = false
}

// waitForQuota sleeps until the quota reset when the last observed remaining
// count is below the low-water mark. No request is sent during the cooldown
// window.
func (c *Client) waitForQuota(ctx context.Context) error {
	c.mu.Lock()
	rate, ok := c.rate, c.haveRate
	c.mu.Unlock()
	if !ok || rate.Remaining >= c.threshold {
		return nil
	}

	wait := time.Until(rate.Reset.Time) + c.grace
	clog.FromContext(ctx).
		With("remaining", rate.Remaining).
		With("reset", rate.Reset.Time).
		With("wait", wait).
		Warn("Rate limit low, waiting for reset")
	if err := c.sleep(ctx, wait); err != nil {
		return err
	}

	c.clearRate()
	return nil
}

// execute runs one API call under the client's retry policy.
//
// Quota exhaustion (primary or secondary rate limits) waits for the
// advertised reset and retries the same attempt without consuming the retry
// budget. Server and transport errors back off exponentially up to
// MaxRetries. Other client errors are terminal.
func execute[T any](ctx context.Context, c *Client, op string, fn func() (T, *github.Response, error)) (T, error) {
	log := clog.FromContext(ctx).With("endpoint", op)

	var zero T
	var lastErr error
	quotaWaits := 0
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if err := c.waitForQuota(ctx); err != nil {
			return zero, err
		}

		v, resp, err := fn()
		c.observeRate(resp)
		if err == nil {
			log.Debug("API call succeeded")
			return v, nil
		}
		lastErr = err

		var rle *github.RateLimitError
		var arle *github.AbuseRateLimitError
		switch {
		case errors.As(err, &rle):
			quotaWaits++
			if quotaWaits > maxQuotaWaits {
				log.Warn("Rate limit still exhausted after repeated waits, giving up")
				return zero, newAPIError(lastErr)
			}
			wait := max(time.Until(rle.Rate.Reset.Time), 0) + c.grace
			log.With("wait", wait).Warn("Rate limit exhausted, waiting for reset")
			if err := c.sleep(ctx, wait); err != nil {
				return zero, err
			}
			c.clearRate()
			// Does not count against the retry budget.
			attempt--
			continue

		case errors.As(err, &arle):
			quotaWaits++
			if quotaWaits > maxQuotaWaits {
				log.Warn("Secondary rate limit persists after repeated waits, giving up")
				return zero, newAPIError(lastErr)
			}
			wait := c.grace
			if arle.RetryAfter != nil {
				wait += *arle.RetryAfter
			}
			log.With("wait", wait).Warn("Secondary rate limit hit, waiting")
			if err := c.sleep(ctx, wait); err != nil {
				return zero, err
			}
			c.clearRate()
			attempt--
			continue
		}

		if !isRetryable(err) {
			apiErr := newAPIError(err)
			if apiErr.StatusCode != http.StatusNotFound {
				log.With("error", err.Error()).Warn("API call failed")
			}
			return zero, apiErr
		}
		if attempt >= c.retry.MaxRetries {
			break
		}

		backoff := c.retry.backoff(attempt)
		log.With("attempt", attempt+1).
			With("max_retries", c.retry.MaxRetries).
			With("backoff", backoff).
			With("error", err.Error()).
			Warn("Transient API failure, retrying")
		if err := c.sleep(ctx, backoff); err != nil {
			return zero, err
		}
	}

	log.With("error", lastErr.Error()).Warn("API call failed after retries")
	return zero, fmt.Errorf("%s failed after %d retries: %w", op, c.retry.MaxRetries, newAPIError(lastErr))
}

// SplitRepo parses an "owner/name" repository reference.
func SplitRepo(full string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(full, "/")
	if !ok || owner == "" || repo == "" {
		return "", "", fmt.Errorf("invalid repository %q, want owner/name", full)
	}
	return owner, repo, nil
}
