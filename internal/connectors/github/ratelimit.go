package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// UnauthenticatedRateLimit is the anonymous REST limit (60/hour).
	UnauthenticatedRateLimit = 60

	// ProactiveRate is the proactive throttle rate (~1.2 req/sec = 4320/hr).
	ProactiveRate = 1.2

	// ProactiveBurst lets the concurrent pull request calls start together.
	ProactiveBurst = 3

	// MinBuffer is the minimum remaining requests before waiting for reset.
	MinBuffer = 100

	// HeaderRateLimit is the rate limit header.
	HeaderRateLimit = "X-RateLimit-Limit"

	// HeaderRateRemaining is the remaining requests header.
	HeaderRateRemaining = "X-RateLimit-Remaining"

	// HeaderRateReset is the reset timestamp header (Unix seconds).
	HeaderRateReset = "X-RateLimit-Reset"

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"
)

// RateLimiter implements dual-strategy rate limiting for GitHub API.
type RateLimiter struct {
	mu        sync.Mutex
	remaining int           // From API header
	limit     int           // From API header
	resetTime time.Time     // From API header
	bucket    *rate.Limiter // Proactive throttling
	minBuffer int           // Reserve requests
}

// NewRateLimiter creates a rate limiter throttling at r requests per
// second. Zero selects ProactiveRate.
func NewRateLimiter(r rate.Limit) *RateLimiter {
	if r == 0 {
		r = rate.Limit(ProactiveRate)
	}
	return &RateLimiter{
		remaining: UnauthenticatedRateLimit,
		limit:     UnauthenticatedRateLimit,
		bucket:    rate.NewLimiter(r, ProactiveBurst),
		minBuffer: MinBuffer,
	}
}

// Wait blocks until it's safe to make a request.
// It uses both proactive throttling and reactive API limit checking.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	remaining := r.remaining
	resetTime := r.resetTime
	reserve := r.reserve()
	r.mu.Unlock()

	if remaining < reserve && time.Now().Before(resetTime) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(resetTime)):
		}
	}
	return nil
}

// reserve scales the buffer down for small quotas so an anonymous client
// only waits once it is exhausted. Callers hold mu.
func (r *RateLimiter) reserve() int {
	if scaled := r.limit / 50; scaled < r.minBuffer {
		return max(scaled, 1)
	}
	return r.minBuffer
}

// UpdateFromResponse updates rate limit state from response headers.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if remaining := resp.Header.Get(HeaderRateRemaining); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			r.remaining = val
		}
	}
	if limit := resp.Header.Get(HeaderRateLimit); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			r.limit = val
		}
	}
	if reset := resp.Header.Get(HeaderRateReset); reset != "" {
		if val, err := strconv.ParseInt(reset, 10, 64); err == nil {
			r.resetTime = time.Unix(val, 0)
		}
	}
}

// CheckRateLimit checks if the response indicates rate limiting.
// Returns a RateLimitError if rate limited, nil otherwise.
func (r *RateLimiter) CheckRateLimit(resp *http.Response) error {
	if resp == nil {
		return nil
	}

	r.UpdateFromResponse(resp)

	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusForbidden {
		return nil
	}

	r.mu.Lock()
	rl := &RateLimitError{ResetAt: r.resetTime, Remaining: r.remaining, Limit: r.limit}
	r.mu.Unlock()

	if retryAfter := resp.Header.Get(HeaderRetryAfter); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil {
			rl.ResetAt = time.Now().Add(time.Duration(seconds) * time.Second)
		}
	}
	return rl
}

// Remaining returns the current remaining requests.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// Limit returns the rate limit.
func (r *RateLimiter) Limit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limit
}

// ResetTime returns the rate limit reset time.
func (r *RateLimiter) ResetTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetTime
}
