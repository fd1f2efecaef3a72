package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/ghview/internal/core/domain"
)

const (
	// HeaderRateLimit is the rate limit header.
	HeaderRateLimit = "X-RateLimit-Limit"

	// HeaderRateRemaining is the remaining requests header.
	HeaderRateRemaining = "X-RateLimit-Remaining"

	// HeaderRateReset is the reset timestamp header (Unix seconds).
	HeaderRateReset = "X-RateLimit-Reset"

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"
)

// RateLimiter throttles outgoing requests and records the quota GitHub
// reports in response headers. It never waits for a quota reset: an
// exhausted quota is surfaced to the caller as a rate limit failure.
type RateLimiter struct {
	mu        sync.Mutex
	known     bool
	remaining int
	limit     int
	resetTime time.Time
	bucket    *rate.Limiter
}

// NewRateLimiter creates a rate limiter allowing perSecond requests per second.
// Non-positive values select domain.DefaultRequestsPerSecond.
func NewRateLimiter(perSecond float64) *RateLimiter {
	if perSecond <= 0 {
		perSecond = domain.DefaultRequestsPerSecond
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		bucket: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Wait blocks until the token bucket admits one more request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.bucket.Wait(ctx)
}

// UpdateFromResponse updates quota state from response headers.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if remaining := resp.Header.Get(HeaderRateRemaining); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			r.remaining = val
			r.known = true
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

// Quota returns the last quota seen in a response. ok is false until a
// response carrying rate limit headers has been recorded.
func (r *RateLimiter) Quota() (domain.RateLimit, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.RateLimit{Limit: r.limit, Remaining: r.remaining, Reset: r.resetTime}, r.known
}

// ResetTime returns the last reported reset time.
func (r *RateLimiter) ResetTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetTime
}

// resetFromResponse returns when a rate limited response says the quota
// frees up: Retry-After wins over X-RateLimit-Reset. The zero time means
// the response did not say.
func resetFromResponse(resp *http.Response, now time.Time) time.Time {
	if resp == nil {
		return time.Time{}
	}
	if retryAfter := resp.Header.Get(HeaderRetryAfter); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil {
			return now.Add(time.Duration(seconds) * time.Second)
		}
	}
	if reset := resp.Header.Get(HeaderRateReset); reset != "" {
		if val, err := strconv.ParseInt(reset, 10, 64); err == nil {
			return time.Unix(val, 0)
		}
	}
	return time.Time{}
}
