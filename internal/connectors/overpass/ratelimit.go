package overpass

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// HeaderRetryAfter is the retry-after header (seconds or HTTP date).
	HeaderRetryAfter = "Retry-After"

	// DefaultRetryAfter is used when a 429 carries no usable hint.
	DefaultRetryAfter = 30 * time.Second
)

// RateLimiter combines a token bucket with backoff after 429 responses.
type RateLimiter struct {
	mu      sync.Mutex
	bucket  *rate.Limiter // nil when throttling is disabled
	retryAt time.Time
}

// NewRateLimiter creates a limiter allowing perSecond requests.
// Zero or negative disables proactive throttling.
func NewRateLimiter(perSecond float64) *RateLimiter {
	r := &RateLimiter{}
	if perSecond > 0 {
		r.bucket = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return r
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if r.bucket == nil {
		return nil
	}
	return r.bucket.Wait(ctx)
}

// CheckResponse records a 429 and returns a RateLimitError for it.
// Other responses return nil.
func (r *RateLimiter) CheckResponse(resp *http.Response) error {
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		return nil
	}

	after := parseRetryAfter(resp.Header.Get(HeaderRetryAfter), time.Now())
	r.mu.Lock()
	if until := time.Now().Add(after); until.After(r.retryAt) {
		r.retryAt = until
	}
	r.mu.Unlock()

	return &RateLimitError{RetryAfter: after}
}

// RetryAt returns the time before which no request will be sent.
func (r *RateLimiter) RetryAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retryAt
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return DefaultRetryAfter
	}
	if seconds, err := strconv.Atoi(v); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
		return 0
	}
	return DefaultRetryAfter
}
