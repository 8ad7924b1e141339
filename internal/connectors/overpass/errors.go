package overpass

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
)

// Overpass-specific errors.
var (
	// ErrMalformedResponse indicates the body was not the expected JSON.
	ErrMalformedResponse = errors.New("overpass: malformed response")

	// ErrRuntime indicates the server aborted the query (timeout, memory).
	ErrRuntime = errors.New("overpass: runtime error")

	// ErrTransport indicates the request or response body failed in transit.
	ErrTransport = errors.New("overpass: transport error")
)

// APIError represents a non-200 response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("overpass: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// RateLimitError represents a 429 response with its retry hint.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("overpass: rate limit exceeded, retry after %s", e.RetryAfter)
}

// Unwrap allows errors.Is(err, domain.ErrRateLimited).
func (e *RateLimitError) Unwrap() error {
	return domain.ErrRateLimited
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// IsTransient reports whether a fetch error is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrMalformedResponse) {
		return false
	}
	if IsRateLimited(err) || errors.Is(err, ErrRuntime) || errors.Is(err, ErrTransport) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusRequestTimeout:
			return true
		}
		return apiErr.StatusCode >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}
