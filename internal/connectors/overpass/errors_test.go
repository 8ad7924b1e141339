package overpass

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
)

// TestIsTransient tests error classification
func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", &RateLimitError{RetryAfter: time.Second}, true},
		{"runtime remark", fmt.Errorf("%w: timed out", ErrRuntime), true},
		{"transport", fmt.Errorf("%w: reset", ErrTransport), true},
		{"deadline", context.DeadlineExceeded, true},
		{"server error", &APIError{StatusCode: http.StatusInternalServerError}, true},
		{"gateway timeout", &APIError{StatusCode: http.StatusGatewayTimeout}, true},
		{"request timeout", &APIError{StatusCode: http.StatusRequestTimeout}, true},
		{"bad request", &APIError{StatusCode: http.StatusBadRequest}, false},
		{"not found", &APIError{StatusCode: http.StatusNotFound}, false},
		{"malformed", fmt.Errorf("%w: eof", ErrMalformedResponse), false},
		{"canceled", context.Canceled, false},
		{"net op error", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"unknown", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

// TestRateLimitError tests the rate limit sentinel
func TestRateLimitError(t *testing.T) {
	err := fmt.Errorf("fetch: %w", &RateLimitError{RetryAfter: 5 * time.Second})

	assert.True(t, IsRateLimited(err))
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Contains(t, err.Error(), "retry after 5s")
	assert.False(t, IsRateLimited(errors.New("other")))
}

// TestAPIError_Message tests the error format
func TestAPIError_Message(t *testing.T) {
	err := &APIError{StatusCode: 400, Message: "parse error", URL: "https://example.test"}
	assert.Equal(t, "overpass: API error 400: parse error (URL: https://example.test)", err.Error())
}
