package overpass

import (
	"errors"
	"net/url"
	"time"

	"github.com/everydaystudy/golf-db-loader/internal/retry"
)

const (
	// DefaultURL is the public Overpass interpreter endpoint.
	DefaultURL = "https://overpass-api.de/api/interpreter"

	// DefaultTimeout bounds a single HTTP request. It matches the
	// server-side [timeout:90] in the query.
	DefaultTimeout = 90 * time.Second

	// DefaultRatePerSecond is the proactive request rate.
	DefaultRatePerSecond = 0.5

	// DefaultUserAgent identifies the loader to the Overpass operators.
	DefaultUserAgent = "golf-db-loader/1.0"
)

// ErrInvalidURL indicates the configured endpoint is not an absolute URL.
var ErrInvalidURL = errors.New("overpass: invalid endpoint URL")

// Config holds connector settings.
type Config struct {
	// URL is the interpreter endpoint.
	URL string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// RatePerSecond throttles requests. Zero or negative disables throttling.
	RatePerSecond float64

	// UserAgent is sent with every request.
	UserAgent string

	// Retry is the policy applied to each partition fetch. Its Retryable
	// predicate is replaced with the connector's classifier.
	Retry retry.Policy
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		URL:           DefaultURL,
		Timeout:       DefaultTimeout,
		RatePerSecond: DefaultRatePerSecond,
		UserAgent:     DefaultUserAgent,
		Retry:         retry.DefaultPolicy(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidURL
	}
	return c.Retry.Validate()
}
