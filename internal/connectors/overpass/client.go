package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
)

// maxErrorBody bounds how much of an error response is kept for messages.
const maxErrorBody = 512

// response is the Overpass JSON envelope.
type response struct {
	Remark   string     `json:"remark"`
	Elements *[]element `json:"elements"`
}

type element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *center           `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Client posts Overpass QL queries.
type Client struct {
	http        *http.Client
	endpoint    string
	userAgent   string
	rateLimiter *RateLimiter
}

// NewClient creates a client for cfg. A nil httpClient gets a client with
// cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		http:        httpClient,
		endpoint:    cfg.URL,
		userAgent:   cfg.UserAgent,
		rateLimiter: NewRateLimiter(cfg.RatePerSecond),
	}
}

// Interpret runs a query and returns the decoded elements.
func (c *Client) Interpret(ctx context.Context, query string) ([]domain.RawElement, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if err := c.rateLimiter.CheckResponse(resp); err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			URL:        c.endpoint,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}
	return decode(body)
}

// decode parses an Overpass response body.
func decode(body []byte) ([]domain.RawElement, error) {
	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if isRuntimeRemark(r.Remark) {
		return nil, fmt.Errorf("%w: %s", ErrRuntime, r.Remark)
	}
	if r.Elements == nil {
		return nil, fmt.Errorf("%w: missing elements", ErrMalformedResponse)
	}

	out := make([]domain.RawElement, 0, len(*r.Elements))
	for _, el := range *r.Elements {
		raw := domain.RawElement{
			Type: el.Type,
			ID:   el.ID,
			Lat:  el.Lat,
			Lon:  el.Lon,
			Tags: el.Tags,
		}
		if el.Center != nil {
			raw.Center = &domain.Coordinate{Lat: el.Center.Lat, Lon: el.Center.Lon}
		}
		if raw.Tags == nil {
			raw.Tags = map[string]string{}
		}
		out = append(out, raw)
	}
	return out, nil
}

// isRuntimeRemark detects server-side aborts reported with HTTP 200.
func isRuntimeRemark(remark string) bool {
	return strings.Contains(remark, "runtime error") || strings.Contains(remark, "runtime remark")
}
