package overpass

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
	"github.com/everydaystudy/golf-db-loader/internal/core/ports/driven"
	"github.com/everydaystudy/golf-db-loader/internal/logger"
	"github.com/everydaystudy/golf-db-loader/internal/retry"
)

// Ensure Connector implements the interface.
var _ driven.SourceConnector = (*Connector)(nil)

// ConnectorName identifies this connector in logs.
const ConnectorName = "overpass"

// Connector fetches golf courses per partition from Overpass.
type Connector struct {
	cfg    Config
	client *Client
	policy retry.Policy
}

// New creates a connector. A nil httpClient uses a client with cfg.Timeout.
func New(cfg Config, httpClient *http.Client) (*Connector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy := cfg.Retry
	policy.Retryable = IsTransient
	return &Connector{
		cfg:    cfg,
		client: NewClient(cfg, httpClient),
		policy: policy,
	}, nil
}

// Name returns the connector identifier.
func (c *Connector) Name() string {
	return ConnectorName
}

// Fetch returns every golf course element in the partition.
// Transient failures are retried per the policy; the final error is a
// *domain.SourceError.
func (c *Connector) Fetch(ctx context.Context, partition domain.Partition) ([]domain.RawElement, error) {
	query := Query(partition, c.cfg.Timeout)

	var elements []domain.RawElement
	attempts, err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		var err error
		elements, err = c.client.Interpret(ctx, query)
		return err
	}, func(attempt int, err error, next time.Duration) {
		logger.Warn("Fetch %s attempt %d failed, retrying in %s: %v", partition.Code, attempt, next, err)
	})
	if err != nil {
		return nil, &domain.SourceError{
			Partition: partition.Code,
			Attempts:  attempts,
			Permanent: !errors.Is(err, context.Canceled),
			Err:       fmt.Errorf("%s: %w", ConnectorName, err),
		}
	}

	logger.Debug("Fetched %d elements for %s in %d attempt(s)", len(elements), partition.Code, attempts)
	return elements, nil
}
