package driven

import (
	"context"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
)

// SourceConnector fetches raw elements for a partition.
// Implementations own their timeout and retry policy. Errors are returned
// as *domain.SourceError so callers can tell transient from permanent.
type SourceConnector interface {
	// Name returns the connector identifier used in logs.
	Name() string

	// Fetch returns every raw element of the partition.
	Fetch(ctx context.Context, partition domain.Partition) ([]domain.RawElement, error)
}
