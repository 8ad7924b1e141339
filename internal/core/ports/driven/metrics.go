package driven

import (
	"context"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
)

// MetricsExporter publishes run counters to a monitoring system.
type MetricsExporter interface {
	Export(ctx context.Context, summary *domain.RunSummary) error
}
