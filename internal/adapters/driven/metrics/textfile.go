// Package metrics exports run summaries as Prometheus metrics.
//
// The loader is a batch job, so metrics are written to a node_exporter
// textfile-collector file at the end of each run instead of being served.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
	"github.com/everydaystudy/golf-db-loader/internal/core/ports/driven"
)

// Ensure TextfileExporter implements the interface.
var _ driven.MetricsExporter = (*TextfileExporter)(nil)

const namespace = "golf_loader"

// runMetrics holds the gauges describing one run.
type runMetrics struct {
	records         *prometheus.GaugeVec
	partitionStatus *prometheus.GaugeVec
	runStatus       *prometheus.GaugeVec
	runInfo         *prometheus.GaugeVec
	marked          prometheus.Gauge
	purged          prometheus.Gauge
	finished        prometheus.Gauge
}

func newRunMetrics(reg prometheus.Registerer) *runMetrics {
	m := &runMetrics{
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "partition",
			Name:      "records",
			Help:      "Records handled in the last run by partition and pipeline stage",
		}, []string{"partition", "stage"}),

		partitionStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "partition",
			Name:      "status",
			Help:      "Outcome of each partition in the last run (1 for the current status)",
		}, []string{"partition", "status"}),

		runStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "status",
			Help:      "Outcome of the last run (1 for the current status)",
		}, []string{"status"}),

		runInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "info",
			Help:      "Identifier of the last run",
		}, []string{"run_id", "preview"}),

		marked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "marked_stale",
			Help:      "Courses marked stale in the last run",
		}),

		purged: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "purged",
			Help:      "Stale courses purged in the last run",
		}),

		finished: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "finished_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}

	reg.MustRegister(m.records, m.partitionStatus, m.runStatus, m.runInfo, m.marked, m.purged, m.finished)
	return m
}

func (m *runMetrics) observe(s *domain.RunSummary, finished time.Time) {
	for _, p := range s.Partitions {
		for stage, v := range map[string]int{
			"fetched":   p.Fetched,
			"accepted":  p.Accepted,
			"rejected":  p.Rejected,
			"collapsed": p.Collapsed,
			"written":   p.Written,
			"touched":   p.Touched,
			"unchanged": p.Unchanged,
		} {
			m.records.WithLabelValues(p.Code, stage).Set(float64(v))
		}
		m.partitionStatus.WithLabelValues(p.Code, string(p.Status)).Set(1)
	}

	m.runStatus.WithLabelValues(string(s.Status)).Set(1)
	m.runInfo.WithLabelValues(s.RunID, fmt.Sprint(s.Preview)).Set(1)
	m.marked.Set(float64(s.Marked))
	m.purged.Set(float64(s.Purged))
	m.finished.Set(float64(finished.Unix()))
}

// TextfileExporter writes run metrics to a textfile-collector file.
type TextfileExporter struct {
	path string
	now  func() time.Time
}

// Option configures a TextfileExporter.
type Option func(*TextfileExporter)

// WithClock sets the clock used for the finished timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *TextfileExporter) {
		e.now = now
	}
}

// NewTextfileExporter creates an exporter writing to path.
func NewTextfileExporter(path string, opts ...Option) *TextfileExporter {
	e := &TextfileExporter{path: path, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export replaces the file with the metrics of summary. The file is written
// atomically.
func (e *TextfileExporter) Export(ctx context.Context, summary *domain.RunSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if summary == nil {
		return fmt.Errorf("export metrics: %w: nil summary", domain.ErrInvalidInput)
	}

	reg := prometheus.NewRegistry()
	newRunMetrics(reg).observe(summary, e.now())

	if err := prometheus.WriteToTextfile(e.path, reg); err != nil {
		return fmt.Errorf("export metrics: %w", err)
	}
	return nil
}
