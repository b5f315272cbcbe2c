// Package metrics exposes the Prometheus instruments for the ingestion
// pipeline: outcome counters, a run-duration histogram, and gauges for the
// last document count and the process-lifetime success rate. These are a
// side channel for monitoring, never part of correctness.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ingestionRuns counts completed ingestion invocations by outcome
	// (success, failure, skipped).
	ingestionRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestion_runs_total",
			Help: "Total number of ingestion invocations by outcome.",
		},
		[]string{"outcome"},
	)

	// ingestionDuration records the wall-clock duration of ingestion runs.
	ingestionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingestion_run_duration_seconds",
			Help:    "Duration of ingestion runs in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms .. ~3.4min
		},
	)

	// lastDocumentCount holds the document count of the most recent
	// successful run.
	lastDocumentCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingestion_last_document_count",
			Help: "Documents persisted by the most recent successful ingestion run.",
		},
	)

	// successRate holds successes / (successes+failures) across the process
	// lifetime. Skipped runs do not count toward either side.
	successRate = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingestion_success_rate",
			Help: "Running ingestion success rate over the process lifetime.",
		},
	)
)

func init() {
	prometheus.MustRegister(ingestionRuns, ingestionDuration, lastDocumentCount, successRate)
}

// Ingestion aggregates the ingestion instruments behind one recorder so the
// service layer depends on a small surface (and tests can substitute a fake
// via the services.IngestionMetrics interface).
type Ingestion struct {
	successes atomic.Int64
	failures  atomic.Int64
}

// NewIngestion returns a recorder backed by the package-level collectors.
func NewIngestion() *Ingestion {
	return &Ingestion{}
}

// RecordSuccess marks a successful run: outcome counter, duration, last
// document count, and the refreshed success rate.
func (m *Ingestion) RecordSuccess(documentCount int, elapsed time.Duration) {
	ingestionRuns.WithLabelValues("success").Inc()
	ingestionDuration.Observe(elapsed.Seconds())
	lastDocumentCount.Set(float64(documentCount))
	m.successes.Add(1)
	m.updateRate()
}

// RecordFailure marks a failed run and refreshes the success rate.
func (m *Ingestion) RecordFailure(elapsed time.Duration) {
	ingestionRuns.WithLabelValues("failure").Inc()
	ingestionDuration.Observe(elapsed.Seconds())
	m.failures.Add(1)
	m.updateRate()
}

// RecordSkipped marks an invocation short-circuited by the idempotency
// check. Skips affect neither the duration histogram nor the success rate.
func (m *Ingestion) RecordSkipped() {
	ingestionRuns.WithLabelValues("skipped").Inc()
}

func (m *Ingestion) updateRate() {
	s := m.successes.Load()
	f := m.failures.Load()
	if s+f == 0 {
		return
	}
	successRate.Set(float64(s) / float64(s+f))
}
