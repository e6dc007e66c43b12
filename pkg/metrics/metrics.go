package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "searchledger"

// Metrics bundles the Prometheus collectors shared by the cache, the
// source adapters and the report engine. All methods are nil-safe so
// instrumentation stays optional in tests and one-shot CLI runs.
type Metrics struct {
	CacheHits     *prometheus.CounterVec
	CacheMisses   *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	RowsFetched   *prometheus.CounterVec
	RowsSkipped   *prometheus.CounterVec
	Reports       *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_hits_total",
			Help:      "Cache hits by source namespace.",
		}, []string{"source"}),
		CacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_misses_total",
			Help:      "Cache misses by source namespace.",
		}, []string{"source"}),
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "source_fetch_duration_seconds",
			Help:      "Upstream fetch latency by source, cache misses only.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		RowsFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "source_rows_fetched_total",
			Help:      "Rows returned by upstream sources.",
		}, []string{"source"}),
		RowsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "source_rows_skipped_total",
			Help:      "Malformed rows dropped during validation.",
		}, []string{"source"}),
		Reports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "reports_total",
			Help:      "Report computations by report name.",
		}, []string{"report"}),
	}
}

func (m *Metrics) RecordCacheHit(source string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(source).Inc()
}

func (m *Metrics) RecordCacheMiss(source string) {
	if m == nil {
		return
	}
	m.CacheMisses.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveFetch(source string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

func (m *Metrics) AddRowsFetched(source string, n int) {
	if m == nil {
		return
	}
	m.RowsFetched.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) AddRowsSkipped(source string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RowsSkipped.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) RecordReport(report string) {
	if m == nil {
		return
	}
	m.Reports.WithLabelValues(report).Inc()
}
