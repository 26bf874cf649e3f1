package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// analysis service.
type Metrics struct {
	AnalysisRequests *prometheus.CounterVec // labels: outcome={success,invalid_request,no_data,unknown_location,error}
	AnalysisDuration prometheus.Histogram

	// Source file loading.
	RecordsLoaded prometheus.Counter
	YearsLoaded   prometheus.Counter
	YearsSkipped  prometheus.Counter
	LoadDuration  prometheus.Histogram

	// Record-set cache.
	CacheLookups *prometheus.CounterVec // labels: result={hit,miss}
	CacheEntries prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AnalysisRequests,
		m.AnalysisDuration,
		m.RecordsLoaded,
		m.YearsLoaded,
		m.YearsSkipped,
		m.LoadDuration,
		m.CacheLookups,
		m.CacheEntries,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AnalysisRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rainfall",
			Name:      "analysis_requests_total",
			Help:      "Analysis requests by outcome.",
		}, []string{"outcome"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rainfall",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a complete load-aggregate request.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		RecordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rainfall",
			Name:      "records_loaded_total",
			Help:      "Total hourly records parsed from source files.",
		}),
		YearsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rainfall",
			Name:      "years_loaded_total",
			Help:      "Per-year source files read successfully.",
		}),
		YearsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rainfall",
			Name:      "years_skipped_total",
			Help:      "Per-year source files skipped because they were missing or unreadable.",
		}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rainfall",
			Name:      "load_duration_seconds",
			Help:      "Duration of loading one year selection from disk.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rainfall",
			Name:      "cache_lookups_total",
			Help:      "Record-set cache lookups by result.",
		}, []string{"result"}),
		CacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rainfall",
			Name:      "cache_entries",
			Help:      "Current number of cached record sets.",
		}),
	}
}
