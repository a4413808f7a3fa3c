package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "normals_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	ReportsProduced  prometheus.Counter
	ParseErrors      *prometheus.CounterVec // labels: reason={frequency_without_category,data_without_variable,unknown_month,non_numeric,missing_station_id,fetch,empty,other}
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram
	SeriesPerReport         prometheus.Histogram

	// Station file retrieval metrics.
	FetchRequests    *prometheus.CounterVec // labels: outcome={success,error,not_found}
	FetchCache       *prometheus.CounterVec // labels: result={hit,miss}
	FetchAPIDuration prometheus.Histogram
	FetchEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates pipeline metrics and registers them with reg.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	m := newMetrics()

	reg.MustRegister(
		m.MessagesConsumed,
		m.ReportsProduced,
		m.ParseErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.SeriesPerReport,
		m.FetchRequests,
		m.FetchCache,
		m.FetchAPIDuration,
		m.FetchEnabled,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total station report messages read from the source topic.",
		}),
		ReportsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_produced_total",
			Help:      "Total parsed station reports written to the sinks.",
		}),
		ParseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "Station reports skipped because they could not be parsed, by reason.",
		}, []string{"reason"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		SeriesPerReport: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "series_per_report",
			Help:      "Number of variable series parsed from one station report.",
			Buckets:   []float64{0, 5, 10, 25, 50, 100, 200, 400},
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Station report downloads by outcome.",
		}, []string{"outcome"}),
		FetchCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_cache_total",
			Help:      "Station report cache lookups by result.",
		}, []string{"result"}),
		FetchAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "NCEI station report download duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		FetchEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fetch_enabled",
			Help:      "1 when on-demand station report fetching is enabled, 0 otherwise.",
		}),
	}
}
