package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_seeder"

// Metrics holds the Prometheus counters, histograms, and gauges for the seeder.
type Metrics struct {
	StationsReconciled *prometheus.CounterVec // labels: action={inserted,updated,deleted}
	RecordsGenerated   *prometheus.CounterVec // labels: kind={observations,fires}
	RowsAppended       *prometheus.CounterVec // labels: table
	SeederRunning      prometheus.Gauge

	// Run metrics.
	RunDuration *prometheus.HistogramVec // labels: mode
	RunFailures *prometheus.CounterVec   // labels: mode
	BatchSize   prometheus.Histogram

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all seeder metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		StationsReconciled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stations_reconciled_total",
			Help:      "Stations written to the store by reconciliation action.",
		}, []string{"action"}),
		RecordsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_generated_total",
			Help:      "Synthesized observations and fire records.",
		}, []string{"kind"}),
		RowsAppended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_appended_total",
			Help:      "Rows handed to the record sink by table.",
		}, []string{"table"}),
		SeederRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "running",
			Help:      "1 while a seeding run is in progress, 0 otherwise.",
		}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete seeding run by mode.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"mode"}),
		RunFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_failures_total",
			Help:      "Seeding runs that returned an error, by mode.",
		}, []string{"mode"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of rows per sink append.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100, 250, 500},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when fire naming via geocoding is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.StationsReconciled,
		m.RecordsGenerated,
		m.RowsAppended,
		m.SeederRunning,
		m.RunDuration,
		m.RunFailures,
		m.BatchSize,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		StationsReconciled: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "stations_reconciled_total"}, []string{"action"}),
		RecordsGenerated:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "records_generated_total"}, []string{"kind"}),
		RowsAppended:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "rows_appended_total"}, []string{"table"}),
		SeederRunning:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "running"}),
		RunDuration:        prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "run_duration_seconds"}, []string{"mode"}),
		RunFailures:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "run_failures_total"}, []string{"mode"}),
		BatchSize:          prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "batch_size"}),
		GeocodeRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "geocode_requests_total"}, []string{"outcome"}),
		GeocodeCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "geocode_cache_total"}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "geocode_api_duration_seconds"}),
		GeocodeEnabled:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "geocode_enabled"}),
	}
}
