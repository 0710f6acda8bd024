package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Run metrics
	RunsCreated    prometheus.Counter
	RunsPosted     prometheus.Counter
	RunsReversed   prometheus.Counter
	RunsCancelled  prometheus.Counter
	RunDuration    prometheus.Histogram
	RunTotalAmount prometheus.Histogram
	RunErrors      *prometheus.CounterVec

	// Entry metrics
	EntriesCalculated prometheus.Counter
	EntriesSkipped    *prometheus.CounterVec
	EntryAmount       prometheus.Histogram

	// Asset metrics
	AssetsFullyDepreciated prometheus.Counter
	UnitsRecorded          prometheus.Counter
	PreviewRequests        *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxFailures  prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Run metrics
		RunsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goassets_runs_created_total",
			Help: "Total number of depreciation runs created",
		}),
		RunsPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goassets_runs_posted_total",
			Help: "Total number of depreciation runs posted",
		}),
		RunsReversed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goassets_runs_reversed_total",
			Help: "Total number of depreciation runs reversed",
		}),
		RunsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goassets_runs_cancelled_total",
			Help: "Total number of depreciation runs cancelled",
		}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "goassets_run_duration_seconds",
			Help:    "Duration of run lifecycle operations",
			Buckets: prometheus.DefBuckets,
		}),
		RunTotalAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "goassets_run_total_amount",
			Help:    "Total depreciation amount per run",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
		}),
		RunErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goassets_run_errors_total",
				Help: "Total number of run errors by type",
			},
			[]string{"error_type"},
		),

		// Entry metrics
		EntriesCalculated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goassets_entries_calculated_total",
			Help: "Total number of depreciation entries calculated",
		}),
		EntriesSkipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goassets_entries_skipped_total",
				Help: "Total number of skipped entries by reason",
			},
			[]string{"reason"},
		),
		EntryAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "goassets_entry_amount",
			Help:    "Per-entry depreciation amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
		}),

		// Asset metrics
		AssetsFullyDepreciated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goassets_assets_fully_depreciated_total",
			Help: "Total number of assets flipped to fully depreciated",
		}),
		UnitsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goassets_units_recorded_total",
			Help: "Total number of production unit recordings",
		}),
		PreviewRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goassets_preview_requests_total",
				Help: "Total preview requests by cache outcome",
			},
			[]string{"outcome"},
		),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goassets_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goassets_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Outbox metrics
		OutboxPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goassets_outbox_published_total",
			Help: "Total outbox events published",
		}),
		OutboxFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goassets_outbox_failures_total",
			Help: "Total outbox publish failures",
		}),
	}
}
