package metrics

import "github.com/prometheus/client_golang/prometheus"

// Comparison run Prometheus metrics.
var (
	DocumentsLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dupscan",
			Name:      "documents_loaded",
			Help:      "Documents in the corpus of the last run",
		},
	)

	DocumentsExcluded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dupscan",
			Name:      "documents_excluded",
			Help:      "Documents of the last run without valid comparison text",
		},
	)

	PairsComparedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dupscan",
			Name:      "pairs_compared_total",
			Help:      "Total number of scored document pairs",
		},
	)

	MatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dupscan",
			Name:      "matches_total",
			Help:      "Total number of pairs at or above the threshold",
		},
	)

	TaskPanicsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dupscan",
			Name:      "task_panics_total",
			Help:      "Comparison tasks dropped after a recovered panic",
		},
	)

	TaskDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "dupscan",
			Name:      "task_duration_seconds",
			Help:      "Duration of one pivot comparison task in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		},
	)

	RunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dupscan",
			Name:      "run_duration_seconds",
			Help:      "Duration of a full detection run in seconds",
			Buckets:   []float64{1, 5, 15, 60, 300, 900, 3600, 14400},
		},
		[]string{"status"}, // "ok" / "store_error" / "writer_error" / "cancelled"
	)
)

// Collectors returns the comparison collectors, for registries other than the default one.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		DocumentsLoaded,
		DocumentsExcluded,
		PairsComparedTotal,
		MatchesTotal,
		TaskPanicsTotal,
		TaskDuration,
		RunDuration,
	}
}

var compMetricsRegistered bool

// RegisterComparisonMetrics registers comparison metrics. Must be called once from main.
func RegisterComparisonMetrics() {
	if compMetricsRegistered {
		return
	}
	prometheus.MustRegister(Collectors()...)
	compMetricsRegistered = true
}
