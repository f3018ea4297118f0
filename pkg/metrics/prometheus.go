// Package metrics provides Prometheus metrics for the note scoring engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the scoring engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Scoring pass metrics
	scoringRuns        *prometheus.CounterVec
	scoringRunDuration prometheus.Histogram
	scoringErrors      prometheus.Counter
	notesScored        prometheus.Counter

	// Pre-flight and batch metrics
	validationFailures prometheus.Counter
	mfFitDuration      prometheus.Histogram
	mfTimeouts         prometheus.Counter
	batchTransitions   prometheus.Counter

	// Boundary metrics
	providerQueryDuration prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "notescore",
		subsystem:        "scoring",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.scoringRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Total number of community scoring passes, labeled by resolved tier",
	}, []string{"tier"})

	m.scoringRunDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_milliseconds",
		Help:      "Histogram of end-to-end scoring pass duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.scoringErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_total",
		Help:      "Total number of scoring passes aborted by an error",
	})

	m.notesScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notes_scored_total",
		Help:      "Total number of per-note results produced",
	})

	m.validationFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validation_failures_total",
		Help:      "Total number of snapshots rejected by pre-flight validation",
	})

	m.mfFitDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "mf_fit_duration_milliseconds",
		Help:      "Histogram of matrix factorization fit duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.mfTimeouts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "mf_timeouts_total",
		Help:      "Total number of matrix factorization fits aborted by deadline",
	})

	m.batchTransitions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_transitions_total",
		Help:      "Total number of communities that first crossed the batch threshold",
	})

	m.providerQueryDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "provider_query_duration_milliseconds",
		Help:      "Histogram of data provider query duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Handler returns an http.Handler serving the custom registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}

// RecordScoringRun counts one completed scoring pass for a tier.
func RecordScoringRun(tierName string) {
	if globalManager.enabled {
		globalManager.scoringRuns.WithLabelValues(tierName).Inc()
	}
}

// ObserveScoringRunDuration records the end-to-end pass duration.
func ObserveScoringRunDuration(ms float64) {
	if globalManager.enabled {
		globalManager.scoringRunDuration.Observe(ms)
	}
}

// RecordScoringError counts one aborted scoring pass.
func RecordScoringError() {
	if globalManager.enabled {
		globalManager.scoringErrors.Inc()
	}
}

// AddNotesScored counts produced per-note results.
func AddNotesScored(n int) {
	if globalManager.enabled && n > 0 {
		globalManager.notesScored.Add(float64(n))
	}
}

// RecordValidationFailure counts one rejected snapshot.
func RecordValidationFailure() {
	if globalManager.enabled {
		globalManager.validationFailures.Inc()
	}
}

// ObserveMFFitDuration records one matrix factorization fit duration.
func ObserveMFFitDuration(ms float64) {
	if globalManager.enabled {
		globalManager.mfFitDuration.Observe(ms)
	}
}

// RecordMFTimeout counts one deadline-aborted fit.
func RecordMFTimeout() {
	if globalManager.enabled {
		globalManager.mfTimeouts.Inc()
	}
}

// RecordBatchTransition counts one threshold crossing.
func RecordBatchTransition() {
	if globalManager.enabled {
		globalManager.batchTransitions.Inc()
	}
}

// ObserveProviderQueryDuration records one provider query duration.
func ObserveProviderQueryDuration(ms float64) {
	if globalManager.enabled {
		globalManager.providerQueryDuration.Observe(ms)
	}
}
