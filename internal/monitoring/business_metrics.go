package monitoring

import "github.com/prometheus/client_golang/prometheus"

var operationLabels = []string{"operation_type", "category", "status"}

// BusinessMetricsRecorder counts pipeline outcomes: analyses, model calls,
// oracle lookups, persistence and the entries they produce. A nil recorder
// is valid and records nothing, which keeps tests free of registries.
type BusinessMetricsRecorder struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	entries    *prometheus.CounterVec
	cache      *prometheus.CounterVec
}

func NewBusinessMetricsRecorder() *BusinessMetricsRecorder {
	return &BusinessMetricsRecorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "business",
			Name:      "operations_total",
			Help:      "Total number of business operations",
		}, operationLabels),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "business",
			Name:      "operation_duration_seconds",
			Help:      "Duration of business operations in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 300},
		}, operationLabels),
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "journal",
			Name:      "entries_total",
			Help:      "Journal entries by pipeline stage",
		}, []string{"stage"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Cache lookups by outcome",
		}, []string{"cache_type", "operation"}),
	}
}

func (r *BusinessMetricsRecorder) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(r.operations, r.duration, r.entries, r.cache)
}

func (r *BusinessMetricsRecorder) record(operationType, category, status string, seconds float64) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(operationType, category, status).Inc()
	if seconds > 0 {
		r.duration.WithLabelValues(operationType, category, status).Observe(seconds)
	}
}

// RecordAnalysis records a single-transaction analysis, labelled by source.
func (r *BusinessMetricsRecorder) RecordAnalysis(source, status string, seconds float64) {
	r.record("transaction_analysis", source, status, seconds)
}

func (r *BusinessMetricsRecorder) RecordWalletAnalysis(status string, seconds float64) {
	r.record("wallet_analysis", "bulk", status, seconds)
}

func (r *BusinessMetricsRecorder) RecordLLMCall(promptType, status string, seconds float64) {
	r.record("llm_call", promptType, status, seconds)
}

func (r *BusinessMetricsRecorder) RecordOracleOperation(operationType, status string, seconds float64) {
	r.record("oracle_operation", operationType, status, seconds)
}

func (r *BusinessMetricsRecorder) RecordDatabaseOperation(operationType, status string, seconds float64) {
	r.record("database_operation", operationType, status, seconds)
}

// RecordEntries counts entries at a stage, either "proposed" or "persisted".
func (r *BusinessMetricsRecorder) RecordEntries(stage string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.entries.WithLabelValues(stage).Add(float64(n))
}

func (r *BusinessMetricsRecorder) RecordCacheOperation(cacheType, operation string) {
	if r == nil {
		return
	}
	r.cache.WithLabelValues(cacheType, operation).Inc()
}
