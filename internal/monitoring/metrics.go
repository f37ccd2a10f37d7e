package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
)

// ExternalAPIMetrics covers calls made through a Breaker: the block
// explorer, the model API and the on-chain price feed.
type ExternalAPIMetrics struct {
	duration     *prometheus.HistogramVec
	calls        *prometheus.CounterVec
	breakerState *prometheus.GaugeVec
	timeouts     *prometheus.CounterVec
}

func NewExternalAPIMetrics() *ExternalAPIMetrics {
	return &ExternalAPIMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "external_api",
			Name:      "duration_seconds",
			Help:      "Duration of external API calls in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"api_name", "endpoint", "status"}),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "external_api",
			Name:      "calls_total",
			Help:      "Total number of external API calls",
		}, []string{"api_name", "status"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state per upstream (0=closed, 1=half-open, 2=open)",
		}, []string{"api_name"}),
		timeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "external_api",
			Name:      "timeouts_total",
			Help:      "External API calls that ran past their deadline",
		}, []string{"api_name", "endpoint"}),
	}
}

func (m *ExternalAPIMetrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(m.duration, m.calls, m.breakerState, m.timeouts)
}

func (m *ExternalAPIMetrics) RecordAPICall(apiName, endpoint, status string, seconds float64) {
	m.duration.WithLabelValues(apiName, endpoint, status).Observe(seconds)
	m.calls.WithLabelValues(apiName, status).Inc()
}

func (m *ExternalAPIMetrics) UpdateCircuitBreakerState(apiName string, state gobreaker.State) {
	m.breakerState.WithLabelValues(apiName).Set(float64(state))
}

func (m *ExternalAPIMetrics) RecordTimeout(apiName, endpoint string) {
	m.timeouts.WithLabelValues(apiName, endpoint).Inc()
}
