package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dwarvesf/crypto-bookkeeper/internal/monitoring"
	"github.com/dwarvesf/crypto-bookkeeper/internal/oracle"
)

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct {
	registry *prometheus.Registry
	oracle   oracle.IPriceOracle
	jobs     *monitoring.BackgroundJobMetrics
}

// NewMetricsHandler creates a new metrics handler. When oracle and jobs are
// set the cached price gauge is refreshed on every scrape.
func NewMetricsHandler(registry *prometheus.Registry, oracle oracle.IPriceOracle, jobs *monitoring.BackgroundJobMetrics) *MetricsHandler {
	return &MetricsHandler{
		registry: registry,
		oracle:   oracle,
		jobs:     jobs,
	}
}

// Handler returns a Gin handler function for the /metrics endpoint
func (h *MetricsHandler) Handler() gin.HandlerFunc {
	handler := promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})

	return func(c *gin.Context) {
		h.refresh()
		handler.ServeHTTP(c.Writer, c.Request)
	}
}

func (h *MetricsHandler) refresh() {
	if h.oracle == nil || h.jobs == nil {
		return
	}
	if stats := h.oracle.CacheStatistics(); stats != nil {
		h.jobs.SetCachedPrices(stats.Entries)
	}
}
