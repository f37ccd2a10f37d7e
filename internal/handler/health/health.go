package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dwarvesf/crypto-bookkeeper/internal/explorer"
	"github.com/dwarvesf/crypto-bookkeeper/internal/monitoring"
	"github.com/dwarvesf/crypto-bookkeeper/internal/oracle"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/config"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
)

// balanceCheckAddress is queried for a balance to exercise the explorer.
const balanceCheckAddress = "0x0000000000000000000000000000000000000000"

// HealthHandler implements IHealthHandler interface
type HealthHandler struct {
	config           *config.AppConfig
	logger           *logger.Logger
	db               *gorm.DB
	explorer         explorer.IExplorer
	oracle           oracle.IPriceOracle
	jobStatusManager *monitoring.JobStatusManager
}

// New creates a new health handler instance
func New(config *config.AppConfig, logger *logger.Logger, db *gorm.DB, explorer explorer.IExplorer, oracle oracle.IPriceOracle, jobStatusManager *monitoring.JobStatusManager) IHealthHandler {
	return &HealthHandler{
		config:           config,
		logger:           logger,
		db:               db,
		explorer:         explorer,
		oracle:           oracle,
		jobStatusManager: jobStatusManager,
	}
}

// Basic handles the basic health check endpoint (/healthz)
// @Summary Basic health check
// @Description Returns basic system availability status
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} BasicHealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Basic(c *gin.Context) {
	c.JSON(http.StatusOK, BasicHealthResponse{Message: "ok"})
}

// Database handles the database health check endpoint
// @Summary Database health check
// @Description Validates database connectivity
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /api/v1/health/db [get]
func (h *HealthHandler) Database(c *gin.Context) {
	start := time.Now()

	response := HealthResponse{
		Timestamp: start,
		Checks:    make(map[string]HealthCheck),
	}

	dbCheck := h.checkDatabase(requestContext(c))
	response.Checks["database"] = dbCheck
	response.DurationMs = time.Since(start).Milliseconds()

	if dbCheck.Status == statusHealthy {
		response.Status = statusHealthy
		c.JSON(http.StatusOK, response)
		return
	}
	response.Status = statusUnhealthy
	c.JSON(http.StatusServiceUnavailable, response)
}

// External handles the external dependencies health check endpoint
// @Summary External dependencies health check
// @Description Validates block explorer and price oracle connectivity
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /api/v1/health/external [get]
func (h *HealthHandler) External(c *gin.Context) {
	start := time.Now()

	response := HealthResponse{
		Timestamp: start,
		Checks:    make(map[string]HealthCheck),
	}

	ctx, cancel := context.WithTimeout(requestContext(c), 10*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	var mu sync.Mutex
	run := func(name string, check func(context.Context) HealthCheck) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := check(ctx)
			mu.Lock()
			response.Checks[name] = res
			mu.Unlock()
		}()
	}
	run("block_explorer", h.checkExplorer)
	run("price_oracle", h.checkOracle)
	wg.Wait()

	response.DurationMs = time.Since(start).Milliseconds()

	for _, check := range response.Checks {
		if check.Status != statusHealthy {
			response.Status = statusUnhealthy
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
	}
	response.Status = statusHealthy
	c.JSON(http.StatusOK, response)
}

func requestContext(c *gin.Context) context.Context {
	if c.Request != nil {
		return c.Request.Context()
	}
	return context.Background()
}

func (h *HealthHandler) checkDatabase(ctx context.Context) HealthCheck {
	start := time.Now()

	check := HealthCheck{
		Metadata: make(map[string]interface{}),
	}

	if h.db == nil {
		return unhealthy(check, start, "database connection not available")
	}

	sqlDB, err := h.db.DB()
	if err != nil {
		return unhealthy(check, start, fmt.Sprintf("failed to get underlying database: %v", err))
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		if pingCtx.Err() == context.DeadlineExceeded {
			return unhealthy(check, start, "timeout")
		}
		return unhealthy(check, start, err.Error())
	}

	stats := sqlDB.Stats()

	check.Status = statusHealthy
	check.Latency = time.Since(start).Milliseconds()
	check.Metadata["driver"] = h.db.Dialector.Name()
	check.Metadata["connection_pool"] = map[string]interface{}{
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"max_open":         stats.MaxOpenConnections,
	}

	return check
}

func (h *HealthHandler) checkExplorer(ctx context.Context) HealthCheck {
	start := time.Now()
	check := HealthCheck{Metadata: make(map[string]interface{})}

	if h.explorer == nil {
		return unhealthy(check, start, "block explorer not available")
	}

	checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := h.explorer.GetBalance(checkCtx, balanceCheckAddress); err != nil {
		if checkCtx.Err() == context.DeadlineExceeded {
			return unhealthy(check, start, "timeout")
		}
		return unhealthy(check, start, err.Error())
	}

	check.Status = statusHealthy
	check.Latency = time.Since(start).Milliseconds()
	check.Metadata["network_currency"] = h.explorer.NetworkCurrency()
	return check
}

// checkOracle reports degraded prices as metadata; the fallback table keeps
// the oracle usable when the feed is down.
func (h *HealthHandler) checkOracle(ctx context.Context) HealthCheck {
	start := time.Now()
	check := HealthCheck{Metadata: make(map[string]interface{})}

	if h.oracle == nil {
		return unhealthy(check, start, "price oracle not available")
	}

	checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	price, err := h.oracle.GetPrice(checkCtx, "ETH")
	if err != nil {
		return unhealthy(check, start, err.Error())
	}

	check.Status = statusHealthy
	check.Latency = time.Since(start).Milliseconds()
	check.Metadata["source"] = price.Source
	if stats := h.oracle.CacheStatistics(); stats != nil {
		check.Metadata["cached_prices"] = stats.Entries
	}
	return check
}

func unhealthy(check HealthCheck, start time.Time, reason string) HealthCheck {
	check.Status = statusUnhealthy
	check.Error = reason
	check.Latency = time.Since(start).Milliseconds()
	return check
}
