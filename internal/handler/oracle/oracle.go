package oracle

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dwarvesf/crypto-bookkeeper/internal/monitoring"
	"github.com/dwarvesf/crypto-bookkeeper/internal/oracle"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
	"github.com/dwarvesf/crypto-bookkeeper/internal/view"
)

type handler struct {
	oracle          oracle.IPriceOracle
	logger          *logger.Logger
	metricsRecorder *monitoring.BusinessMetricsRecorder
}

func New(oracle oracle.IPriceOracle, logger *logger.Logger, metricsRecorder *monitoring.BusinessMetricsRecorder) IHandler {
	return &handler{
		oracle:          oracle,
		logger:          logger,
		metricsRecorder: metricsRecorder,
	}
}

// GetPrice godoc
// @Summary Get USD price
// @Description Spot USD price of a symbol from the on-chain feed, or the fallback table
// @id getPrice
// @Tags Oracle
// @Produce json
// @Param symbol path string true "asset symbol, e.g. ETH or C2FLR"
// @Success 200 {object} model.PriceData
// @Failure 404 {object} view.ErrorResponse
// @Router /oracle/price/{symbol} [get]
func (h *handler) GetPrice(c *gin.Context) {
	start := time.Now()
	symbol := c.Param("symbol")

	price, err := h.oracle.GetPrice(c.Request.Context(), symbol)
	duration := time.Since(start).Seconds()

	if err != nil {
		h.logger.Error("[oracle][GetPrice]", map[string]string{
			"symbol": symbol,
			"error":  err.Error(),
		})
		h.metricsRecorder.RecordOracleOperation("price", "error", duration)
		c.JSON(view.StatusCode(err), view.CreateResponse[any](nil, err, nil, "can't get price"))
		return
	}

	h.metricsRecorder.RecordOracleOperation("price", "success", duration)
	c.JSON(http.StatusOK, view.CreateResponse[any](price, nil, nil, ""))
}

// GetSupportedSymbols godoc
// @Summary Supported symbols
// @id getSupportedSymbols
// @Tags Oracle
// @Produce json
// @Success 200 {array} string
// @Router /oracle/symbols [get]
func (h *handler) GetSupportedSymbols(c *gin.Context) {
	c.JSON(http.StatusOK, view.CreateResponse[any](h.oracle.GetSupportedSymbols(c.Request.Context()), nil, nil, ""))
}

type supportResponse struct {
	Symbol    string `json:"symbol"`
	Supported bool   `json:"supported"`
}

// IsSupported godoc
// @Summary Check symbol support
// @Description Whether the oracle can price a symbol, from cache, fallback table or the feed contract
// @id isSymbolSupported
// @Tags Oracle
// @Produce json
// @Param symbol path string true "asset symbol"
// @Success 200 {object} supportResponse
// @Router /oracle/supported/{symbol} [get]
func (h *handler) IsSupported(c *gin.Context) {
	symbol := oracle.NormaliseSymbol(c.Param("symbol"))
	res := supportResponse{
		Symbol:    symbol,
		Supported: h.oracle.IsSupported(c.Request.Context(), symbol),
	}
	c.JSON(http.StatusOK, view.CreateResponse[any](res, nil, nil, ""))
}

// GetCacheStatistics godoc
// @Summary Price cache statistics
// @id getPriceCacheStatistics
// @Tags Oracle
// @Produce json
// @Success 200 {object} oracle.CacheStatistics
// @Router /oracle/cache [get]
func (h *handler) GetCacheStatistics(c *gin.Context) {
	c.JSON(http.StatusOK, view.CreateResponse[any](h.oracle.CacheStatistics(), nil, nil, ""))
}

// ClearCache godoc
// @Summary Clear the price cache
// @id clearPriceCache
// @Tags Oracle
// @Produce json
// @Success 200 {object} view.MessageResponse
// @Router /oracle/cache [delete]
func (h *handler) ClearCache(c *gin.Context) {
	h.oracle.ClearCache()
	h.logger.Info("[oracle][ClearCache] price cache cleared")
	c.JSON(http.StatusOK, view.CreateResponse[any](nil, nil, nil, "cache cleared"))
}

