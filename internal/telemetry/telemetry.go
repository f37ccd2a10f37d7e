package telemetry

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	"github.com/dwarvesf/crypto-bookkeeper/internal/monitoring"
	"github.com/dwarvesf/crypto-bookkeeper/internal/oracle"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/config"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
)

// JobPriceCacheWarm is the job name reported to the status manager.
const JobPriceCacheWarm = "price_cache_warm"

type Telemetry struct {
	appConfig  *config.AppConfig
	logger     *logger.Logger
	oracle     oracle.IPriceOracle
	jobMetrics *monitoring.BackgroundJobMetrics
}

func New(appConfig *config.AppConfig, logger *logger.Logger, oracle oracle.IPriceOracle, jobMetrics *monitoring.BackgroundJobMetrics) ITelemetry {
	return &Telemetry{
		appConfig:  appConfig,
		logger:     logger,
		oracle:     oracle,
		jobMetrics: jobMetrics,
	}
}

func (t *Telemetry) WarmPriceCache(ctx context.Context) error {
	symbols := t.appConfig.Oracle.WarmSymbols
	if len(symbols) == 0 {
		t.logger.Info("[WarmPriceCache] no symbols configured")
		return nil
	}

	n, err := t.oracle.Warm(ctx, symbols)
	if t.jobMetrics != nil {
		t.jobMetrics.SetCachedPrices(n)
	}
	if err != nil {
		t.logger.Error("[WarmPriceCache][Warm]", map[string]string{
			"error":  err.Error(),
			"cached": strconv.Itoa(n),
		})
		return errors.Wrap(err, "oracle warm")
	}

	t.logger.Info("[WarmPriceCache] done", map[string]string{
		"requested": strconv.Itoa(len(symbols)),
		"cached":    strconv.Itoa(n),
	})
	return nil
}
