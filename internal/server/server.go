package server

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"

	"github.com/dwarvesf/crypto-bookkeeper/internal/accountregistry"
	"github.com/dwarvesf/crypto-bookkeeper/internal/categorizer"
	"github.com/dwarvesf/crypto-bookkeeper/internal/controller"
	"github.com/dwarvesf/crypto-bookkeeper/internal/explorer"
	"github.com/dwarvesf/crypto-bookkeeper/internal/handler"
	"github.com/dwarvesf/crypto-bookkeeper/internal/llm"
	"github.com/dwarvesf/crypto-bookkeeper/internal/monitoring"
	"github.com/dwarvesf/crypto-bookkeeper/internal/oracle"
	"github.com/dwarvesf/crypto-bookkeeper/internal/store"
	pgstore "github.com/dwarvesf/crypto-bookkeeper/internal/store/postgres"
	"github.com/dwarvesf/crypto-bookkeeper/internal/telemetry"
	"github.com/dwarvesf/crypto-bookkeeper/internal/transport/http"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/config"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/vault"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/webhook"
)

func Init() {
	appConfig := config.New()
	logger := logger.New(appConfig.Environment)
	ctx := context.Background()

	if err := vault.ApplySecrets(appConfig, logger); err != nil {
		logger.Error("[server][ApplySecrets]", map[string]string{
			"error": err.Error(),
		})
		return
	}

	db := pgstore.New(appConfig, logger)
	s := store.New()

	// metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := monitoring.NewHTTPMetrics()
	httpMetrics.MustRegister(registry)
	apiMetrics := monitoring.NewExternalAPIMetrics()
	apiMetrics.MustRegister(registry)
	jobMetrics := monitoring.NewBackgroundJobMetrics()
	jobMetrics.MustRegister(registry)
	businessMetrics := monitoring.NewBusinessMetricsRecorder()
	businessMetrics.MustRegister(registry)

	breaker := func(name string) *monitoring.Breaker {
		return monitoring.NewBreaker(name, monitoring.CircuitBreakerConfigs[name], apiMetrics, logger)
	}

	blockExplorer := explorer.New(appConfig.Explorer, breaker(monitoring.ServiceExplorer), logger)

	txCategorizer, err := categorizer.New()
	if err != nil {
		logger.Error("[server][categorizer.New]", map[string]string{
			"error": err.Error(),
		})
		return
	}

	var reader oracle.ContractReader
	if appConfig.Oracle.Enabled {
		reader, err = oracle.NewContractReader(ctx, appConfig.Oracle, breaker(monitoring.ServiceOracle))
		if err != nil {
			logger.Warn("[server][NewContractReader] using fallback prices", map[string]string{
				"error": err.Error(),
			})
			reader = nil
		}
	}
	priceOracle := oracle.New(appConfig.Oracle, reader, businessMetrics, logger)

	accounts := accountregistry.New(db, s, logger)

	model, err := llm.NewGeminiModel(ctx, appConfig.LLM, breaker(monitoring.ServiceLLM), logger)
	if err != nil {
		logger.Error("[server][NewGeminiModel]", map[string]string{
			"error": err.Error(),
		})
		return
	}
	var archive llm.ResponseArchive
	if appConfig.Archive.Bucket != "" {
		gcs, err := llm.NewGCSArchive(ctx, appConfig.Archive.Bucket)
		if err != nil {
			logger.Warn("[server][NewGCSArchive] archiving disabled", map[string]string{
				"bucket": appConfig.Archive.Bucket,
				"error":  err.Error(),
			})
		} else {
			archive = gcs
		}
	}

	ctrl := controller.New(controller.Deps{
		DB:          db,
		Store:       s,
		Explorer:    blockExplorer,
		Categorizer: txCategorizer,
		Oracle:      priceOracle,
		Registry:    accounts,
		LLM:         llm.NewAdapter(model, archive, businessMetrics, logger),
		Webhook:     webhook.New(logger),
		Metrics:     businessMetrics,
	}, appConfig, logger)

	// background jobs
	jobStatusManager := monitoring.NewJobStatusManager(logger, jobMetrics)
	defer jobStatusManager.Stop()

	tel := telemetry.New(appConfig, logger, priceOracle, jobMetrics)
	warmJob := monitoring.NewInstrumentedJob(telemetry.JobPriceCacheWarm, tel.WarmPriceCache, jobStatusManager, logger, 30*time.Second)

	c := cron.New()
	if _, err := c.AddJob(appConfig.Oracle.WarmSchedule, warmJob); err != nil {
		logger.Error("[server][AddJob]", map[string]string{
			"job":      telemetry.JobPriceCacheWarm,
			"schedule": appConfig.Oracle.WarmSchedule,
			"error":    err.Error(),
		})
		return
	}
	c.Start()
	defer c.Stop()
	go warmJob.Execute()

	h := handler.New(appConfig, logger, handler.Deps{
		DB:               db,
		Controller:       ctrl,
		Registry:         accounts,
		Explorer:         blockExplorer,
		Oracle:           priceOracle,
		MetricsRegistry:  registry,
		BusinessMetrics:  businessMetrics,
		JobMetrics:       jobMetrics,
		JobStatusManager: jobStatusManager,
	})

	httpServer := http.NewHttpServer(appConfig, logger, h, httpMetrics)

	logger.Info("[server] listening", map[string]string{
		"port": appConfig.ApiServer.Port,
	})
	if err := httpServer.Run(":" + appConfig.ApiServer.Port); err != nil {
		logger.Error("[server][Run]", map[string]string{
			"error": err.Error(),
		})
	}
}
