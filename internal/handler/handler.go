package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/dwarvesf/crypto-bookkeeper/internal/accountregistry"
	"github.com/dwarvesf/crypto-bookkeeper/internal/controller"
	"github.com/dwarvesf/crypto-bookkeeper/internal/explorer"
	"github.com/dwarvesf/crypto-bookkeeper/internal/handler/account"
	"github.com/dwarvesf/crypto-bookkeeper/internal/handler/chat"
	explorerHandler "github.com/dwarvesf/crypto-bookkeeper/internal/handler/explorer"
	"github.com/dwarvesf/crypto-bookkeeper/internal/handler/health"
	"github.com/dwarvesf/crypto-bookkeeper/internal/handler/journal"
	"github.com/dwarvesf/crypto-bookkeeper/internal/handler/metrics"
	"github.com/dwarvesf/crypto-bookkeeper/internal/handler/oracle"
	"github.com/dwarvesf/crypto-bookkeeper/internal/monitoring"
	oracleService "github.com/dwarvesf/crypto-bookkeeper/internal/oracle"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/config"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
)

type Handler struct {
	JournalHandler  journal.IHandler
	ChatHandler     chat.IHandler
	AccountHandler  account.IHandler
	OracleHandler   oracle.IHandler
	ExplorerHandler explorerHandler.IHandler
	HealthHandler   health.IHealthHandler
	MetricsHandler  *metrics.MetricsHandler
}

// Deps groups what the handlers are built from.
type Deps struct {
	DB               *gorm.DB
	Controller       controller.IController
	Registry         accountregistry.IRegistry
	Explorer         explorer.IExplorer
	Oracle           oracleService.IPriceOracle
	MetricsRegistry  *prometheus.Registry
	BusinessMetrics  *monitoring.BusinessMetricsRecorder
	JobMetrics       *monitoring.BackgroundJobMetrics
	JobStatusManager *monitoring.JobStatusManager
}

func New(appConfig *config.AppConfig, logger *logger.Logger, deps Deps) *Handler {
	return &Handler{
		JournalHandler:  journal.New(deps.Controller, logger),
		ChatHandler:     chat.New(deps.Controller, logger),
		AccountHandler:  account.New(deps.Registry, logger),
		OracleHandler:   oracle.New(deps.Oracle, logger, deps.BusinessMetrics),
		ExplorerHandler: explorerHandler.New(deps.Explorer, logger),
		HealthHandler:   health.New(appConfig, logger, deps.DB, deps.Explorer, deps.Oracle, deps.JobStatusManager),
		MetricsHandler:  metrics.NewMetricsHandler(deps.MetricsRegistry, deps.Oracle, deps.JobMetrics),
	}
}
