package http

import (
	"github.com/gin-gonic/gin"

	"github.com/dwarvesf/crypto-bookkeeper/internal/handler"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/config"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
)

func loadV1Routes(r *gin.Engine, h *handler.Handler, appConfig *config.AppConfig, logger *logger.Logger) {
	v1 := r.Group("/api/v1")

	journal := v1.Group("/journal")
	{
		journal.POST("/analyse", h.JournalHandler.Analyse)
		journal.POST("/wallet", h.JournalHandler.AnalyseWallet)
	}

	v1.POST("/chat", h.ChatHandler.Chat)

	accounts := v1.Group("/accounts")
	{
		accounts.GET("/chart", h.AccountHandler.GetChart)
		accounts.GET("/validate", h.AccountHandler.Validate)
		accounts.GET("/suggest", h.AccountHandler.Suggest)
	}

	oracle := v1.Group("/oracle")
	{
		oracle.GET("/price/:symbol", h.OracleHandler.GetPrice)
		oracle.GET("/symbols", h.OracleHandler.GetSupportedSymbols)
		oracle.GET("/supported/:symbol", h.OracleHandler.IsSupported)
		oracle.GET("/cache", h.OracleHandler.GetCacheStatistics)
		oracle.DELETE("/cache", h.OracleHandler.ClearCache)
	}

	v1.GET("/explorer/token-transfers/:target", h.ExplorerHandler.GetTokenTransfers)

	health := v1.Group("/health")
	{
		health.GET("/db", h.HealthHandler.Database)
		health.GET("/external", h.HealthHandler.External)
		health.GET("/jobs", h.HealthHandler.Jobs)
	}

	r.GET("/healthz", h.HealthHandler.Basic)
	r.GET("/metrics", h.MetricsHandler.Handler())
}
