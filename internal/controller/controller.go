package controller

import (
	"gorm.io/gorm"

	"github.com/dwarvesf/crypto-bookkeeper/internal/accountregistry"
	"github.com/dwarvesf/crypto-bookkeeper/internal/categorizer"
	"github.com/dwarvesf/crypto-bookkeeper/internal/explorer"
	"github.com/dwarvesf/crypto-bookkeeper/internal/llm"
	"github.com/dwarvesf/crypto-bookkeeper/internal/monitoring"
	"github.com/dwarvesf/crypto-bookkeeper/internal/oracle"
	"github.com/dwarvesf/crypto-bookkeeper/internal/store"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/config"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/webhook"
)

type Controller struct {
	db          *gorm.DB
	store       *store.Store
	explorer    explorer.IExplorer
	categorizer categorizer.ICategorizer
	oracle      oracle.IPriceOracle
	registry    accountregistry.IRegistry
	llm         llm.IAdapter
	webhook     *webhook.Client
	metrics     *monitoring.BusinessMetricsRecorder
	config      *config.AppConfig
	logger      *logger.Logger
}

// Deps groups the collaborators of the pipeline. Oracle, Webhook and
// Metrics may be nil.
type Deps struct {
	DB          *gorm.DB
	Store       *store.Store
	Explorer    explorer.IExplorer
	Categorizer categorizer.ICategorizer
	Oracle      oracle.IPriceOracle
	Registry    accountregistry.IRegistry
	LLM         llm.IAdapter
	Webhook     *webhook.Client
	Metrics     *monitoring.BusinessMetricsRecorder
}

func New(deps Deps, config *config.AppConfig, logger *logger.Logger) IController {
	return &Controller{
		db:          deps.DB,
		store:       deps.Store,
		explorer:    deps.Explorer,
		categorizer: deps.Categorizer,
		oracle:      deps.Oracle,
		registry:    deps.Registry,
		llm:         deps.LLM,
		webhook:     deps.Webhook,
		metrics:     deps.Metrics,
		config:      config,
		logger:      logger,
	}
}
