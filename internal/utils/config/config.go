package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dwarvesf/crypto-bookkeeper/internal/types/environments"
)

type AppConfig struct {
	Environment environments.Environment
	ApiServer   ApiServerConfig
	Postgres    DBConnection
	Storage     StorageConfig
	Explorer    ExplorerConfig
	LLM         LLMConfig
	Oracle      OracleConfig
	Pipeline    PipelineConfig
	Vault       VaultConfig
	Archive     ArchiveConfig
	Webhook     WebhookConfig
}

type ApiServerConfig struct {
	Port           string
	AllowedOrigins string
}

type DBConnection struct {
	Host string
	Port string
	User string
	Name string
	Pass string

	SSLMode string
}

// StorageConfig points at the ledger database. URL wins over the DB_* parts.
type StorageConfig struct {
	URL        string
	ServiceKey string
}

type ExplorerConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type LLMConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

type OracleConfig struct {
	Address      string
	RPCURL       string
	Enabled      bool
	PriceTTL     time.Duration
	WarmSchedule string
	WarmSymbols  []string
}

type PipelineConfig struct {
	BulkTimeout    time.Duration
	MaxConcurrency int
}

type VaultConfig struct {
	Addr         string
	Role         string
	KVSecretPath string
	TokenPath    string
}

type ArchiveConfig struct {
	Bucket string
}

type WebhookConfig struct {
	BulkRunURL string
}

func New() *AppConfig {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// does not override variables already present in the environment
	godotenv.Load(".env." + env)

	return &AppConfig{
		Environment: environments.Environment(env),
		ApiServer: ApiServerConfig{
			Port:           envVarOrDefault("PORT", "8080"),
			AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		},
		Postgres: DBConnection{
			Host:    os.Getenv("DB_HOST"),
			Port:    os.Getenv("DB_PORT"),
			User:    os.Getenv("DB_USER"),
			Name:    os.Getenv("DB_NAME"),
			Pass:    os.Getenv("DB_PASS"),
			SSLMode: os.Getenv("DB_SSL_MODE"),
		},
		Storage: StorageConfig{
			URL:        os.Getenv("STORAGE_URL"),
			ServiceKey: os.Getenv("STORAGE_SERVICE_KEY"),
		},
		Explorer: ExplorerConfig{
			BaseURL: os.Getenv("EXPLORER_BASE_URL"),
			APIKey:  os.Getenv("EXPLORER_API_KEY"),
			Timeout: 30 * time.Second,
		},
		LLM: LLMConfig{
			APIKey:  os.Getenv("LLM_API_KEY"),
			Model:   envVarOrDefault("LLM_MODEL", "gemini-2.5-flash"),
			Timeout: 60 * time.Second,
		},
		Oracle: OracleConfig{
			Address:      os.Getenv("ORACLE_ADDRESS"),
			RPCURL:       os.Getenv("ORACLE_RPC_URL"),
			Enabled:      envVarAsBool("ORACLE_ENABLED"),
			PriceTTL:     time.Duration(envVarAtoiOrDefault("PRICE_TTL_MS", 60000)) * time.Millisecond,
			WarmSchedule: envVarOrDefault("PRICE_WARM_SCHEDULE", "@every 1m"),
			WarmSymbols:  envVarAsList("PRICE_WARM_SYMBOLS", "ETH,FLR,BTC,USDT,USDC"),
		},
		Pipeline: PipelineConfig{
			BulkTimeout:    300 * time.Second,
			MaxConcurrency: envVarAtoiOrDefault("BULK_MAX_CONCURRENCY", 5),
		},
		Vault: VaultConfig{
			Addr:         os.Getenv("VAULT_ADDR"),
			Role:         os.Getenv("VAULT_ROLE"),
			KVSecretPath: os.Getenv("VAULT_KV_SECRET_PATH"),
			TokenPath:    envVarOrDefault("VAULT_K8S_TOKEN_PATH", "/var/run/secrets/kubernetes.io/serviceaccount/token"),
		},
		Archive: ArchiveConfig{
			Bucket: os.Getenv("LLM_ARCHIVE_BUCKET"),
		},
		Webhook: WebhookConfig{
			BulkRunURL: os.Getenv("BULK_WEBHOOK_URL"),
		},
	}
}

func envVarOrDefault(envName, fallback string) string {
	if v := os.Getenv(envName); v != "" {
		return v
	}
	return fallback
}

func envVarAtoiOrDefault(envName string, fallback int) int {
	valueStr := os.Getenv(envName)
	if valueStr == "" {
		return fallback
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		panic(err)
	}

	return value
}

func envVarAsBool(envName string) bool {
	valueStr := os.Getenv(envName)
	return valueStr == "true"
}

func envVarAsList(envName, fallback string) []string {
	raw := envVarOrDefault(envName, fallback)
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
