package monitoring

import (
	"time"
)

// CircuitBreakerConfig defines the configuration for circuit breakers
type CircuitBreakerConfig struct {
	MaxRequests                 uint32        `json:"max_requests"`
	Interval                    time.Duration `json:"interval"`
	Timeout                     time.Duration `json:"timeout"`
	ConsecutiveFailureThreshold int           `json:"consecutive_failure_threshold"`
}

// TimeoutConfig bounds a single call made through a breaker
type TimeoutConfig struct {
	RequestTimeout     time.Duration `json:"request_timeout"`
	HealthCheckTimeout time.Duration `json:"health_check_timeout"`
}

// APIErrorType represents different types of API errors for classification
type APIErrorType string

const (
	ErrorTypeTimeout      APIErrorType = "timeout"
	ErrorTypeNetworkError APIErrorType = "network_error"
	ErrorTypeServerError  APIErrorType = "server_error"
	ErrorTypeClientError  APIErrorType = "client_error"
	ErrorTypeUnknown      APIErrorType = "unknown"
)

const (
	ServiceExplorer = "explorer_api"
	ServiceLLM      = "llm_api"
	ServiceOracle   = "oracle_rpc"
)

// CircuitBreakerConfigs provides default configurations for different services
var CircuitBreakerConfigs = map[string]CircuitBreakerConfig{
	ServiceExplorer: {
		MaxRequests:                 5,
		Interval:                    30 * time.Second,
		Timeout:                     60 * time.Second,
		ConsecutiveFailureThreshold: 5,
	},
	ServiceLLM: {
		MaxRequests:                 2,
		Interval:                    60 * time.Second,
		Timeout:                     120 * time.Second,
		ConsecutiveFailureThreshold: 3,
	},
	ServiceOracle: {
		MaxRequests:                 3,
		Interval:                    45 * time.Second,
		Timeout:                     60 * time.Second,
		ConsecutiveFailureThreshold: 3,
	},
}

// TimeoutConfigs mirrors the operation-level deadlines of each upstream
var TimeoutConfigs = map[string]TimeoutConfig{
	ServiceExplorer: {RequestTimeout: 30 * time.Second, HealthCheckTimeout: 3 * time.Second},
	ServiceLLM:      {RequestTimeout: 60 * time.Second, HealthCheckTimeout: 5 * time.Second},
	ServiceOracle:   {RequestTimeout: 10 * time.Second, HealthCheckTimeout: 3 * time.Second},
}
