package monitoring

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/dwarvesf/crypto-bookkeeper/internal/apperror"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
)

// Breaker guards calls to one upstream service with a circuit breaker,
// a per-call deadline and API metrics.
type Breaker struct {
	name           string
	circuitBreaker *gobreaker.CircuitBreaker
	metrics        *ExternalAPIMetrics
	logger         *logger.Logger
	timeoutConfig  TimeoutConfig
}

// NewBreaker creates a breaker for service name using the default timeouts
// registered for it.
func NewBreaker(name string, config CircuitBreakerConfig, metrics *ExternalAPIMetrics, logger *logger.Logger) *Breaker {
	timeoutConfig, ok := TimeoutConfigs[name]
	if !ok {
		timeoutConfig = TimeoutConfig{RequestTimeout: 30 * time.Second, HealthCheckTimeout: 5 * time.Second}
	}
	return NewBreakerWithTimeout(name, config, timeoutConfig, metrics, logger)
}

func NewBreakerWithTimeout(name string, config CircuitBreakerConfig, timeoutConfig TimeoutConfig, metrics *ExternalAPIMetrics, logger *logger.Logger) *Breaker {
	b := &Breaker{
		name:          name,
		metrics:       metrics,
		logger:        logger,
		timeoutConfig: timeoutConfig,
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(config.ConsecutiveFailureThreshold)
		},
		// a missing transaction is an answer, not an outage
		IsSuccessful: func(err error) bool {
			return err == nil || apperror.Is(err, apperror.KindNotFound) || apperror.Is(err, apperror.KindValidation)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state change", map[string]string{
				"service": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			if metrics != nil {
				metrics.UpdateCircuitBreakerState(name, to)
			}
		},
	}

	b.circuitBreaker = gobreaker.NewCircuitBreaker(settings)
	return b
}

func (b *Breaker) Name() string { return b.name }

func (b *Breaker) State() gobreaker.State { return b.circuitBreaker.State() }

// Call runs fn through b. The context handed to fn carries the breaker's
// request deadline (or the health check deadline for operation
// "health_check"), whichever is earlier than the caller's own.
func Call[T any](ctx context.Context, b *Breaker, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if b == nil {
		return fn(ctx)
	}

	result, err := b.circuitBreaker.Execute(func() (interface{}, error) {
		return b.executeWithTimeout(ctx, operation, func(ctx context.Context) (interface{}, error) {
			return fn(ctx)
		})
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			b.metrics.recordCall(b.name, operation, "circuit_open", 0)
			return zero, fmt.Errorf("%s circuit breaker: %w", b.name, err)
		}
		return zero, err
	}

	if result == nil {
		return zero, nil
	}
	return result.(T), nil
}

func (b *Breaker) executeWithTimeout(parent context.Context, operation string, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	start := time.Now()

	timeout := b.timeoutConfig.RequestTimeout
	if operation == "health_check" {
		timeout = b.timeoutConfig.HealthCheckTimeout
	}

	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	result, err := fn(ctx)
	duration := time.Since(start).Seconds()

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			b.metrics.recordTimeout(b.name, operation)
		}
		b.metrics.recordCall(b.name, operation, "error", duration)
		b.logError(operation, duration, err)
		return nil, err
	}

	b.metrics.recordCall(b.name, operation, "success", duration)
	return result, nil
}

func (b *Breaker) logError(operation string, duration float64, err error) {
	b.logger.Error("External API call failed", map[string]string{
		"api_name":   b.name,
		"operation":  operation,
		"duration":   fmt.Sprintf("%.3fs", duration),
		"error":      err.Error(),
		"error_type": string(classifyError(err)),
	})
}

func (m *ExternalAPIMetrics) recordCall(apiName, endpoint, status string, duration float64) {
	if m == nil {
		return
	}
	m.RecordAPICall(apiName, endpoint, status, duration)
}

func (m *ExternalAPIMetrics) recordTimeout(apiName, endpoint string) {
	if m == nil {
		return
	}
	m.RecordTimeout(apiName, endpoint)
}

// classifyError classifies errors into different types for metrics and logging
func classifyError(err error) APIErrorType {
	if err == nil {
		return ""
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "deadline exceeded") ||
		strings.Contains(errMsg, "context canceled") {
		return ErrorTypeTimeout
	}

	if strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "connection") ||
		strings.Contains(errMsg, "unreachable") ||
		strings.Contains(errMsg, "dns") {
		return ErrorTypeNetworkError
	}

	if strings.Contains(errMsg, "500") ||
		strings.Contains(errMsg, "502") ||
		strings.Contains(errMsg, "503") ||
		strings.Contains(errMsg, "504") ||
		strings.Contains(errMsg, "internal server error") ||
		strings.Contains(errMsg, "bad gateway") ||
		strings.Contains(errMsg, "service unavailable") {
		return ErrorTypeServerError
	}

	if strings.Contains(errMsg, "400") ||
		strings.Contains(errMsg, "401") ||
		strings.Contains(errMsg, "403") ||
		strings.Contains(errMsg, "404") ||
		strings.Contains(errMsg, "429") ||
		strings.Contains(errMsg, "bad request") ||
		strings.Contains(errMsg, "not found") {
		return ErrorTypeClientError
	}

	return ErrorTypeUnknown
}
