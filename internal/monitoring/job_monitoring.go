package monitoring

import (
	"context"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dwarvesf/crypto-bookkeeper/internal/apperror"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
)

type JobExecutionStatus string

const (
	JobStatusPending JobExecutionStatus = "pending"
	JobStatusRunning JobExecutionStatus = "running"
	JobStatusSuccess JobExecutionStatus = "success"
	JobStatusFailed  JobExecutionStatus = "failed"
	JobStatusStalled JobExecutionStatus = "stalled"
)

// JobStatus is the last known state of a background job.
type JobStatus struct {
	JobName             string                 `json:"job_name"`
	Status              JobExecutionStatus     `json:"status"`
	LastRunTime         time.Time              `json:"last_run_time"`
	LastDuration        time.Duration          `json:"last_duration_ms"`
	SuccessCount        int64                  `json:"success_count"`
	FailureCount        int64                  `json:"failure_count"`
	ConsecutiveFailures int64                  `json:"consecutive_failures"`
	LastError           string                 `json:"last_error,omitempty"`
	Metadata            map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

type JobsSummary struct {
	TotalJobs      int       `json:"total_jobs"`
	RunningJobs    int       `json:"running_jobs"`
	HealthyJobs    int       `json:"healthy_jobs"`
	UnhealthyJobs  int       `json:"unhealthy_jobs"`
	StalledJobs    int       `json:"stalled_jobs"`
	LastUpdateTime time.Time `json:"last_update_time"`
}

// JobStatusManager tracks background jobs for the health endpoint. A job
// running longer than the stalled threshold is reported as stalled.
type JobStatusManager struct {
	mu               sync.RWMutex
	statuses         map[string]*JobStatus
	logger           *logger.Logger
	metrics          *BackgroundJobMetrics
	stalledThreshold time.Duration
	stop             chan struct{}
	stopOnce         sync.Once
}

func NewJobStatusManager(logger *logger.Logger, metrics *BackgroundJobMetrics) *JobStatusManager {
	jsm := &JobStatusManager{
		statuses:         make(map[string]*JobStatus),
		logger:           logger,
		metrics:          metrics,
		stalledThreshold: 10 * time.Minute,
		stop:             make(chan struct{}),
	}

	go jsm.watchStalled(time.Minute)

	return jsm
}

// Stop ends the stalled job watcher.
func (jsm *JobStatusManager) Stop() {
	jsm.stopOnce.Do(func() { close(jsm.stop) })
}

func (jsm *JobStatusManager) RegisterJob(jobName string) {
	jsm.mu.Lock()
	defer jsm.mu.Unlock()

	if _, ok := jsm.statuses[jobName]; ok {
		return
	}
	now := time.Now()
	jsm.statuses[jobName] = &JobStatus{
		JobName:   jobName,
		Status:    JobStatusPending,
		Metadata:  make(map[string]interface{}),
		CreatedAt: now,
		UpdatedAt: now,
	}
	jsm.logger.Info("[jobs] registered", map[string]string{"job_name": jobName})
}

func (jsm *JobStatusManager) StartJob(jobName string) {
	jsm.mu.Lock()
	defer jsm.mu.Unlock()

	now := time.Now()
	status, ok := jsm.statuses[jobName]
	if !ok {
		status = &JobStatus{JobName: jobName, Metadata: make(map[string]interface{}), CreatedAt: now}
		jsm.statuses[jobName] = status
	}
	status.Status = JobStatusRunning
	status.LastRunTime = now
	status.UpdatedAt = now

	jsm.metrics.activeJobs.Inc()
}

// CompleteJob records the outcome of the run started by StartJob.
func (jsm *JobStatusManager) CompleteJob(jobName string, err error, metadata map[string]interface{}) {
	jsm.mu.Lock()
	defer jsm.mu.Unlock()

	status, ok := jsm.statuses[jobName]
	if !ok {
		jsm.logger.Error("[jobs] completed unregistered job", map[string]string{"job_name": jobName})
		return
	}
	defer jsm.metrics.activeJobs.Dec()

	status.LastDuration = time.Since(status.LastRunTime)
	status.UpdatedAt = time.Now()
	for k, v := range metadata {
		status.Metadata[k] = v
	}

	if err != nil {
		status.Status = JobStatusFailed
		status.FailureCount++
		status.ConsecutiveFailures++
		status.LastError = err.Error()
		if _, ok := metadata["error_type"]; !ok {
			status.Metadata["error_type"] = classifyJobError(err)
		}

		jsm.metrics.jobRuns.WithLabelValues(jobName, "error").Inc()
		jsm.metrics.jobDuration.WithLabelValues(jobName, "failed").Observe(status.LastDuration.Seconds())
		jsm.logger.Error("[jobs] failed", map[string]string{
			"job_name":             jobName,
			"duration":             status.LastDuration.String(),
			"error":                err.Error(),
			"consecutive_failures": strconv.FormatInt(status.ConsecutiveFailures, 10),
		})
		return
	}

	status.Status = JobStatusSuccess
	status.SuccessCount++
	status.ConsecutiveFailures = 0
	status.LastError = ""
	delete(status.Metadata, "error_type")

	jsm.metrics.jobRuns.WithLabelValues(jobName, "success").Inc()
	jsm.metrics.jobDuration.WithLabelValues(jobName, "success").Observe(status.LastDuration.Seconds())
	jsm.logger.Info("[jobs] done", map[string]string{
		"job_name": jobName,
		"duration": status.LastDuration.String(),
	})
}

func (jsm *JobStatusManager) GetJobStatus(jobName string) (*JobStatus, bool) {
	all := jsm.GetAllJobStatuses()
	status, ok := all[jobName]
	if !ok {
		return nil, false
	}
	return &status, true
}

// GetAllJobStatuses returns copies; a running job past the stalled threshold
// is reported as stalled even before the watcher marks it.
func (jsm *JobStatusManager) GetAllJobStatuses() map[string]JobStatus {
	jsm.mu.RLock()
	defer jsm.mu.RUnlock()

	now := time.Now()
	out := make(map[string]JobStatus, len(jsm.statuses))
	for name, status := range jsm.statuses {
		cp := *status
		cp.Metadata = make(map[string]interface{}, len(status.Metadata))
		for k, v := range status.Metadata {
			cp.Metadata[k] = v
		}
		if jsm.stalled(status, now) {
			cp.Status = JobStatusStalled
		}
		out[name] = cp
	}
	return out
}

func (jsm *JobStatusManager) GetJobsSummary() JobsSummary {
	summary := JobsSummary{LastUpdateTime: time.Now()}
	for _, status := range jsm.GetAllJobStatuses() {
		summary.TotalJobs++
		switch status.Status {
		case JobStatusRunning:
			summary.RunningJobs++
		case JobStatusSuccess:
			summary.HealthyJobs++
		case JobStatusFailed:
			summary.UnhealthyJobs++
		case JobStatusStalled:
			summary.StalledJobs++
		}
	}
	return summary
}

func (jsm *JobStatusManager) stalled(status *JobStatus, now time.Time) bool {
	return status.Status == JobStatusRunning && now.Sub(status.LastRunTime) > jsm.stalledThreshold
}

func (jsm *JobStatusManager) watchStalled(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-jsm.stop:
			return
		case <-ticker.C:
			jsm.markStalled()
		}
	}
}

func (jsm *JobStatusManager) markStalled() {
	jsm.mu.Lock()
	defer jsm.mu.Unlock()

	now := time.Now()
	n := 0
	for name, status := range jsm.statuses {
		if status.Status == JobStatusStalled {
			n++
			continue
		}
		if !jsm.stalled(status, now) {
			continue
		}
		status.Status = JobStatusStalled
		status.UpdatedAt = now
		n++
		jsm.logger.Error("[jobs] stalled", map[string]string{
			"job_name":      name,
			"last_run_time": status.LastRunTime.Format(time.RFC3339),
		})
	}
	jsm.metrics.stalledJobs.Set(float64(n))
}

type jobResult struct {
	err      error
	metadata map[string]interface{}
}

// InstrumentedJob runs a job function under a deadline, recovering panics
// and reporting to a JobStatusManager. It satisfies cron.Job.
type InstrumentedJob struct {
	jobName       string
	jobFunc       func(ctx context.Context) error
	statusManager *JobStatusManager
	logger        *logger.Logger
	timeout       time.Duration
}

func NewInstrumentedJob(
	jobName string,
	jobFunc func(ctx context.Context) error,
	statusManager *JobStatusManager,
	logger *logger.Logger,
	timeout time.Duration,
) *InstrumentedJob {
	statusManager.RegisterJob(jobName)
	return &InstrumentedJob{
		jobName:       jobName,
		jobFunc:       jobFunc,
		statusManager: statusManager,
		logger:        logger,
		timeout:       timeout,
	}
}

func (ij *InstrumentedJob) Run() { ij.Execute() }

func (ij *InstrumentedJob) Execute() {
	ij.statusManager.StartJob(ij.jobName)

	ctx, cancel := context.WithTimeout(context.Background(), ij.timeout)
	defer cancel()

	done := make(chan jobResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ij.logger.Error("[jobs] panic", map[string]string{
					"job_name": ij.jobName,
					"panic":    fmt.Sprintf("%v", r),
				})
				done <- jobResult{
					err: fmt.Errorf("job panicked: %v", r),
					metadata: map[string]interface{}{
						"error_type":  "panic",
						"stack_trace": string(debug.Stack()),
					},
				}
			}
		}()
		done <- jobResult{err: ij.jobFunc(ctx)}
	}()

	var res jobResult
	select {
	case res = <-done:
	case <-ctx.Done():
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		ij.statusManager.metrics.jobTimeouts.WithLabelValues(ij.jobName).Inc()
		res = jobResult{
			err:      fmt.Errorf("job timeout after %v", ij.timeout),
			metadata: map[string]interface{}{"error_type": "timeout", "timeout": ij.timeout.String()},
		}
	}

	ij.statusManager.CompleteJob(ij.jobName, res.err, res.metadata)
}

type BackgroundJobMetrics struct {
	jobDuration  *prometheus.HistogramVec
	jobRuns      *prometheus.CounterVec
	activeJobs   prometheus.Gauge
	stalledJobs  prometheus.Gauge
	cachedPrices prometheus.Gauge
	jobTimeouts  *prometheus.CounterVec
}

func NewBackgroundJobMetrics() *BackgroundJobMetrics {
	return &BackgroundJobMetrics{
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bookkeeper_background_job_duration_seconds",
			Help:    "Background job execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}, []string{"job_name", "status"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookkeeper_background_job_runs_total",
			Help: "Total number of background job runs",
		}, []string{"job_name", "status"}),
		activeJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bookkeeper_background_jobs_active",
			Help: "Number of currently running background jobs",
		}),
		stalledJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bookkeeper_background_jobs_stalled",
			Help: "Number of stalled background jobs",
		}),
		cachedPrices: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bookkeeper_oracle_cached_prices",
			Help: "Number of prices held in the oracle cache",
		}),
		jobTimeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookkeeper_job_timeouts_total",
			Help: "Total job timeouts",
		}, []string{"job_name"}),
	}
}

func (m *BackgroundJobMetrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(m.jobDuration, m.jobRuns, m.activeJobs, m.stalledJobs, m.cachedPrices, m.jobTimeouts)
}

func (m *BackgroundJobMetrics) SetCachedPrices(n int) {
	m.cachedPrices.Set(float64(n))
}

// classifyJobError prefers the taxonomy kind and falls back to the message.
func classifyJobError(err error) string {
	if e, ok := apperror.As(err); ok {
		if e.Timeout {
			return "timeout"
		}
		return string(e.Kind)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "panic"):
		return "panic"
	case strings.Contains(msg, "sql"), strings.Contains(msg, "database"):
		return "database"
	case strings.Contains(msg, "oracle"), strings.Contains(msg, "rpc"):
		return "oracle"
	case strings.Contains(msg, "connection"), strings.Contains(msg, "network"):
		return "network"
	default:
		return "unknown"
	}
}
