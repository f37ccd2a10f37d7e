package health

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dwarvesf/crypto-bookkeeper/internal/monitoring"
)

// CriticalJobs make the check unhealthy once they fail more than
// criticalFailureLimit times in a row. Other failing jobs only degrade it.
var CriticalJobs = []string{"price_cache_warm"}

const criticalFailureLimit = 2

// Jobs reports background job status
// @Summary Background jobs health check
// @Description Reports the price cache warm job and any other scheduled jobs
// @Tags health
// @Produce json
// @Success 200 {object} JobsHealthResponse
// @Success 206 {object} JobsHealthResponse
// @Failure 503 {object} JobsHealthResponse
// @Router /api/v1/health/jobs [get]
func (h *HealthHandler) Jobs(c *gin.Context) {
	start := time.Now()
	resp := JobsHealthResponse{
		Status: statusUnhealthy,
		Jobs:   map[string]monitoring.JobStatus{},
	}

	if h.jobStatusManager != nil {
		resp.Jobs = h.jobStatusManager.GetAllJobStatuses()
		resp.Summary = h.jobStatusManager.GetJobsSummary()
		resp.Status = jobsStatus(resp.Jobs, resp.Summary)
	}
	resp.Timestamp = time.Now()
	resp.DurationMs = time.Since(start).Milliseconds()

	h.logger.Info("[health][Jobs] check completed", map[string]string{
		"status":         resp.Status,
		"total_jobs":     strconv.Itoa(resp.Summary.TotalJobs),
		"unhealthy_jobs": strconv.Itoa(resp.Summary.UnhealthyJobs),
		"stalled_jobs":   strconv.Itoa(resp.Summary.StalledJobs),
	})

	c.JSON(statusCode(resp.Status), resp)
}

func jobsStatus(jobs map[string]monitoring.JobStatus, summary monitoring.JobsSummary) string {
	if summary.StalledJobs > 0 {
		return statusUnhealthy
	}
	if summary.UnhealthyJobs == 0 {
		return statusHealthy
	}
	for _, name := range CriticalJobs {
		js, ok := jobs[name]
		if ok && js.Status == monitoring.JobStatusFailed && js.ConsecutiveFailures > criticalFailureLimit {
			return statusUnhealthy
		}
	}
	return statusDegraded
}

func statusCode(status string) int {
	switch status {
	case statusUnhealthy:
		return http.StatusServiceUnavailable
	case statusDegraded:
		return http.StatusPartialContent
	default:
		return http.StatusOK
	}
}
