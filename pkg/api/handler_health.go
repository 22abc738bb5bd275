package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emojivision/mosaic/pkg/analyzer"
)

const (
	healthStatusHealthy  = "healthy"
	healthStatusDegraded = "degraded"
	healthStatusCritical = "critical"
	healthStatusError    = "error"
)

// healthHandler handles GET /health: a roster-level summary from the
// background monitor's cached probes.
func (s *Server) healthHandler(c *gin.Context) {
	sum := s.health.Summary()
	status := overallStatus(sum)
	analyzersHealthy.Set(float64(sum.Healthy))

	httpStatus := http.StatusOK
	if status == healthStatusCritical || status == healthStatusError {
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status":           status,
		"healthy_services": fmt.Sprintf("%d/%d", sum.Healthy, sum.Total),
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
	})
}

// servicesHealthHandler handles GET /services/health: per-analyzer statuses.
func (s *Server) servicesHealthHandler(c *gin.Context) {
	sum := s.health.Summary()

	c.JSON(http.StatusOK, gin.H{
		"status":   overallStatus(sum),
		"services": s.health.GetStatuses(),
	})
}

// overallStatus collapses the roster summary into one status word. No probe
// data yet means "error": the monitor hasn't completed its first pass.
func overallStatus(sum analyzer.HealthSummary) string {
	probed := sum.Healthy + len(sum.Degraded)
	switch {
	case sum.Total == 0 || probed == 0:
		return healthStatusError
	case sum.Healthy == 0:
		return healthStatusCritical
	case len(sum.Degraded) > 0:
		return healthStatusDegraded
	default:
		return healthStatusHealthy
	}
}
