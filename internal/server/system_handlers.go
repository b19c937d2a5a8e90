package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/murasakijyuutann/transport-payment/internal/api"
	"github.com/murasakijyuutann/transport-payment/internal/logger"
)

// HealthChecks ping the backing services. A nil Queue check is skipped; a
// failing Queue only degrades the report since taps do not depend on it.
type HealthChecks struct {
	Database func(ctx context.Context) error
	Queue    func(ctx context.Context) error
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} api.HealthResponse
// @Failure      503 {object} api.HealthResponse
// @Router       /health [get]
func Health(checks HealthChecks) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		resp := api.HealthResponse{Status: "ok", Database: "ok"}
		status := http.StatusOK

		if checks.Database != nil {
			if err := checks.Database(ctx); err != nil {
				logger.Error("database health check failed", "error", err)
				resp.Status = "unavailable"
				resp.Database = "down"
				status = http.StatusServiceUnavailable
			}
		}

		if checks.Queue != nil {
			resp.Queue = "ok"
			if err := checks.Queue(ctx); err != nil {
				logger.Warn("queue health check failed", "error", err)
				resp.Queue = "down"
				if status == http.StatusOK {
					resp.Status = "degraded"
				}
			}
		}

		c.JSON(status, resp)
	}
}

// @Summary      Prometheus metrics
// @Description  Exposes Prometheus metrics in text format
// @Tags         system
// @Produce      text/plain
// @Success      200 {string} string
// @Router       /metrics [get]
func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
