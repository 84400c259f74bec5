// Package router builds the HTTP handler for the local observability
// listener that runs next to the interactive UI.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/NomadCrew/feedback-client/types"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const healthTimeout = 5 * time.Second

// HealthChecker reports the state of the upstream feedback API.
type HealthChecker interface {
	CheckHealth(ctx context.Context) types.HealthCheck
}

// Dependencies holds what the routes need.
type Dependencies struct {
	Gatherer prometheus.Gatherer
	Health   HealthChecker
	Logger   *zap.SugaredLogger
}

// SetupRouter returns a gin engine serving /health, /health/liveness and
// /metrics.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if deps.Logger != nil {
		r.Use(requestLogger(deps.Logger))
	}

	r.GET("/health/liveness", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": types.HealthStatusUp})
	})
	if deps.Health != nil {
		r.GET("/health", func(c *gin.Context) {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			defer cancel()

			check := deps.Health.CheckHealth(ctx)
			status := http.StatusOK
			if check.Status == types.HealthStatusDown {
				status = http.StatusServiceUnavailable
			}
			c.JSON(status, check)
		})
	}

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return r
}

func requestLogger(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debugw("Served request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
