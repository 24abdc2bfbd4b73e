package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oksasatya/go-social-user-service/internal/container"
	handlers "github.com/oksasatya/go-social-user-service/internal/interface/http"
	"github.com/oksasatya/go-social-user-service/internal/interface/middleware"
)

// HealthModule serves liveness, readiness and, when enabled, the prometheus scrape endpoint.
type HealthModule struct {
	Handler        *handlers.HealthHandler
	MetricsEnabled bool
}

func NewHealthModule(h *handlers.HealthHandler, metricsEnabled bool) *HealthModule {
	return &HealthModule{Handler: h, MetricsEnabled: metricsEnabled}
}

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", m.Handler.Live)
	rg.GET("/health/ready", m.Handler.Ready)

	if m.MetricsEnabled {
		// scrapers inside the cluster are not limited
		rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
		rg.GET("/metrics", rl, gin.WrapH(promhttp.Handler()))
	}
}
