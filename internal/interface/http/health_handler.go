package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-user-service/pkg/response"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	DB     Pinger
	Redis  *redis.Client
	Logger *logrus.Logger
}

func NewHealthHandler(db Pinger, rdb *redis.Client, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{DB: db, Redis: rdb, Logger: logger}
}

func (h *HealthHandler) Live(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports 503 until postgres and redis both answer a ping.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"postgres": "ok", "redis": "ok"}
	ready := true
	if h.DB == nil {
		checks["postgres"] = "not configured"
		ready = false
	} else if err := h.DB.Ping(ctx); err != nil {
		h.Logger.WithError(err).Warn("postgres not ready")
		checks["postgres"] = "unavailable"
		ready = false
	}
	if h.Redis == nil {
		checks["redis"] = "not configured"
		ready = false
	} else if err := h.Redis.Ping(ctx).Err(); err != nil {
		h.Logger.WithError(err).Warn("redis not ready")
		checks["redis"] = "unavailable"
		ready = false
	}

	if !ready {
		response.Error(c, http.StatusServiceUnavailable, "not ready", checks)
		return
	}
	response.Success(c, http.StatusOK, checks)
}
