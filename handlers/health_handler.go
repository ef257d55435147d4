package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"poll-voting-backend/logger"
	"poll-voting-backend/middleware"
)

// Pinger 存储连通性检查
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemInfo contains basic system metrics and information
type SystemInfo struct {
	Status       string                     `json:"status"`
	Version      string                     `json:"version"`
	Uptime       string                     `json:"uptime"`
	StartTime    time.Time                  `json:"start_time"`
	CurrentTime  time.Time                  `json:"current_time"`
	GoVersion    string                     `json:"go_version"`
	NumGoroutine int                        `json:"num_goroutine"`
	NumCPU       int                        `json:"num_cpu"`
	DBStatus     string                     `json:"db_status"`
	Subscribers  int                        `json:"subscribers"`
	RateLimit    *middleware.RateLimitStats `json:"rate_limit,omitempty"`
}

// Version 应用版本，可通过 -ldflags 注入
var Version = "0.1.0"

type HealthHandler struct {
	log       *slog.Logger
	store     Pinger
	limiter   *middleware.RateLimiter
	hubSize   func() int
	startTime time.Time
}

// NewHealthHandler limiter 和 hubSize 可以为 nil
func NewHealthHandler(log *slog.Logger, store Pinger, limiter *middleware.RateLimiter, hubSize func() int) *HealthHandler {
	return &HealthHandler{
		log:       log,
		store:     store,
		limiter:   limiter,
		hubSize:   hubSize,
		startTime: time.Now(),
	}
}

func (h *HealthHandler) dbStatus(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn("store ping failed", logger.Err(err))
		return "error"
	}
	return "ok"
}

// HealthCheck GET /health，存储不可用时返回 503
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	db := h.dbStatus(c.Request.Context())

	status := http.StatusOK
	if db != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status": db,
		"time":   time.Now().Format(time.RFC3339),
	})
}

// SystemStatus GET /api/system/status (admin)
func (h *HealthHandler) SystemStatus(c *gin.Context) {
	info := SystemInfo{
		Status:       "ok",
		Version:      Version,
		Uptime:       time.Since(h.startTime).String(),
		StartTime:    h.startTime,
		CurrentTime:  time.Now(),
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		DBStatus:     h.dbStatus(c.Request.Context()),
	}
	if h.hubSize != nil {
		info.Subscribers = h.hubSize()
	}
	if h.limiter != nil {
		stats := h.limiter.Stats()
		info.RateLimit = &stats
	}

	c.JSON(http.StatusOK, info)
}
