package middleware

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"poll-voting-backend/cache"
	"poll-voting-backend/logger"
)

// RateLimitStats 限流计数
type RateLimitStats struct {
	Total    int64 `json:"totalRequests"`
	Allowed  int64 `json:"allowedRequests"`
	Rejected int64 `json:"rejectedRequests"`
}

// RateLimiter 按身份限流，未认证请求按客户端IP
type RateLimiter struct {
	log     *slog.Logger
	limiter cache.RateLimiter

	total    atomic.Int64
	allowed  atomic.Int64
	rejected atomic.Int64
}

// NewRateLimiter limiter 为 nil 时中间件直接放行
func NewRateLimiter(log *slog.Logger, limiter cache.RateLimiter) *RateLimiter {
	return &RateLimiter{log: log, limiter: limiter}
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r.limiter == nil {
			c.Next()
			return
		}

		r.total.Add(1)

		key := "ip:" + c.ClientIP()
		if id, ok := Identity(c); ok {
			key = "user:" + id.UserID
		}

		ok, err := r.limiter.Allow(c.Request.Context(), key)
		if err != nil {
			// 限流后端故障时放行
			r.log.Warn("rate limiter unavailable", slog.String("key", key), logger.Err(err))
			ok = true
		}
		if !ok {
			r.rejected.Add(1)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"msg": "Too many requests, please try again later"})
			return
		}

		r.allowed.Add(1)
		c.Next()
	}
}

func (r *RateLimiter) Stats() RateLimitStats {
	return RateLimitStats{
		Total:    r.total.Load(),
		Allowed:  r.allowed.Load(),
		Rejected: r.rejected.Load(),
	}
}
