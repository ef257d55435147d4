package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimiter 按 key 做令牌桶限流
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// LocalRateLimiter 进程内限流，每个 key 一个 rate.Limiter，空闲超过 idleTTL 后回收
type LocalRateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	limiters map[string]*localEntry
	lastGC   time.Time
}

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewLocalRateLimiter(rps float64, burst int) *LocalRateLimiter {
	return &LocalRateLimiter{
		limit:    rate.Limit(rps),
		burst:    burst,
		idleTTL:  10 * time.Minute,
		limiters: make(map[string]*localEntry),
		lastGC:   time.Now(),
	}
}

func (l *LocalRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := time.Now()

	l.mu.Lock()
	e, ok := l.limiters[key]
	if !ok {
		e = &localEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	if now.Sub(l.lastGC) > l.idleTTL {
		for k, v := range l.limiters {
			if now.Sub(v.lastSeen) > l.idleTTL {
				delete(l.limiters, k)
			}
		}
		l.lastGC = now
	}
	l.mu.Unlock()

	return e.limiter.AllowN(now, 1), nil
}

// tokenBucketScript 令牌桶，时间单位毫秒
var tokenBucketScript = redis.NewScript(`
local tokens_key = KEYS[1] .. ":tokens"
local timestamp_key = KEYS[1] .. ":ts"
local now = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local burst = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local tokens = tonumber(redis.call("get", tokens_key) or burst)
local last_update = tonumber(redis.call("get", timestamp_key) or now)

local elapsed = math.max(0, now - last_update)
local new_tokens = math.min(burst, tokens + elapsed * rate / 1000)

if new_tokens < 1 then
	return 0
end

new_tokens = new_tokens - 1
redis.call("set", tokens_key, new_tokens, "PX", ttl)
redis.call("set", timestamp_key, now, "PX", ttl)
return 1
`)

// RedisRateLimiter 多实例共享的令牌桶
type RedisRateLimiter struct {
	client redis.Scripter
	prefix string
	rps    float64
	burst  int
}

func NewRedisRateLimiter(client redis.Scripter, prefix string, rps float64, burst int) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, prefix: prefix, rps: rps, burst: burst}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.client == nil {
		return false, ErrRedisNotAvailable
	}

	res, err := tokenBucketScript.Run(ctx, l.client,
		[]string{fmt.Sprintf("rate_limit:%s:%s", l.prefix, key)},
		time.Now().UnixMilli(), l.rps, l.burst, l.bucketTTL(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("cache.RedisRateLimiter.Allow: %w", err)
	}
	return res == 1, nil
}

// bucketTTL 桶从空到满所需时间的两倍作为过期时间（毫秒），至少 2 秒
func (l *RedisRateLimiter) bucketTTL() int64 {
	const minTTL = 2000
	if l.rps <= 0 {
		return minTTL
	}
	ttl := int64(2000 * float64(l.burst) / l.rps)
	if ttl < minTTL {
		return minTTL
	}
	return ttl
}

// NewRateLimiter 有Redis客户端时使用共享令牌桶，否则使用进程内限流
func NewRateLimiter(client *redis.Client, rps float64, burst int, log *slog.Logger) RateLimiter {
	if client == nil {
		return NewLocalRateLimiter(rps, burst)
	}
	log.Info("using redis rate limiter")
	return NewRedisRateLimiter(client, "api", rps, burst)
}
