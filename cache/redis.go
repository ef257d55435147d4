package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"poll-voting-backend/config"
	"poll-voting-backend/logger"
)

// Locker 串行化同一个 key 上的操作。fn 返回后锁一定被释放
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// NewRedisClient 创建并检测Redis连接
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 3 * time.Second,
		ReadTimeout: 3 * time.Second,
		PoolSize:    10,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrRedisNotAvailable, err)
	}
	return client, nil
}

// NewLocker 启用并能连上Redis时使用分布式锁，否则退回进程内锁。
// 返回的 client 可能为 nil，由调用方关闭
func NewLocker(ctx context.Context, cfg *config.Config, log *slog.Logger) (Locker, *redis.Client) {
	if !cfg.Redis.Enabled {
		log.Info("redis disabled, using in-process vote lock")
		return NewKeyedMutex(), nil
	}

	client, err := NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Warn("redis unreachable, using in-process vote lock", logger.Err(err))
		return NewKeyedMutex(), nil
	}

	log.Info("using redis vote lock", slog.String("addr", cfg.Redis.Addr))
	return NewDistributedLockService(client, cfg.VoteLock.Expiry, cfg.VoteLock.Tries, log), client
}
