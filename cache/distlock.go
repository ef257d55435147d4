package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"poll-voting-backend/logger"
)

// DistributedLockService 基于 redsync 的分布式锁，多实例部署时串行化同一个 key
type DistributedLockService struct {
	rs     *redsync.Redsync
	expiry time.Duration
	tries  int
	log    *slog.Logger
}

// NewDistributedLockService 使用现有的Redis客户端创建锁服务
func NewDistributedLockService(client *redis.Client, expiry time.Duration, tries int, log *slog.Logger) *DistributedLockService {
	pool := goredis.NewPool(client)
	return &DistributedLockService{
		rs:     redsync.New(pool),
		expiry: expiry,
		tries:  tries,
		log:    log,
	}
}

func (s *DistributedLockService) newMutex(name string) *redsync.Mutex {
	return s.rs.NewMutex(name,
		redsync.WithExpiry(s.expiry),
		redsync.WithTries(s.tries),
		redsync.WithRetryDelay(50*time.Millisecond),
		redsync.WithDriftFactor(0.01),
	)
}

// WithLock 在锁内执行 fn，任何返回路径都会释放锁
func (s *DistributedLockService) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	mutex := s.newMutex(key)

	if err := mutex.LockContext(ctx); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrLockNotAcquired, key, err)
	}

	defer func() {
		// 释放不受调用方取消影响
		if ok, err := mutex.UnlockContext(context.Background()); err != nil || !ok {
			s.log.Warn("failed to release lock", slog.String("key", key), logger.Err(err))
		}
	}()

	return fn(ctx)
}
