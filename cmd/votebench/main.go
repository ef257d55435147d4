// votebench 对运行中的服务或 Redis 做并发压测，确认同一用户只能投一票
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"poll-voting-backend/cache"
	"poll-voting-backend/config"
	"poll-voting-backend/logger"
)

type options struct {
	addr      string
	email     string
	password  string
	choice    string
	n         int
	redisAddr string
}

func main() {
	var opts options
	flag.StringVar(&opts.addr, "addr", "http://localhost:8090", "server base url")
	flag.StringVar(&opts.email, "email", "", "voter email")
	flag.StringVar(&opts.password, "password", "", "voter password")
	flag.StringVar(&opts.choice, "choice", "", "choice id to vote for")
	flag.IntVar(&opts.n, "n", 50, "concurrent requests")
	flag.StringVar(&opts.redisAddr, "redis", "localhost:6379", "redis address for lock and rate benches")
	flag.Parse()

	log := logger.New(logger.EnvLocal)
	ctx := context.Background()

	benches := flag.Args()
	if len(benches) == 0 {
		benches = []string{"vote"}
	}

	failed := false
	for _, b := range benches {
		var err error
		switch b {
		case "vote":
			err = benchVote(ctx, log, opts)
		case "lock":
			err = benchLock(ctx, log, opts)
		case "rate":
			err = benchRate(ctx, log, opts)
		default:
			err = fmt.Errorf("unknown bench %q", b)
		}
		if err != nil {
			log.Error("bench failed", slog.String("bench", b), logger.Err(err))
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func login(ctx context.Context, client *http.Client, opts options) (string, error) {
	body, _ := json.Marshal(map[string]string{"email": opts.email, "password": opts.password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.addr+"/api/auth", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login: unexpected status %d", resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	return out.Token, nil
}

// benchVote 同一个令牌并发投票，期望恰好一个 200
func benchVote(ctx context.Context, log *slog.Logger, opts options) error {
	if opts.email == "" || opts.choice == "" {
		return fmt.Errorf("vote bench needs -email, -password and -choice")
	}

	client := &http.Client{Timeout: 10 * time.Second}
	token, err := login(ctx, client, opts)
	if err != nil {
		return err
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		codes = map[int]int{}
		start = time.Now()
	)
	for i := 0; i < opts.n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req, err := http.NewRequestWithContext(ctx, http.MethodPut, opts.addr+"/api/polls/vote/"+opts.choice, nil)
			if err != nil {
				return
			}
			req.Header.Set("x-auth-token", token)

			code := -1
			if resp, err := client.Do(req); err == nil {
				code = resp.StatusCode
				_ = resp.Body.Close()
			}

			mu.Lock()
			codes[code]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	keys := make([]int, 0, len(codes))
	for k := range codes {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		log.Info("status", slog.Int("code", k), slog.Int("count", codes[k]))
	}
	log.Info("vote bench finished", slog.Int("requests", opts.n), slog.Duration("elapsed", time.Since(start)))

	if codes[http.StatusOK] > 1 {
		return fmt.Errorf("%d votes accepted for one voter", codes[http.StatusOK])
	}
	return nil
}

// benchLock 多个 goroutine 竞争同一把分布式锁，临界区内不能出现重叠
func benchLock(ctx context.Context, log *slog.Logger, opts options) error {
	client, err := cache.NewRedisClient(ctx, config.RedisConfig{Addr: opts.redisAddr})
	if err != nil {
		return err
	}
	defer client.Close()

	locker := cache.NewDistributedLockService(client, 5*time.Second, 64, log)

	var (
		wg       sync.WaitGroup
		inside   atomic.Int32
		overlaps atomic.Int32
		acquired atomic.Int32
	)
	for i := 0; i < opts.n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithLock(ctx, "votebench:lock", func(context.Context) error {
				if inside.Add(1) > 1 {
					overlaps.Add(1)
				}
				acquired.Add(1)
				time.Sleep(5 * time.Millisecond)
				inside.Add(-1)
				return nil
			})
			if err != nil {
				log.Debug("lock not acquired", logger.Err(err))
			}
		}()
	}
	wg.Wait()

	log.Info("lock bench finished", slog.Int("acquired", int(acquired.Load())), slog.Int("overlaps", int(overlaps.Load())))
	if overlaps.Load() > 0 {
		return fmt.Errorf("critical section overlapped %d times", overlaps.Load())
	}
	return nil
}

// benchRate 突发之后应开始拒绝
func benchRate(ctx context.Context, log *slog.Logger, opts options) error {
	client, err := cache.NewRedisClient(ctx, config.RedisConfig{Addr: opts.redisAddr})
	if err != nil {
		return err
	}
	defer client.Close()

	limiter := cache.NewRedisRateLimiter(client, "votebench", 3, 5)
	key := fmt.Sprintf("bench:%d", time.Now().UnixNano())

	allowed := 0
	for i := 0; i < 10; i++ {
		ok, err := limiter.Allow(ctx, key)
		if err != nil {
			return err
		}
		if ok {
			allowed++
		}
	}

	log.Info("rate bench finished", slog.Int("allowed", allowed), slog.Int("requests", 10))
	if allowed > 5 {
		return fmt.Errorf("limiter allowed %d requests, burst is 5", allowed)
	}
	return nil
}
