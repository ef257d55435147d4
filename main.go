package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"poll-voting-backend/auth"
	"poll-voting-backend/cache"
	"poll-voting-backend/config"
	"poll-voting-backend/database"
	"poll-voting-backend/handlers"
	"poll-voting-backend/logger"
	"poll-voting-backend/middleware"
	"poll-voting-backend/mq"
	"poll-voting-backend/routes"
	"poll-voting-backend/service"
	"poll-voting-backend/websocket"
)

func main() {
	cfg := config.MustLoad()

	log := logger.New(cfg.Env)
	log.Info("starting poll voting backend", slog.String("env", cfg.Env), slog.String("storage", cfg.Storage.Driver))

	if cfg.Env == logger.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 初始化数据库连接
	store, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open store", logger.Err(err))
		os.Exit(1)
	}
	service.SeedRoles(ctx, store, log)

	// 投票锁和限流，Redis 不可用时退回进程内实现
	locker, redisClient := cache.NewLocker(ctx, cfg, log)
	var limiter cache.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = cache.NewRateLimiter(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, log)
	}

	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	// 有 Redis 时通过频道把事件转发给其他实例
	var publisher service.Publisher = hub
	if redisClient != nil {
		bus := mq.NewRedisBus(log, redisClient, cfg.Redis.EventsChannel, hub)
		go func() {
			if err := bus.Run(ctx); err != nil {
				log.Error("event bus stopped", logger.Err(err))
			}
		}()
		publisher = bus
	}

	tokens := auth.NewTokenCodec(cfg.Auth.JWTSecret)
	authn := auth.NewAuthenticator(cfg.Auth.Header, tokens)
	authz := auth.NewAuthorizer(log, store, store)

	pollService := service.NewPollService(log, store, store, store, authz, publisher)
	voteService := service.NewVotingService(log, store, store, locker, publisher)
	userService := service.NewUserService(log, store, store, locker, tokens, cfg.Auth.TokenTTL)

	rateLimit := middleware.NewRateLimiter(log, limiter)

	router := routes.SetupRouter(routes.Deps{
		Log:         log,
		CORS:        cfg.CORS,
		Auth:        middleware.NewAuth(log, authn, authz),
		RateLimit:   rateLimit,
		Polls:       handlers.NewPollHandler(log, pollService),
		Votes:       handlers.NewVoteHandler(log, voteService),
		Users:       handlers.NewUserHandler(log, userService),
		Health:      handlers.NewHealthHandler(log, store, rateLimit, hub.Size),
		Live:        websocket.NewHandler(log, hub, pollService, cfg.CORS.AllowOrigins),
		TokenHeader: authn.Header(),
	})

	srv := routes.StartServer(cfg.HTTP, router, log, func(error) { stop() })

	// 等待中断信号以优雅地关闭服务器
	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("forced shutdown", logger.Err(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Warn("failed to close redis", logger.Err(err))
		}
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Warn("failed to close store", logger.Err(err))
	}

	log.Info("server stopped gracefully")
}
