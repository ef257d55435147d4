package routes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"poll-voting-backend/config"
	"poll-voting-backend/handlers"
	"poll-voting-backend/logger"
	"poll-voting-backend/middleware"
	"poll-voting-backend/models"
	"poll-voting-backend/websocket"
)

// Deps 路由需要的全部处理器和中间件
type Deps struct {
	Log       *slog.Logger
	CORS      config.CORSConfig
	Auth      *middleware.Auth
	RateLimit *middleware.RateLimiter
	Polls     *handlers.PollHandler
	Votes     *handlers.VoteHandler
	Users     *handlers.UserHandler
	Health    *handlers.HealthHandler
	Live      *websocket.Handler
	// TokenHeader 认证请求头，WebSocket 允许用查询参数代替
	TokenHeader string
}

// SetupRouter 设置和配置Gin路由
func SetupRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(d.Log))

	origins := d.CORS.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", d.TokenHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: !contains(origins, "*"),
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", d.Health.HealthCheck)

	authed := d.Auth.Authenticate()
	admin := d.Auth.RequireRole(models.RoleAdmin)

	api := router.Group("/api")
	{
		users := api.Group("/users")
		{
			users.POST("", d.Users.Register)
			users.GET("/all", authed, admin, d.Users.ListUsers)
			users.PUT("/:id", authed, admin, d.Users.UpsertUser)
			users.DELETE("/:id", authed, admin, d.Users.DeleteUser)
		}

		authGroup := api.Group("/auth")
		{
			authGroup.POST("", d.Users.Login)
			authGroup.GET("", authed, d.Users.Me)
		}

		polls := api.Group("/polls")
		{
			live := websocket.TokenFromQuery(d.TokenHeader)
			polls.GET("/:id/live", live, authed, d.Live.ServeLive)
			polls.GET("/:id/events", live, authed, d.Live.ServeEvents)

			polls.Use(authed)
			polls.POST("", d.Polls.CreatePoll)
			polls.GET("", d.Polls.GetPolls)
			polls.PUT("", d.Polls.UpdatePoll)
			polls.GET("/:id", d.Polls.GetPoll)
			polls.DELETE("/:id", d.Polls.DeletePoll)
			polls.PUT("/vote/:id", d.RateLimit.Middleware(), d.Votes.SubmitVote)
			polls.PUT("/status/:id", d.Auth.RequireAnyRole(models.RolePowerUser, models.RoleAdmin), d.Polls.SetStatus)
		}

		api.GET("/system/status", authed, admin, d.Health.SystemStatus)
	}

	return router
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Server 是HTTP服务器的封装
type Server struct {
	*http.Server
	log *slog.Logger
}

// StartServer 在单独的 goroutine 中监听，监听失败时调用 onFail
func StartServer(cfg config.HTTPConfig, handler http.Handler, log *slog.Logger, onFail func(error)) *Server {
	srv := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		log: log,
	}

	go func() {
		log.Info("server started", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", logger.Err(err))
			if onFail != nil {
				onFail(err)
			}
		}
	}()

	return srv
}

// Stop 停止接收新请求并等待现有请求完成
func (s *Server) Stop(ctx context.Context) error {
	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("routes.Server.Stop: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}
