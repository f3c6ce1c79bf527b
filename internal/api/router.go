package api

import (
	"net/http"
	"time"

	"recipe-share/internal/api/handlers/health"
	recipeHandler "recipe-share/internal/api/handlers/recipe"
	userHandler "recipe-share/internal/api/handlers/user"
	"recipe-share/internal/api/middleware"
	recipeService "recipe-share/internal/core/recipe"
	userService "recipe-share/internal/core/user"
	"recipe-share/internal/infrastructure/config"
	"recipe-share/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	// 未設定時的請求超時
	defaultTimeout = 30 * time.Second
	// 未設定時的請求體大小限制 (2MB)
	defaultMaxBodySize = 2 << 20
	// 限流與去重的清理週期
	cleanupInterval = 5 * time.Minute
)

// Dependencies 路由需要的服務
type Dependencies struct {
	Recipes  *recipeService.Service
	Users    *userService.Service
	Checkers []health.Checker
}

// SetupRouter 設置路由，回傳的 cleanup 會停止背景清理
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, func()) {
	timeout := cfg.Server.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxBodySize := cfg.Server.MaxBodyBytes
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))

	var stops []func()
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		limiter.StartCleanup(cleanupInterval)
		stops = append(stops, limiter.Stop)
		router.Use(middleware.RateLimit(limiter))
	}

	dedup := middleware.NewDeduplicator(cfg.DedupWindow)
	dedup.StartCleanup(cleanupInterval)
	stops = append(stops, dedup.Stop)
	router.Use(middleware.Deduplication(dedup))

	router.Use(middleware.Timeout(timeout))

	// 健康檢查與指標
	healthHandler := health.NewHandler(cfg.App.Version, deps.Checkers...)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		recipeHandler.NewHandler(deps.Recipes).Register(api.Group("/recipes"))
		userHandler.NewHandler(deps.Users).Register(api.Group("/users"))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, common.ErrorResponse{
			Code:    common.ErrCodeNotFound,
			Message: "Route not found",
		})
	})

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Int("checkers", len(deps.Checkers)),
		zap.Duration("timeout", timeout),
		zap.Int64("max_body_size", maxBodySize),
	)

	cleanup := func() {
		for _, stop := range stops {
			stop()
		}
	}
	return router, cleanup
}
