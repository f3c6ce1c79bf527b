package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-share/internal/api"
	"recipe-share/internal/api/handlers/health"
	"recipe-share/internal/core/cache"
	recipeService "recipe-share/internal/core/recipe"
	userService "recipe-share/internal/core/user"
	"recipe-share/internal/infrastructure/config"
	"recipe-share/internal/infrastructure/database"
	"recipe-share/internal/infrastructure/repository"
	"recipe-share/internal/pkg/common"

	"go.uber.org/zap"
)

// 啟動時連線外部依賴的期限
const startupTimeout = 10 * time.Second

func main() {
	// 載入設定（包含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(common.LoggerOptions{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Service: cfg.App.Name,
	}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("env", cfg.App.Env),
		zap.String("database", config.MaskDSN(cfg.Database.URL)),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		cancel()
		common.LogFatal("Failed to connect database", zap.Error(err))
	}
	defer database.Close(db)

	checkers := []health.Checker{database.NewChecker(db)}
	store, storeChecker, err := newCacheStore(ctx, cfg)
	cancel()
	if err != nil {
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}
	defer store.Close()
	if storeChecker != nil {
		checkers = append(checkers, storeChecker)
	}

	recipes := repository.NewRecipeRepository(db)
	users := repository.NewUserRepository(db)

	router, cleanup := api.SetupRouter(cfg, api.Dependencies{
		Recipes:  recipeService.NewService(recipes, store),
		Users:    userService.NewService(users, recipes),
		Checkers: checkers,
	})
	defer cleanup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo(common.MsgAppStarted,
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo(common.MsgShuttingDown)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo(common.MsgServerExited)
}

// newCacheStore 依設定選擇快取後端；Redis 後端同時作為就緒檢查項目
func newCacheStore(ctx context.Context, cfg *config.Config) (cache.Store, health.Checker, error) {
	if !cfg.Cache.Enabled {
		return cache.Nop{}, nil, nil
	}

	switch cfg.Cache.Driver {
	case config.CacheDriverRedis:
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		store := cache.NewRedisStore(client, cfg.Redis.Prefix, cfg.Cache.TTL)
		return store, store, nil
	default:
		return cache.NewManager(cfg.Cache), nil, nil
	}
}
