// Package database 建立 PostgreSQL 連線（GORM）
package database

import (
	"context"
	"fmt"

	"recipe-share/internal/infrastructure/config"
	"recipe-share/internal/pkg/common"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open 連線資料庫並設定連線池
func Open(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger:                 NewLogger(cfg.SlowThreshold),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	common.LogInfo("資料庫已連線",
		zap.String("url", config.MaskDSN(cfg.URL)),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
	)
	return db, nil
}

// Checker 資料庫健康檢查
type Checker struct {
	db *gorm.DB
}

// NewChecker 創建資料庫健康檢查器
func NewChecker(db *gorm.DB) *Checker {
	return &Checker{db: db}
}

// Name 檢查項目名稱
func (c *Checker) Name() string { return "database" }

// HealthCheck 以 ping 檢查連線
func (c *Checker) HealthCheck(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 關閉連線池
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
