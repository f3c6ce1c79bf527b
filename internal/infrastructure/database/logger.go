package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recipe-share/internal/pkg/common"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// Logger 將 GORM 日誌導向 common.Logger
type Logger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewLogger 創建 GORM 日誌轉接器，超過 slowThreshold 的查詢記為警告
func NewLogger(slowThreshold time.Duration) *Logger {
	return &Logger{level: gormlogger.Warn, slowThreshold: slowThreshold}
}

// LogMode 實現 gormlogger.Interface
func (l *Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *Logger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		common.LogInfo(fmt.Sprintf(msg, args...))
	}
}

func (l *Logger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		common.LogWarn(fmt.Sprintf(msg, args...))
	}
}

func (l *Logger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		common.LogError(fmt.Sprintf(msg, args...))
	}
}

// Trace 記錄每筆 SQL；查無資料不算錯誤
func (l *Logger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gormlogger.ErrRecordNotFound):
		sql, rows := fc()
		common.LogError("SQL 執行失敗",
			zap.Error(err),
			zap.Duration("耗時", elapsed),
			zap.Int64("rows", rows),
			zap.String("sql", sql),
		)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		common.LogWarn("慢查詢",
			zap.Duration("耗時", elapsed),
			zap.Duration("門檻", l.slowThreshold),
			zap.Int64("rows", rows),
			zap.String("sql", sql),
		)
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		common.LogDebug("SQL",
			zap.Duration("耗時", elapsed),
			zap.Int64("rows", rows),
			zap.String("sql", sql),
		)
	}
}
