package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger 全局日誌實例，初始化前為 no-op
	Logger  = zap.NewNop()
	LogMode string

	// 定義日誌級別的顏色
	levelColors = map[zapcore.Level]string{
		zapcore.DebugLevel: "\033[36m", // 青色
		zapcore.InfoLevel:  "\033[32m", // 綠色
		zapcore.WarnLevel:  "\033[33m", // 黃色
		zapcore.ErrorLevel: "\033[31m", // 紅色
		zapcore.FatalLevel: "\033[35m", // 紫色
	}
	resetColor = "\033[0m"

	// concise 模式下仍然輸出的訊息
	conciseMessages = map[string]bool{
		MsgRequestCompleted: true,
		MsgAppStarted:       true,
		MsgShuttingDown:     true,
		MsgServerExited:     true,
	}

	// 不應該出現在日誌中的欄位
	sensitiveKeys = []string{"password", "password_hash", "token", "authorization"}
)

// 生命週期與請求相關的固定訊息
const (
	MsgRequestCompleted = "請求完成"
	MsgAppStarted       = "啟動應用"
	MsgShuttingDown     = "Shutting down server..."
	MsgServerExited     = "Server exited"
)

// LoggerOptions 日誌初始化參數
type LoggerOptions struct {
	Level   string
	File    string
	Service string
}

func getEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    customLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05.000"))
}

// 統一級別顯示長度並加上顏色
func customLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	level := l.String()
	switch l {
	case zapcore.DebugLevel:
		level = "DBG"
	case zapcore.InfoLevel:
		level = "INF"
	case zapcore.WarnLevel:
		level = "WRN"
	case zapcore.ErrorLevel:
		level = "ERR"
	case zapcore.FatalLevel:
		level = "FAT"
	}
	enc.AppendString(levelColors[l] + level + resetColor)
}

// ParseLevel 解析日誌級別，未知值回傳 info
func ParseLevel(logLevel string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(logLevel)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// InitLogger 初始化日誌系統
func InitLogger(opts LoggerOptions) error {
	level := ParseLevel(opts.Level)

	// 讀取 LOG_MODE（必須在 .env 載入後）
	LogMode = os.Getenv("LOG_MODE")

	if opts.File == "" {
		opts.File = "logs/app.log"
	}
	if opts.Service == "" {
		opts.Service = "recipe-share"
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logFile, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(getEncoderConfig()),
		zapcore.AddSync(logFile),
		level,
	)
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(getEncoderConfig()),
		zapcore.AddSync(os.Stdout),
		level,
	)

	Logger = zap.New(zapcore.NewTee(fileCore, consoleCore),
		zap.AddCallerSkip(1),
		zap.Fields(zap.String("service", opts.Service)),
	)
	zap.ReplaceGlobals(Logger)

	return nil
}

// filterFields 過濾敏感欄位
func filterFields(fields []zap.Field) []zap.Field {
	filtered := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		if isSensitiveKey(field.Key) {
			continue
		}
		filtered = append(filtered, field)
	}
	return filtered
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}

// LogInfo 記錄信息日誌
func LogInfo(msg string, fields ...zap.Field) {
	if LogMode == "concise" && !conciseMessages[msg] {
		return
	}
	Logger.Info(msg, filterFields(fields)...)
}

// LogError 記錄錯誤日誌
func LogError(msg string, fields ...zap.Field) {
	Logger.Error(msg, filterFields(fields)...)
}

// LogWarn 記錄警告日誌
func LogWarn(msg string, fields ...zap.Field) {
	Logger.Warn(msg, filterFields(fields)...)
}

// LogDebug 記錄調試日誌
func LogDebug(msg string, fields ...zap.Field) {
	Logger.Debug(msg, filterFields(fields)...)
}

// LogFatal 記錄致命錯誤日誌
func LogFatal(msg string, fields ...zap.Field) {
	Logger.Fatal(msg, fields...)
}

// Sync 同步日誌緩衝
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// LogCacheHit 記錄快取命中
func LogCacheHit(cacheType, key string) {
	LogDebug("快取命中", zap.String("類型", cacheType), zap.String("鍵", key))
}

// LogCacheMiss 記錄快取未命中
func LogCacheMiss(cacheType, key string) {
	LogDebug("快取未命中", zap.String("類型", cacheType), zap.String("鍵", key))
}

// LogQuery 記錄資料查詢
func LogQuery(operation string, duration time.Duration, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("operation", operation), zap.Duration("耗時", duration))
	if err != nil {
		LogError("資料查詢失敗", append(fields, zap.Error(err))...)
		return
	}
	LogDebug("資料查詢完成", fields...)
}
