// Package health 健康、就緒與存活檢查
package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"recipe-share/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 單一依賴檢查的期限
const checkTimeout = 2 * time.Second

// Checker 外部依賴的健康檢查
type Checker interface {
	Name() string
	HealthCheck(ctx context.Context) error
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
}

// ReadinessResponse 就緒檢查響應
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Handler 健康檢查處理程序
type Handler struct {
	version  string
	checkers []Checker
}

// NewHandler 創建健康檢查處理程序
func NewHandler(version string, checkers ...Checker) *Handler {
	return &Handler{version: version, checkers: checkers}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 逐一檢查依賴，任一失敗回傳 503
func (h *Handler) ReadinessCheck(c *gin.Context) {
	resp := ReadinessResponse{Status: "ready", Checks: make(map[string]string, len(h.checkers))}
	status := http.StatusOK

	for _, checker := range h.checkers {
		ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
		err := checker.HealthCheck(ctx)
		cancel()

		if err != nil {
			common.LogWarn("依賴檢查失敗", zap.String("checker", checker.Name()), zap.Error(err))
			resp.Checks[checker.Name()] = "unavailable"
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[checker.Name()] = "ok"
	}

	c.JSON(status, resp)
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
