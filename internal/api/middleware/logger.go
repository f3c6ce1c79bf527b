package middleware

import (
	"net/http"
	"time"

	"recipe-share/internal/metrics"
	"recipe-share/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger 日誌中間件，同時記錄請求指標
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		method := c.Request.Method

		// 以路由樣板作為指標標籤，避免 id 造成高基數
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RecordAPIRequest(method, endpoint, status, latency)

		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.String("user-agent", c.Request.UserAgent()),
			zap.Duration("latency", latency),
			zap.String("request_id", requestid.Get(c)),
		}

		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		switch {
		case status >= 500:
			common.LogError("伺服器錯誤",
				append(fields, zap.String("error_type", "server_error"))...,
			)
		case status >= 400:
			common.LogWarn("用戶端錯誤",
				append(fields, zap.String("error_type", "client_error"))...,
			)
		case status >= 300:
			common.LogInfo("重新導向",
				append(fields, zap.String("error_type", "redirect"))...,
			)
		default:
			common.LogInfo(common.MsgRequestCompleted, fields...)
		}
	}
}

// Recovery 恢復中間件
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				common.LogError("Panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, common.ErrorResponse{
					Code:    common.ErrCodeInternalError,
					Message: "Internal server error",
				})
			}
		}()

		c.Next()
	}
}
