package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"recipe-share/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Timeout 為請求設定期限；處理器尚未回應時逾時回傳 504
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", d),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, common.ErrorResponse{
				Code:    common.ErrCodeRequestTimeout,
				Message: "Request timeout",
			})
		}
	}
}
