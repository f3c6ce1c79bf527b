// Package handlers HTTP 處理器共用的請求與回應工具
package handlers

import (
	"errors"
	"net/http"

	"recipe-share/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestID 取得請求 ID，沒有時產生一個並寫回回應標頭
func RequestID(c *gin.Context) string {
	if id := requestid.Get(c); id != "" {
		return id
	}
	if id := c.GetHeader("X-Request-ID"); id != "" {
		c.Header("X-Request-ID", id)
		return id
	}
	id := common.GenerateUUID()
	c.Header("X-Request-ID", id)
	return id
}

// ParamID 解析路徑中的正整數 id，失敗時直接回應 400
func ParamID(c *gin.Context, name string) (uint, bool) {
	id, ok := common.ParseID(c.Param(name))
	if !ok {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeValidation,
			Message: "invalid " + name,
		})
		return 0, false
	}
	return id, true
}

// BadRequest 回應無法解析的請求內容
func BadRequest(c *gin.Context, err error) {
	common.LogWarn("請求格式無效", zap.Error(err), zap.String("request_id", RequestID(c)))

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		c.JSON(http.StatusRequestEntityTooLarge, common.ErrorResponse{
			Code:    common.ErrCodeTooLarge,
			Message: "Request body too large",
		})
		return
	}

	resp := common.ErrorResponse{Code: common.ErrCodeInvalidRequest, Message: "Invalid request format"}
	if gin.Mode() == gin.DebugMode {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

// Error 依錯誤類型回應對應的狀態碼；details 只在 debug 模式輸出
func Error(c *gin.Context, err error) {
	status, code := common.StatusOf(err)
	resp := common.ErrorResponse{Code: code, Message: common.MessageOf(err)}
	if gin.Mode() == gin.DebugMode {
		resp.Details = err.Error()
	}

	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", status),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", RequestID(c)),
	}
	if status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogDebug("請求被拒絕", fields...)
	}

	_ = c.Error(err)
	c.JSON(status, resp)
}
