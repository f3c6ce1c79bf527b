package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"recipe-share/internal/metrics"
	"recipe-share/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 預設去重時間窗
const defaultDedupWindow = time.Second

// Deduplicator 拒絕時間窗內重複的寫入請求
type Deduplicator struct {
	mu       sync.Mutex
	seen     map[string]time.Time
	window   time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

// NewDeduplicator 創建去重器，window <= 0 時使用預設值
func NewDeduplicator(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = defaultDedupWindow
	}
	return &Deduplicator{
		seen:   make(map[string]time.Time),
		window: window,
		now:    time.Now,
		stop:   make(chan struct{}),
	}
}

// StartCleanup 定期清除過期指紋
func (d *Deduplicator) StartCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				d.cleanup()
			case <-d.stop:
				return
			}
		}
	}()
}

func (d *Deduplicator) cleanup() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for k, t := range d.seen {
		if now.Sub(t) > 10*d.window {
			delete(d.seen, k)
		}
	}
}

// Stop 停止清理 goroutine，可重複呼叫
func (d *Deduplicator) Stop() {
	d.stopOnce.Do(func() { close(d.stop) })
}

// seenRecently 記錄指紋並回傳是否在時間窗內出現過
func (d *Deduplicator) seenRecently(fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if last, ok := d.seen[fingerprint]; ok && now.Sub(last) <= d.window {
		return true
	}
	d.seen[fingerprint] = now
	return false
}

// Deduplication 請求去重中間件，只處理 POST
func Deduplication(d *Deduplicator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				c.Next()
				return
			}

			hash := sha256.Sum256(body)
			bodyHash = hex.EncodeToString(hash[:])

			// 恢復請求體
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		// 請求指紋：方法、路徑、來源與內容
		fingerprint := c.Request.Method + ":" + c.Request.URL.Path + ":" + c.ClientIP()
		if bodyHash != "" {
			fingerprint += ":" + bodyHash
		}

		if d.seenRecently(fingerprint) {
			metrics.RecordDuplicateRequest()
			common.LogWarn("重複請求",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Code:    common.ErrCodeTooManyRequests,
				Message: "Request too frequent",
			})
			return
		}

		c.Next()
	}
}
