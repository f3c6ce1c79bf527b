package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"recipe-share/internal/metrics"
	"recipe-share/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// 閒置超過此時間的 IP 限流器會被清除
const limiterIdleTTL = time.Hour

// RateLimiter 以 IP 為單位的令牌桶限流器
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	window   time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewRateLimiter 創建新的限流器，每個 IP 在 window 內最多 requests 次
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
		window:   window,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

// Allow 檢查此 IP 是否允許請求
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	now := rl.now()
	entry, ok := rl.limiters[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[ip] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	rl.mu.Unlock()

	return limiter.AllowN(now, 1)
}

// StartCleanup 定期移除閒置的限流器，直到 Stop 被呼叫
func (rl *RateLimiter) StartCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-rl.stop:
				return
			}
		}
	}()
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	threshold := rl.now().Add(-limiterIdleTTL)
	for ip, entry := range rl.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(rl.limiters, ip)
		}
	}
}

// Stop 停止清理 goroutine，可重複呼叫
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// RateLimit 限流中間件
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			endpoint := c.FullPath()
			metrics.RecordRateLimitHit(endpoint)
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", int(limiter.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Code:    common.ErrCodeTooManyRequests,
				Message: "Too many requests",
			})
			return
		}

		c.Next()
	}
}
