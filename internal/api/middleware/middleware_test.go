package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/ping", ok)
	r.POST("/ping", ok)
	return r
}

func do(r http.Handler, method, body, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/ping", strings.NewReader(body))
	if remote != "" {
		req.RemoteAddr = remote
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	r := newEngine(RateLimit(limiter))

	for i := 0; i < 2; i++ {
		if w := do(r, http.MethodGet, "", "10.0.0.1:1000"); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, w.Code)
		}
	}

	w := do(r, http.MethodGet, "", "10.0.0.1:1000")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", w.Header().Get("Retry-After"))
	}

	if w := do(r, http.MethodGet, "", "10.0.0.2:1000"); w.Code != http.StatusOK {
		t.Errorf("other ip status = %d, want 200", w.Code)
	}

	// 半個時間窗補回一個令牌
	now = now.Add(30 * time.Second)
	if w := do(r, http.MethodGet, "", "10.0.0.1:1000"); w.Code != http.StatusOK {
		t.Errorf("after refill status = %d, want 200", w.Code)
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	limiter := NewRateLimiter(1, time.Second)
	now := time.Now()
	limiter.now = func() time.Time { return now }

	limiter.Allow("1.1.1.1")
	now = now.Add(2 * time.Hour)
	limiter.Allow("2.2.2.2")
	limiter.cleanup()

	if _, ok := limiter.limiters["1.1.1.1"]; ok {
		t.Error("idle limiter should be removed")
	}
	if _, ok := limiter.limiters["2.2.2.2"]; !ok {
		t.Error("active limiter should be kept")
	}
	limiter.Stop()
	limiter.Stop()
}

func TestDeduplication(t *testing.T) {
	d := NewDeduplicator(time.Second)
	now := time.Now()
	d.now = func() time.Time { return now }
	r := newEngine(Deduplication(d))

	if w := do(r, http.MethodPost, `{"a":1}`, ""); w.Code != http.StatusOK {
		t.Fatalf("first post status = %d", w.Code)
	}
	if w := do(r, http.MethodPost, `{"a":1}`, ""); w.Code != http.StatusTooManyRequests {
		t.Errorf("duplicate post status = %d, want 429", w.Code)
	}
	if w := do(r, http.MethodPost, `{"a":2}`, ""); w.Code != http.StatusOK {
		t.Errorf("different body status = %d, want 200", w.Code)
	}
	for i := 0; i < 2; i++ {
		if w := do(r, http.MethodGet, "", ""); w.Code != http.StatusOK {
			t.Errorf("get status = %d, gets are never deduplicated", w.Code)
		}
	}

	now = now.Add(2 * time.Second)
	if w := do(r, http.MethodPost, `{"a":1}`, ""); w.Code != http.StatusOK {
		t.Errorf("post after window status = %d, want 200", w.Code)
	}
}

func TestBodySizeLimit(t *testing.T) {
	r := newEngine(BodySizeLimit(8))

	if w := do(r, http.MethodPost, "small", ""); w.Code != http.StatusOK {
		t.Errorf("small body status = %d", w.Code)
	}
	if w := do(r, http.MethodPost, strings.Repeat("x", 64), ""); w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("large body status = %d, want 413", w.Code)
	}
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
	if w.Code != http.StatusGatewayTimeout {
		t.Errorf("slow status = %d, want 504", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fast", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("fast status = %d, want 204", w.Code)
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), "INTERNAL_ERROR") {
		t.Errorf("panic response = %d %s", w.Code, w.Body.String())
	}
}
