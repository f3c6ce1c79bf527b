// Package metrics 提供 Prometheus 指標：API 請求、搜尋、資料查詢與快取
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API 請求
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_share_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_share_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recipe_share_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_share_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	APIDuplicateRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipe_share_api_duplicate_requests_total",
			Help: "Total number of rejected duplicate write requests",
		},
	)

	// 搜尋
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_share_search_requests_total",
			Help: "Total number of search operations",
		},
		[]string{"kind", "sort_by", "result"},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_share_search_duration_seconds",
			Help:    "Search operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	SearchResultSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipe_share_search_matched_recipes",
			Help:    "Number of recipes matched before pagination",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	// 資料查詢
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_share_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_share_db_query_errors_total",
			Help: "Total number of database query errors",
		},
		[]string{"operation"},
	)

	// 快取
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_share_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"backend"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_share_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"backend"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_share_cache_evictions_total",
			Help: "Total number of evicted cache entries",
		},
		[]string{"backend"},
	)
)

// RecordAPIRequest 記錄 API 請求
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest 追蹤處理中的請求數
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit 記錄被限流的請求
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordDuplicateRequest 記錄被拒絕的重複請求
func RecordDuplicateRequest() {
	APIDuplicateRequests.Inc()
}

// RecordSearch 記錄一次搜尋，kind 為 text、user、category 或 feed
func RecordSearch(kind, sortBy string, matched int, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	SearchRequestsTotal.WithLabelValues(kind, sortBy, result).Inc()
	SearchDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if err == nil {
		SearchResultSize.Observe(float64(matched))
	}
}

// RecordDBQuery 記錄資料查詢
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordCacheHit 記錄快取命中
func RecordCacheHit(backend string) {
	CacheHits.WithLabelValues(backend).Inc()
}

// RecordCacheMiss 記錄快取未命中
func RecordCacheMiss(backend string) {
	CacheMisses.WithLabelValues(backend).Inc()
}

// RecordCacheEvictions 記錄淘汰的快取筆數
func RecordCacheEvictions(backend string, n int) {
	if n > 0 {
		CacheEvictions.WithLabelValues(backend).Add(float64(n))
	}
}
