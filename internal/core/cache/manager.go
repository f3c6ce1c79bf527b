package cache

import (
	"context"
	"sync"
	"time"

	"recipe-share/internal/infrastructure/config"
	"recipe-share/internal/metrics"
	"recipe-share/internal/pkg/common"

	"go.uber.org/zap"
)

const backendMemory = "memory"

// Manager 記憶體快取，具 TTL 與 LRU 淘汰
type Manager struct {
	maxSize int
	ttl     time.Duration

	mu    sync.Mutex
	store map[string]cacheEntry
	stats cacheStats
	now   func() time.Time

	stop    chan struct{}
	stopped sync.Once
}

// cacheEntry 快取條目
type cacheEntry struct {
	value       []byte
	expiresAt   time.Time
	createdAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// cacheStats 快取統計
type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
	errors    int64
}

// NewManager 創建記憶體快取管理器並啟動過期清理
func NewManager(cfg config.CacheConfig) *Manager {
	m := newManager(cfg, time.Now)

	if cfg.CleanupInterval > 0 {
		go m.startCleanup(cfg.CleanupInterval)
	}

	common.LogInfo("快取管理員已初始化",
		zap.Int("最大容量", cfg.MaxSize),
		zap.Duration("存活時間", cfg.TTL),
		zap.Duration("清理間隔", cfg.CleanupInterval),
	)

	return m
}

func newManager(cfg config.CacheConfig, now func() time.Time) *Manager {
	return &Manager{
		maxSize: cfg.MaxSize,
		ttl:     cfg.TTL,
		store:   make(map[string]cacheEntry),
		now:     now,
		stop:    make(chan struct{}),
	}
}

// Get 取得快取值
func (m *Manager) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.store[key]
	if !exists {
		m.stats.misses++
		metrics.RecordCacheMiss(backendMemory)
		common.LogCacheMiss(backendMemory, key)
		return nil, common.ErrCacheMiss
	}

	now := m.now()
	if now.After(entry.expiresAt) {
		delete(m.store, key)
		m.stats.evictions++
		m.stats.misses++
		metrics.RecordCacheEvictions(backendMemory, 1)
		metrics.RecordCacheMiss(backendMemory)
		common.LogDebug("快取已過期", zap.String("鍵", key))
		return nil, common.ErrCacheMiss
	}

	entry.lastAccess = now
	entry.accessCount++
	m.store[key] = entry
	m.stats.hits++

	metrics.RecordCacheHit(backendMemory)
	common.LogCacheHit(backendMemory, key)
	return entry.value, nil
}

// Set 設定快取值，容量滿時先清過期再以 LRU 淘汰
func (m *Manager) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.store[key]; !exists && len(m.store) >= m.maxSize {
		evicted := m.cleanup()
		if evicted > 0 {
			common.LogDebug("快取清理執行", zap.Int("清理數量", evicted))
		}

		if len(m.store) >= m.maxSize {
			m.evictLRU()
		}

		if len(m.store) >= m.maxSize {
			m.stats.errors++
			common.LogWarn("快取已滿", zap.Int("目前容量", len(m.store)))
			return common.ErrCacheFull
		}
	}

	now := m.now()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.store[key] = cacheEntry{
		value:      stored,
		expiresAt:  now.Add(m.ttl),
		createdAt:  now,
		lastAccess: now,
	}

	common.LogDebug("快取已儲存", zap.String("鍵", key))
	return nil
}

// Delete 移除快取值
func (m *Manager) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.store, key)
	}
	return nil
}

// startCleanup 定期清理過期快取，直到 Close
func (m *Manager) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			count := m.cleanup()
			size := len(m.store)
			m.mu.Unlock()

			if count > 0 {
				common.LogDebug("已清理過期快取",
					zap.Int("count", count),
					zap.Int("remaining_size", size),
				)
			}
		case <-m.stop:
			return
		}
	}
}

// cleanup 清理過期條目，呼叫端需持有鎖
func (m *Manager) cleanup() int {
	now := m.now()
	count := 0

	for key, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, key)
			count++
		}
	}

	m.stats.evictions += int64(count)
	metrics.RecordCacheEvictions(backendMemory, count)
	return count
}

// evictLRU 淘汰存取次數最少且最久未使用的條目，呼叫端需持有鎖
func (m *Manager) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, entry := range m.store {
		if oldestKey == "" ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
		metrics.RecordCacheEvictions(backendMemory, 1)
		common.LogDebug("快取已淘汰(LRU)", zap.String("鍵", oldestKey))
	}
}

// Stats 取得快取統計
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Stats{
		Backend:   backendMemory,
		Size:      len(m.store),
		MaxSize:   m.maxSize,
		Hits:      m.stats.hits,
		Misses:    m.stats.misses,
		Evictions: m.stats.evictions,
		Errors:    m.stats.errors,
		HitRatio:  hitRatio(m.stats.hits, m.stats.misses),
	}
}

// Close 停止清理並清空快取，可重複呼叫
func (m *Manager) Close() error {
	m.stopped.Do(func() { close(m.stop) })

	m.mu.Lock()
	defer m.mu.Unlock()

	m.store = make(map[string]cacheEntry)
	common.LogInfo("快取管理員已關閉",
		zap.Int64("命中次數", m.stats.hits),
		zap.Int64("未命中次數", m.stats.misses),
		zap.Int64("淘汰次數", m.stats.evictions),
	)
	return nil
}
