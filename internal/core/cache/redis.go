package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recipe-share/internal/infrastructure/config"
	"recipe-share/internal/metrics"
	"recipe-share/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const backendRedis = "redis"

// RedisStore Redis 快取後端
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisClient 建立 Redis 連線並測試
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis 已連線", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return client, nil
}

// NewRedisStore 以既有連線建立快取後端
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// Get 取得快取值
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(backendRedis)
			common.LogCacheMiss(backendRedis, key)
			return nil, common.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	metrics.RecordCacheHit(backendRedis)
	common.LogCacheHit(backendRedis, key)
	return data, nil
}

// Set 設定快取值
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Delete 移除快取值
func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

// Name 檢查項目名稱
func (s *RedisStore) Name() string { return backendRedis }

// HealthCheck 以 ping 檢查連線
func (s *RedisStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}
