// Package cache 提供食譜詳情的快取：記憶體與 Redis 兩種後端
package cache

import (
	"context"
	"errors"
	"fmt"

	"recipe-share/internal/pkg/common"
)

// Store 快取後端，未命中時回傳 common.ErrCacheMiss
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Stats 快取統計
type Stats struct {
	Backend   string  `json:"backend"`
	Size      int     `json:"size"`
	MaxSize   int     `json:"max_size"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Errors    int64   `json:"errors"`
	HitRatio  float64 `json:"hit_ratio"`
}

// RecipeKey 食譜詳情的快取鍵
func RecipeKey(id uint) string {
	return fmt.Sprintf("recipe:%d", id)
}

// IsMiss 判斷是否為未命中
func IsMiss(err error) bool {
	return errors.Is(err, common.ErrCacheMiss)
}

// GetJSON 取出並解析 JSON 值
func GetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := common.ParseJSONBytes(data, v); err != nil {
		// 損壞的條目直接移除
		_ = s.Delete(ctx, key)
		return fmt.Errorf("failed to decode cache entry %s: %w", key, err)
	}
	return nil
}

// SetJSON 序列化後寫入
func SetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	data, err := common.ToJSONBytes(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}

func hitRatio(hits, misses int64) float64 {
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

// Nop 停用快取時使用，永遠未命中
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, error) { return nil, common.ErrCacheMiss }
func (Nop) Set(context.Context, string, []byte) error   { return nil }
func (Nop) Delete(context.Context, ...string) error     { return nil }
func (Nop) Close() error                                { return nil }
