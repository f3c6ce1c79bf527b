// Package recipe 食譜服務：搜尋、動態牆、食譜維護與評論
package recipe

import (
	"context"

	"recipe-share/internal/core/cache"
	"recipe-share/internal/core/model"
	"recipe-share/internal/core/search"
	"recipe-share/internal/pkg/common"

	"go.uber.org/zap"
)

// Repository 食譜資料存取
type Repository interface {
	search.RecipeFinder

	// FindFeed 依建立時間由新到舊取得 cursor 之後最多 limit 筆，cursor 為 0 表示從頭開始
	FindFeed(ctx context.Context, cursor uint, limit int) ([]model.Recipe, error)
	FindByID(ctx context.Context, id uint) (*model.Recipe, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, recipe *model.Recipe, tagNames []string) error
	Update(ctx context.Context, recipe *model.Recipe, replaceSteps bool) error
	Delete(ctx context.Context, id uint) error
	CreateReview(ctx context.Context, review *model.Review) error
}

// Service 食譜服務
type Service struct {
	repo     Repository
	searcher *search.Searcher
	cache    cache.Store
}

// NewService 創建新的食譜服務，store 為 nil 時不快取
func NewService(repo Repository, store cache.Store) *Service {
	if store == nil {
		store = cache.Nop{}
	}
	return &Service{
		repo:     repo,
		searcher: search.NewSearcher(repo),
		cache:    store,
	}
}

// getFromCache 從快取取得食譜詳情
func (s *Service) getFromCache(ctx context.Context, id uint) (*Detail, bool) {
	var detail Detail
	err := cache.GetJSON(ctx, s.cache, cache.RecipeKey(id), &detail)
	if err == nil {
		return &detail, true
	}
	if !cache.IsMiss(err) {
		common.LogWarn("讀取快取失敗", zap.Uint("recipe_id", id), zap.Error(err))
	}
	return nil, false
}

// setToCache 將食譜詳情存入快取，失敗只記錄
func (s *Service) setToCache(ctx context.Context, detail *Detail) {
	if err := cache.SetJSON(ctx, s.cache, cache.RecipeKey(detail.ID), detail); err != nil {
		common.LogWarn("寫入快取失敗", zap.Uint("recipe_id", detail.ID), zap.Error(err))
	}
}

// invalidate 移除食譜詳情快取
func (s *Service) invalidate(ctx context.Context, id uint) {
	if err := s.cache.Delete(ctx, cache.RecipeKey(id)); err != nil {
		common.LogWarn("清除快取失敗", zap.Uint("recipe_id", id), zap.Error(err))
	}
}
