package recipe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recipe-share/internal/core/model"
	"recipe-share/internal/core/search"
	"recipe-share/internal/metrics"
	"recipe-share/internal/pkg/common"

	"go.uber.org/zap"
)

// 搜尋種類，用於指標標籤
const (
	kindText     = "text"
	kindUser     = "user"
	kindCategory = "category"
	kindFeed     = "feed"
)

// SearchRecipes 依關鍵字搜尋所有食譜
func (s *Service) SearchRecipes(ctx context.Context, in SearchInput) (*search.Result, error) {
	return s.search(ctx, kindText, search.Criteria{Query: in.Query}, in)
}

// SearchUserRecipes 搜尋指定使用者的食譜，關鍵字可省略
func (s *Service) SearchUserRecipes(ctx context.Context, userID uint, in SearchInput) (*search.Result, error) {
	if userID == 0 {
		return nil, common.NewValidationError("user ID is required for searching user recipes")
	}
	return s.search(ctx, kindUser, search.Criteria{Query: in.Query, OwnerID: userID}, in)
}

// SearchRecipesByCategory 依食材分類搜尋，未知分類回傳空結果
func (s *Service) SearchRecipesByCategory(ctx context.Context, category string, in SearchInput) (*search.Result, error) {
	category = strings.TrimSpace(category)
	return s.search(ctx, kindCategory, search.Criteria{Category: &category}, in)
}

// Categories 可搜尋的分類名稱
func (s *Service) Categories() []string {
	return search.Categories()
}

func (s *Service) search(ctx context.Context, kind string, criteria search.Criteria, in SearchInput) (*search.Result, error) {
	opts := in.options()

	start := time.Now()
	result, err := s.searcher.Search(ctx, search.BuildFilters(criteria), opts)
	matched := 0
	if result != nil {
		matched = result.Pagination.Total
	}
	metrics.RecordSearch(kind, opts.SortBy, matched, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	common.LogDebug("搜尋完成",
		zap.String("kind", kind),
		zap.String("sort_by", opts.SortBy),
		zap.String("sort_order", opts.SortOrder),
		zap.Int("page", opts.Page),
		zap.Int("limit", opts.Limit),
		zap.Int("total", matched),
	)
	return result, nil
}

// GetRecipeFeed 最新優先的動態牆，以上一頁最後一筆的 id 作為 cursor
func (s *Service) GetRecipeFeed(ctx context.Context, cursor, limit string) (*FeedResult, error) {
	n := search.ParseLimit(limit)

	var after uint
	if raw := strings.TrimSpace(cursor); raw != "" {
		id, ok := common.ParseID(raw)
		if !ok {
			return nil, common.NewValidationError("cursor must be a positive integer")
		}
		after = id
	}

	start := time.Now()
	recipes, err := s.repo.FindFeed(ctx, after, n)
	metrics.RecordSearch(kindFeed, search.SortByCreatedAt, len(recipes), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recipe feed: %w", err)
	}
	if recipes == nil {
		recipes = []model.Recipe{}
	}

	result := &FeedResult{
		Recipes: recipes,
		HasMore: len(recipes) == n,
	}
	if len(recipes) > 0 {
		last := recipes[len(recipes)-1].ID
		result.NextCursor = &last
	}
	return result, nil
}
