package search

import (
	"context"
	"fmt"
	"time"

	"recipe-share/internal/core/model"
	"recipe-share/internal/pkg/common"

	"go.uber.org/zap"
)

// RecipeFinder 資料存取層：擷取所有符合條件的食譜，
// 需帶出分組與食材、依序的步驟、作者摘要、標籤、評分與留言數
type RecipeFinder interface {
	FindRecipes(ctx context.Context, filters []Filter) ([]model.Recipe, error)
}

// Searcher 搜尋與排名
type Searcher struct {
	finder RecipeFinder
}

// NewSearcher 創建搜尋器
func NewSearcher(finder RecipeFinder) *Searcher {
	return &Searcher{finder: finder}
}

// Search 擷取全部符合的食譜、計算平均評分後排序並分頁。
// 排名涵蓋整個結果集，而不是單一頁。
func (s *Searcher) Search(ctx context.Context, filters []Filter, opts Options) (*Result, error) {
	opts = NormalizeOptions(opts)

	start := time.Now()
	recipes, err := s.finder.FindRecipes(ctx, filters)
	common.LogQuery("find_recipes", time.Since(start), err, zap.Int("filters", len(filters)))
	if err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}

	ranked := Annotate(recipes)
	Sort(ranked, opts.SortBy, opts.SortOrder)

	return Paginate(ranked, opts.Page, opts.Limit), nil
}
