package recipe

import (
	"recipe-share/internal/core/model"
	"recipe-share/internal/core/search"
)

// SearchInput 搜尋參數，頁碼與筆數保留原始字串，由服務正規化
type SearchInput struct {
	Query     string
	Page      string
	Limit     string
	SortBy    string
	SortOrder string
}

func (in SearchInput) options() search.Options {
	return search.Options{
		Page:      search.ParsePage(in.Page),
		Limit:     search.ParseLimit(in.Limit),
		SortBy:    search.NormalizeSortBy(in.SortBy),
		SortOrder: search.NormalizeSortOrder(in.SortOrder),
	}
}

// FeedResult 動態牆結果
type FeedResult struct {
	Recipes    []model.Recipe `json:"recipes"`
	NextCursor *uint          `json:"next_cursor"`
	HasMore    bool           `json:"has_more"`
}

// Detail 食譜詳情
type Detail struct {
	model.Recipe
	AvgRating   float64 `json:"avg_rating"`
	ReviewCount int     `json:"review_count"`
}

func newDetail(r *model.Recipe) *Detail {
	ratings := make([]float64, len(r.Reviews))
	for i, rv := range r.Reviews {
		ratings[i] = rv.Rating
	}
	return &Detail{
		Recipe:      *r,
		AvgRating:   search.AverageRating(ratings),
		ReviewCount: len(r.Reviews),
	}
}

// RecipeInput 建立或更新食譜的內容
type RecipeInput struct {
	UserID          uint           `json:"-"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	ImageURL        string         `json:"image_url"`
	PreparationTime *int           `json:"preparation_time"`
	CookingTime     *int           `json:"cooking_time"`
	Servings        *int           `json:"servings"`
	Sections        []SectionInput `json:"sections"`
	Steps           []StepInput    `json:"steps"` // 更新時為 nil 表示不變動步驟
	Tags            []string       `json:"tags"`
}

// SectionInput 食材分組
type SectionInput struct {
	Name        string            `json:"name"`
	Ingredients []IngredientInput `json:"ingredients"`
}

// IngredientInput 食材
type IngredientInput struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity"`
	Unit     string   `json:"unit"`
}

// StepInput 步驟，順序由陣列位置決定
type StepInput struct {
	Instruction string `json:"instruction"`
}

// ReviewInput 評論內容
type ReviewInput struct {
	UserID   uint    `json:"-"`
	Text     string  `json:"review_text"`
	Rating   float64 `json:"rating"`
	ImageURL string  `json:"image_url"`
}
