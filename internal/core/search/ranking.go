package search

import (
	"sort"
	"strconv"
	"strings"

	"recipe-share/internal/core/model"
)

// 排序欄位與方向
const (
	SortByCreatedAt = "createdAt"
	SortByTitle     = "title"
	SortByRating    = "rating"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// 分頁限制
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MinLimit     = 1
	MaxLimit     = 50
)

// Options 排序與分頁參數
type Options struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// RankedRecipe 附帶平均評分的食譜
type RankedRecipe struct {
	model.Recipe
	AvgRating float64 `json:"avg_rating"`
}

// Pagination 分頁資訊
type Pagination struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

// Result 搜尋結果
type Result struct {
	Recipes    []RankedRecipe `json:"recipes"`
	Pagination Pagination     `json:"pagination"`
}

// NormalizeSortBy 不支援的欄位回落到 createdAt
func NormalizeSortBy(sortBy string) string {
	switch sortBy {
	case SortByCreatedAt, SortByTitle, SortByRating:
		return sortBy
	default:
		return SortByCreatedAt
	}
}

// NormalizeSortOrder 不支援的方向回落到 desc
func NormalizeSortOrder(order string) string {
	switch order {
	case SortAsc, SortDesc:
		return order
	default:
		return SortDesc
	}
}

// ClampPage 頁碼最小為 1
func ClampPage(page int) int {
	if page < DefaultPage {
		return DefaultPage
	}
	return page
}

// ClampLimit 每頁筆數限制在 [1, 50]
func ClampLimit(limit int) int {
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ParsePage 解析頁碼字串，空值或非數字回傳 1
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultPage
	}
	return ClampPage(page)
}

// ParseLimit 解析每頁筆數字串，空值或非數字回傳 10
func ParseLimit(raw string) int {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultLimit
	}
	return ClampLimit(limit)
}

// NormalizeOptions 修正超出範圍或不支援的參數
func NormalizeOptions(opts Options) Options {
	return Options{
		Page:      ClampPage(opts.Page),
		Limit:     ClampLimit(opts.Limit),
		SortBy:    NormalizeSortBy(opts.SortBy),
		SortOrder: NormalizeSortOrder(opts.SortOrder),
	}
}

// AverageRating 計算平均評分，沒有評分時為 0
func AverageRating(ratings []float64) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum float64
	for _, r := range ratings {
		sum += r
	}
	return sum / float64(len(ratings))
}

// Annotate 為每筆食譜計算平均評分
func Annotate(recipes []model.Recipe) []RankedRecipe {
	ranked := make([]RankedRecipe, len(recipes))
	for i := range recipes {
		ranked[i] = RankedRecipe{
			Recipe:    recipes[i],
			AvgRating: AverageRating(recipes[i].RatingValues()),
		}
	}
	return ranked
}

// Sort 穩定排序，鍵值相同時保留擷取順序
func Sort(ranked []RankedRecipe, sortBy, order string) {
	less := lessFunc(ranked, NormalizeSortBy(sortBy))
	if NormalizeSortOrder(order) == SortDesc {
		sort.SliceStable(ranked, func(i, j int) bool { return less(j, i) })
		return
	}
	sort.SliceStable(ranked, less)
}

func lessFunc(ranked []RankedRecipe, sortBy string) func(i, j int) bool {
	switch sortBy {
	case SortByRating:
		return func(i, j int) bool { return ranked[i].AvgRating < ranked[j].AvgRating }
	case SortByTitle:
		return func(i, j int) bool { return ranked[i].Title < ranked[j].Title }
	default:
		return func(i, j int) bool { return ranked[i].CreatedAt.Before(ranked[j].CreatedAt) }
	}
}

// Paginate 切出指定頁，頁碼超出範圍時回傳空列表
func Paginate(ranked []RankedRecipe, page, limit int) *Result {
	page = ClampPage(page)
	limit = ClampLimit(limit)
	total := len(ranked)

	// 先比較頁碼避免極大頁碼相乘溢位
	start, end := total, total
	if page-1 <= total/limit {
		start = min((page-1)*limit, total)
		end = min(start+limit, total)
	}

	recipes := make([]RankedRecipe, end-start)
	copy(recipes, ranked[start:end])

	return &Result{
		Recipes: recipes,
		Pagination: Pagination{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: (total + limit - 1) / limit,
			HasMore:    page <= total/limit && page*limit < total,
		},
	}
}
