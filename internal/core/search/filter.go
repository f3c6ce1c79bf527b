// Package search 實作食譜搜尋：條件建構、擷取與平均評分計算、排序與分頁
package search

import (
	"strings"

	"recipe-share/internal/core/model"
)

// Filter 食譜篩選條件，只有 TextMatch、OwnerScope、CategoryMatch 三種
type Filter interface {
	isFilter()
}

// TextMatch 標題、描述、任一食材名稱或任一標籤名稱包含關鍵字（不分大小寫）
type TextMatch struct {
	Query string
}

// OwnerScope 限定某位使用者的食譜
type OwnerScope struct {
	UserID uint
}

// CategoryMatch 任一食材名稱（不分大小寫）等於其中一個關鍵字。
// 關鍵字為空時不符合任何食譜。
type CategoryMatch struct {
	Keywords []string
}

func (TextMatch) isFilter()     {}
func (OwnerScope) isFilter()    {}
func (CategoryMatch) isFilter() {}

// Criteria 搜尋條件輸入，未提供的欄位不加入篩選
type Criteria struct {
	Query    string
	OwnerID  uint
	Category *string
}

// BuildFilters 將搜尋條件轉成以 AND 組合的篩選列表
func BuildFilters(c Criteria) []Filter {
	var filters []Filter
	if c.OwnerID != 0 {
		filters = append(filters, OwnerScope{UserID: c.OwnerID})
	}
	if q := strings.TrimSpace(c.Query); q != "" {
		filters = append(filters, TextMatch{Query: q})
	}
	if c.Category != nil {
		filters = append(filters, CategoryMatch{Keywords: Keywords(*c.Category)})
	}
	return filters
}

// Matches 在記憶體中評估篩選列表，所有條件皆須符合
func Matches(r *model.Recipe, filters []Filter) bool {
	for _, f := range filters {
		if !matchOne(r, f) {
			return false
		}
	}
	return true
}

func matchOne(r *model.Recipe, f Filter) bool {
	switch f := f.(type) {
	case TextMatch:
		return matchText(r, strings.ToLower(f.Query))
	case OwnerScope:
		return r.UserID == f.UserID
	case CategoryMatch:
		return matchCategory(r, f.Keywords)
	default:
		return false
	}
}

func matchText(r *model.Recipe, q string) bool {
	if strings.Contains(strings.ToLower(r.Title), q) || strings.Contains(strings.ToLower(r.Description), q) {
		return true
	}
	for _, s := range r.Sections {
		for _, ing := range s.Ingredients {
			if strings.Contains(strings.ToLower(ing.Name), q) {
				return true
			}
		}
	}
	for _, t := range r.Tags {
		if strings.Contains(strings.ToLower(t.Name), q) {
			return true
		}
	}
	return false
}

func matchCategory(r *model.Recipe, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	for _, s := range r.Sections {
		for _, ing := range s.Ingredients {
			for _, kw := range keywords {
				if strings.EqualFold(ing.Name, kw) {
					return true
				}
			}
		}
	}
	return false
}
