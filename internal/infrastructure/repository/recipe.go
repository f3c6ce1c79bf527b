// Package repository 實作食譜與使用者的資料存取：PostgreSQL（GORM）與記憶體兩種
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"recipe-share/internal/core/model"
	"recipe-share/internal/core/search"
	"recipe-share/internal/metrics"
	"recipe-share/internal/pkg/common"

	"gorm.io/gorm"
)

const (
	ingredientExists = `EXISTS (SELECT 1 FROM sections s JOIN ingredients i ON i.section_id = s.id WHERE s.recipe_id = recipes.id AND LOWER(i.name) %s)`
	tagExists        = `EXISTS (SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id WHERE rt.recipe_id = recipes.id AND LOWER(t.name) %s)`
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// RecipeRepository PostgreSQL 食譜資料存取
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository 創建食譜資料存取
func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// ApplyFilters 將搜尋條件轉成 SQL 條件，多個條件之間為 AND
func ApplyFilters(q *gorm.DB, filters []search.Filter) *gorm.DB {
	for _, f := range filters {
		switch f := f.(type) {
		case search.OwnerScope:
			q = q.Where("recipes.user_id = ?", f.UserID)
		case search.TextMatch:
			pattern := "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(f.Query))) + "%"
			q = q.Where(
				"(LOWER(recipes.title) LIKE ? OR LOWER(recipes.description) LIKE ? OR "+
					fmt.Sprintf(ingredientExists, "LIKE ?")+" OR "+
					fmt.Sprintf(tagExists, "LIKE ?")+")",
				pattern, pattern, pattern, pattern,
			)
		case search.CategoryMatch:
			if len(f.Keywords) == 0 {
				q = q.Where("1 = 0")
				continue
			}
			keywords := make([]string, len(f.Keywords))
			for i, kw := range f.Keywords {
				keywords[i] = strings.ToLower(kw)
			}
			q = q.Where(fmt.Sprintf(ingredientExists, "IN ?"), keywords)
		}
	}
	return q
}

func selectUserSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "profile_picture")
}

// withListing 列表與搜尋共用的關聯載入
func withListing(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Sections", func(db *gorm.DB) *gorm.DB { return db.Order("sections.id ASC") }).
		Preload("Sections.Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("ingredients.id ASC") }).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("steps.order_number ASC") }).
		Preload("User", selectUserSummary).
		Preload("Tags").
		Preload("Ratings", func(db *gorm.DB) *gorm.DB { return db.Select("recipe_id", "rating") })
}

func observe(operation string, start time.Time, err error) {
	duration := time.Since(start)
	metrics.RecordDBQuery(operation, duration, err)
	common.LogQuery(operation, duration, err)
}

// FindRecipes 取得全部符合條件的食譜，依 id 遞增
func (r *RecipeRepository) FindRecipes(ctx context.Context, filters []search.Filter) (recipes []model.Recipe, err error) {
	defer func(start time.Time) { observe("recipes.find", start, err) }(time.Now())

	q := ApplyFilters(r.db.WithContext(ctx).Model(&model.Recipe{}), filters)
	if err = withListing(q).Order("recipes.id ASC").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to find recipes: %w", err)
	}
	if err = r.attachCommentCounts(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// FindFeed 依建立時間由新到舊取得 cursor 之後的食譜。
// cursor 為 0 時從最新開始；cursor 不存在時回傳空列表。
func (r *RecipeRepository) FindFeed(ctx context.Context, cursor uint, limit int) (recipes []model.Recipe, err error) {
	defer func(start time.Time) { observe("recipes.feed", start, err) }(time.Now())

	q := r.db.WithContext(ctx).Model(&model.Recipe{})
	if cursor != 0 {
		var anchor model.Recipe
		err = r.db.WithContext(ctx).Select("id", "created_at").First(&anchor, cursor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []model.Recipe{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load feed cursor: %w", err)
		}
		q = q.Where("(recipes.created_at < ? OR (recipes.created_at = ? AND recipes.id < ?))",
			anchor.CreatedAt, anchor.CreatedAt, anchor.ID)
	}

	err = withListing(q).
		Order("recipes.created_at DESC").
		Order("recipes.id DESC").
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recipe feed: %w", err)
	}
	if err = r.attachCommentCounts(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// FindByID 取得食譜詳情，包含評論與評論者
func (r *RecipeRepository) FindByID(ctx context.Context, id uint) (recipe *model.Recipe, err error) {
	defer func(start time.Time) { observe("recipes.get", start, err) }(time.Now())

	var found model.Recipe
	err = r.db.WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB { return db.Order("sections.id ASC") }).
		Preload("Sections.Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("ingredients.id ASC") }).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("steps.order_number ASC") }).
		Preload("User", selectUserSummary).
		Preload("Tags").
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("reviews.created_at DESC") }).
		Preload("Reviews.User", selectUserSummary).
		First(&found, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrRecipeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe %d: %w", id, err)
	}

	recipes := []model.Recipe{found}
	if err = r.attachCommentCounts(ctx, recipes); err != nil {
		return nil, err
	}
	return &recipes[0], nil
}

// Exists 檢查食譜是否存在
func (r *RecipeRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check recipe %d: %w", id, err)
	}
	return count > 0, nil
}

// Create 在同一個交易內建立食譜、分組、食材、步驟與標籤
func (r *RecipeRepository) Create(ctx context.Context, recipe *model.Recipe, tagNames []string) (err error) {
	defer func(start time.Time) { observe("recipes.create", start, err) }(time.Now())

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := upsertTags(tx, tagNames)
		if err != nil {
			return err
		}
		recipe.Tags = tags

		if err := tx.Create(recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		return nil
	})
	return err
}

// Update 更新食譜欄位；replaceSteps 為 true 時以 recipe.Steps 取代全部步驟
func (r *RecipeRepository) Update(ctx context.Context, recipe *model.Recipe, replaceSteps bool) (err error) {
	defer func(start time.Time) { observe("recipes.update", start, err) }(time.Now())

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Recipe{}).Where("id = ?", recipe.ID).Updates(map[string]interface{}{
			"title":            recipe.Title,
			"description":      recipe.Description,
			"image_url":        recipe.ImageURL,
			"preparation_time": recipe.PreparationTime,
			"cooking_time":     recipe.CookingTime,
			"servings":         recipe.Servings,
		})
		if res.Error != nil {
			return fmt.Errorf("failed to update recipe %d: %w", recipe.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return common.ErrRecipeNotFound
		}

		if !replaceSteps {
			return nil
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&model.Step{}).Error; err != nil {
			return fmt.Errorf("failed to delete steps of recipe %d: %w", recipe.ID, err)
		}
		if len(recipe.Steps) == 0 {
			return nil
		}
		for i := range recipe.Steps {
			recipe.Steps[i].ID = 0
			recipe.Steps[i].RecipeID = recipe.ID
		}
		if err := tx.Create(&recipe.Steps).Error; err != nil {
			return fmt.Errorf("failed to create steps of recipe %d: %w", recipe.ID, err)
		}
		return nil
	})
	return err
}

// Delete 刪除食譜，關聯資料由資料庫串聯刪除
func (r *RecipeRepository) Delete(ctx context.Context, id uint) (err error) {
	defer func(start time.Time) { observe("recipes.delete", start, err) }(time.Now())

	res := r.db.WithContext(ctx).Delete(&model.Recipe{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete recipe %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrRecipeNotFound
	}
	return nil
}

// CreateReview 建立評論並帶回評論者摘要
func (r *RecipeRepository) CreateReview(ctx context.Context, review *model.Review) (err error) {
	defer func(start time.Time) { observe("reviews.create", start, err) }(time.Now())

	db := r.db.WithContext(ctx)
	if err = db.Create(review).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	var user model.UserSummary
	if err = selectUserSummary(db).First(&user, review.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load review author: %w", err)
	}
	review.User = &user
	return nil
}

// upsertTags 依名稱取得或建立標籤，忽略空白與重複名稱
func upsertTags(tx *gorm.DB, names []string) ([]model.Tag, error) {
	seen := make(map[string]bool, len(names))
	tags := make([]model.Tag, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		var tag model.Tag
		if err := tx.Where(model.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
			return nil, fmt.Errorf("failed to upsert tag %q: %w", name, err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

type commentCount struct {
	RecipeID uint
	Count    int64
}

// attachCommentCounts 以一次分組查詢補上留言數
func (r *RecipeRepository) attachCommentCounts(ctx context.Context, recipes []model.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	ids := make([]uint, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
	}

	var rows []commentCount
	err := r.db.WithContext(ctx).
		Model(&model.Comment{}).
		Select("recipe_id, COUNT(*) AS count").
		Where("recipe_id IN ?", ids).
		Group("recipe_id").
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to count comments: %w", err)
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.RecipeID] = row.Count
	}
	for i := range recipes {
		recipes[i].CommentCount = counts[recipes[i].ID]
	}
	return nil
}
