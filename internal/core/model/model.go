// Package model 定義持久化實體與查詢投影
package model

import "time"

// User 使用者帳號
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Username       string    `json:"username" gorm:"uniqueIndex;not null"`
	Email          string    `json:"-" gorm:"uniqueIndex;not null"`
	PasswordHash   string    `json:"-" gorm:"column:password;not null"`
	ProfilePicture string    `json:"profile_picture"`
	Bio            string    `json:"bio"`
	CreatedAt      time.Time `json:"created_at"`
}

// UserSummary 使用者公開摘要，只含 id、名稱與頭像
type UserSummary struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture"`
}

func (UserSummary) TableName() string { return "users" }

// Summary 取得使用者摘要
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, ProfilePicture: u.ProfilePicture}
}

// Recipe 食譜
type Recipe struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	UserID          uint      `json:"user_id" gorm:"not null;index"`
	Title           string    `json:"title" gorm:"not null"`
	Description     string    `json:"description" gorm:"not null"`
	ImageURL        string    `json:"image_url"`
	PreparationTime int       `json:"preparation_time"`
	CookingTime     int       `json:"cooking_time"`
	Servings        int       `json:"servings"`
	CreatedAt       time.Time `json:"created_at" gorm:"index"`

	User     *UserSummary   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Sections []Section      `json:"sections" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Steps    []Step         `json:"steps" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Tags     []Tag          `json:"tags" gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
	Ratings  []ReviewRating `json:"ratings,omitempty" gorm:"foreignKey:RecipeID"`
	Reviews  []Review       `json:"reviews,omitempty" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`

	CommentCount int64 `json:"comment_count" gorm:"-"`
}

// Section 食材分組
type Section struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	RecipeID    uint         `json:"recipe_id" gorm:"not null;index"`
	Name        string       `json:"name" gorm:"not null"`
	Ingredients []Ingredient `json:"ingredients" gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE"`
}

// Ingredient 食材
type Ingredient struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	SectionID uint    `json:"section_id" gorm:"not null;index"`
	Name      string  `json:"name" gorm:"not null"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
}

// Step 料理步驟，OrderNumber 從 1 開始連續
type Step struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	RecipeID    uint   `json:"recipe_id" gorm:"not null;index"`
	OrderNumber int    `json:"order_number" gorm:"not null"`
	Instruction string `json:"instruction" gorm:"not null"`
}

// Tag 標籤
type Tag struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

// RecipeTag 食譜與標籤的關聯
type RecipeTag struct {
	RecipeID uint `gorm:"primaryKey"`
	TagID    uint `gorm:"primaryKey"`
}

func (RecipeTag) TableName() string { return "recipe_tags" }

// Review 評論
type Review struct {
	ID         uint         `json:"id" gorm:"primaryKey"`
	RecipeID   uint         `json:"recipe_id" gorm:"not null;index"`
	UserID     uint         `json:"user_id" gorm:"not null;index"`
	ReviewText string       `json:"review_text"`
	Rating     float64      `json:"rating"`
	ImageURL   string       `json:"image_url,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	User       *UserSummary `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// ReviewRating 評論的評分投影，搜尋時只載入這個欄位
type ReviewRating struct {
	RecipeID uint    `json:"-"`
	Rating   float64 `json:"rating"`
}

func (ReviewRating) TableName() string { return "reviews" }

// Comment 留言
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	RecipeID  uint      `json:"recipe_id" gorm:"not null;index"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Content   string    `json:"content" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFollow 追蹤關係
type UserFollow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"not null;uniqueIndex:idx_follow_pair"`
	FollowingID uint      `json:"following_id" gorm:"not null;uniqueIndex:idx_follow_pair"`
	CreatedAt   time.Time `json:"created_at"`
}

func (UserFollow) TableName() string { return "user_follows" }

// UserFavorite 收藏
type UserFavorite struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_favorite_pair"`
	RecipeID  uint      `json:"recipe_id" gorm:"not null;uniqueIndex:idx_favorite_pair"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserFavorite) TableName() string { return "user_favorites" }

// RecipeSummary 收藏列表用的食譜摘要
type RecipeSummary struct {
	ID          uint         `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	ImageURL    string       `json:"image_url"`
	CreatedAt   time.Time    `json:"created_at"`
	User        *UserSummary `json:"user,omitempty"`
}

// Summary 取得食譜摘要
func (r Recipe) Summary() RecipeSummary {
	return RecipeSummary{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		CreatedAt:   r.CreatedAt,
		User:        r.User,
	}
}

// RatingValues 取得評分列表
func (r Recipe) RatingValues() []float64 {
	values := make([]float64, 0, len(r.Ratings))
	for _, rt := range r.Ratings {
		values = append(values, rt.Rating)
	}
	return values
}
