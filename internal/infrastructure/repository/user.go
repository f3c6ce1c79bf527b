package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recipe-share/internal/core/model"
	"recipe-share/internal/pkg/common"

	"gorm.io/gorm"
)

// UserRepository PostgreSQL 使用者、追蹤與收藏資料存取
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository 創建使用者資料存取
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID 取得使用者
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &user, nil
}

// Follow 建立追蹤關係，已追蹤時回傳 common.ErrAlreadyFollow
func (r *UserRepository) Follow(ctx context.Context, followerID, followingID uint) (err error) {
	defer func(start time.Time) { observe("follows.create", start, err) }(time.Now())

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.UserFollow{}).
			Where("follower_id = ? AND following_id = ?", followerID, followingID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check follow: %w", err)
		}
		if count > 0 {
			return common.ErrAlreadyFollow
		}

		follow := model.UserFollow{FollowerID: followerID, FollowingID: followingID}
		if err := tx.Create(&follow).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return common.ErrAlreadyFollow
			}
			return fmt.Errorf("failed to follow user: %w", err)
		}
		return nil
	})
}

// Unfollow 移除追蹤關係，未追蹤時不視為錯誤
func (r *UserRepository) Unfollow(ctx context.Context, followerID, followingID uint) (err error) {
	defer func(start time.Time) { observe("follows.delete", start, err) }(time.Now())

	err = r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&model.UserFollow{}).Error
	if err != nil {
		return fmt.Errorf("failed to unfollow user: %w", err)
	}
	return nil
}

// Followers 追蹤此使用者的人
func (r *UserRepository) Followers(ctx context.Context, userID uint) ([]model.UserSummary, error) {
	users := []model.UserSummary{}
	err := r.db.WithContext(ctx).
		Select("users.id", "users.username", "users.profile_picture").
		Joins("JOIN user_follows f ON f.follower_id = users.id").
		Where("f.following_id = ?", userID).
		Order("f.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}
	return users, nil
}

// Following 此使用者追蹤的人
func (r *UserRepository) Following(ctx context.Context, userID uint) ([]model.UserSummary, error) {
	users := []model.UserSummary{}
	err := r.db.WithContext(ctx).
		Select("users.id", "users.username", "users.profile_picture").
		Joins("JOIN user_follows f ON f.following_id = users.id").
		Where("f.follower_id = ?", userID).
		Order("f.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list following: %w", err)
	}
	return users, nil
}

// CountFollows 取得追蹤者與追蹤中人數
func (r *UserRepository) CountFollows(ctx context.Context, userID uint) (followers, following int64, err error) {
	db := r.db.WithContext(ctx).Model(&model.UserFollow{})
	if err = db.Where("following_id = ?", userID).Count(&followers).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count followers: %w", err)
	}
	db = r.db.WithContext(ctx).Model(&model.UserFollow{})
	if err = db.Where("follower_id = ?", userID).Count(&following).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count following: %w", err)
	}
	return followers, following, nil
}

// ToggleFavorite 切換收藏，回傳是否為新增
func (r *UserRepository) ToggleFavorite(ctx context.Context, userID, recipeID uint) (added bool, err error) {
	defer func(start time.Time) { observe("favorites.toggle", start, err) }(time.Now())

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&model.UserFavorite{})
		if res.Error != nil {
			return fmt.Errorf("failed to remove favorite: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			return nil
		}

		if err := tx.Create(&model.UserFavorite{UserID: userID, RecipeID: recipeID}).Error; err != nil {
			return fmt.Errorf("failed to add favorite: %w", err)
		}
		added = true
		return nil
	})
	return added, err
}

// Favorites 收藏的食譜摘要，最新收藏在前
func (r *UserRepository) Favorites(ctx context.Context, userID uint) ([]model.RecipeSummary, error) {
	var recipes []model.Recipe
	err := r.db.WithContext(ctx).
		Select("recipes.id", "recipes.user_id", "recipes.title", "recipes.description", "recipes.image_url", "recipes.created_at").
		Joins("JOIN user_favorites fav ON fav.recipe_id = recipes.id").
		Where("fav.user_id = ?", userID).
		Preload("User", selectUserSummary).
		Order("fav.created_at DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	summaries := make([]model.RecipeSummary, len(recipes))
	for i := range recipes {
		summaries[i] = recipes[i].Summary()
	}
	return summaries, nil
}
