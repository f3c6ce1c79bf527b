// Package user 使用者社群功能：追蹤、收藏與公開個人頁
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recipe-share/internal/core/model"
	"recipe-share/internal/pkg/common"

	"go.uber.org/zap"
)

// 收藏切換結果
const (
	FavoriteAdded   = "added"
	FavoriteRemoved = "removed"
)

// Repository 使用者資料存取
type Repository interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
	Follow(ctx context.Context, followerID, followingID uint) error
	Unfollow(ctx context.Context, followerID, followingID uint) error
	Followers(ctx context.Context, userID uint) ([]model.UserSummary, error)
	Following(ctx context.Context, userID uint) ([]model.UserSummary, error)
	CountFollows(ctx context.Context, userID uint) (followers, following int64, err error)
	ToggleFavorite(ctx context.Context, userID, recipeID uint) (bool, error)
	Favorites(ctx context.Context, userID uint) ([]model.RecipeSummary, error)
}

// RecipeChecker 確認食譜存在
type RecipeChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// Profile 公開個人頁
type Profile struct {
	model.UserSummary
	Bio            string    `json:"bio"`
	CreatedAt      time.Time `json:"created_at"`
	FollowerCount  int64     `json:"follower_count"`
	FollowingCount int64     `json:"following_count"`
}

// Service 使用者服務
type Service struct {
	users   Repository
	recipes RecipeChecker
}

// NewService 創建新的使用者服務
func NewService(users Repository, recipes RecipeChecker) *Service {
	return &Service{users: users, recipes: recipes}
}

// Follow 追蹤使用者；不可追蹤自己，重複追蹤回傳衝突
func (s *Service) Follow(ctx context.Context, followerID, followingID uint) error {
	if err := validatePair(followerID, followingID, "cannot follow yourself"); err != nil {
		return err
	}
	if err := s.ensureUser(ctx, followerID); err != nil {
		return err
	}
	if err := s.ensureUser(ctx, followingID); err != nil {
		return err
	}

	if err := s.users.Follow(ctx, followerID, followingID); err != nil {
		return wrap("failed to follow user", err)
	}
	common.LogInfo("已追蹤使用者", zap.Uint("follower_id", followerID), zap.Uint("following_id", followingID))
	return nil
}

// Unfollow 取消追蹤；關係不存在時視為成功
func (s *Service) Unfollow(ctx context.Context, followerID, followingID uint) error {
	if err := validatePair(followerID, followingID, "cannot unfollow yourself"); err != nil {
		return err
	}
	if err := s.users.Unfollow(ctx, followerID, followingID); err != nil {
		return wrap("failed to unfollow user", err)
	}
	common.LogInfo("已取消追蹤", zap.Uint("follower_id", followerID), zap.Uint("following_id", followingID))
	return nil
}

// Followers 追蹤此使用者的人
func (s *Service) Followers(ctx context.Context, userID uint) ([]model.UserSummary, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.users.Followers(ctx, userID)
	if err != nil {
		return nil, wrap("failed to list followers", err)
	}
	return users, nil
}

// Following 此使用者追蹤的人
func (s *Service) Following(ctx context.Context, userID uint) ([]model.UserSummary, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.users.Following(ctx, userID)
	if err != nil {
		return nil, wrap("failed to list following", err)
	}
	return users, nil
}

// ToggleFavorite 切換收藏狀態，回傳 added 或 removed
func (s *Service) ToggleFavorite(ctx context.Context, userID, recipeID uint) (string, error) {
	if userID == 0 || recipeID == 0 {
		return "", common.NewValidationError("user ID and recipe ID are required")
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return "", err
	}

	exists, err := s.recipes.Exists(ctx, recipeID)
	if err != nil {
		return "", wrap("failed to toggle favorite", err)
	}
	if !exists {
		return "", common.ErrRecipeNotFound
	}

	added, err := s.users.ToggleFavorite(ctx, userID, recipeID)
	if err != nil {
		return "", wrap("failed to toggle favorite", err)
	}

	status := FavoriteRemoved
	if added {
		status = FavoriteAdded
	}
	common.LogInfo("收藏已更新", zap.Uint("user_id", userID), zap.Uint("recipe_id", recipeID), zap.String("status", status))
	return status, nil
}

// Favorites 收藏的食譜
func (s *Service) Favorites(ctx context.Context, userID uint) ([]model.RecipeSummary, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	recipes, err := s.users.Favorites(ctx, userID)
	if err != nil {
		return nil, wrap("failed to list favorites", err)
	}
	return recipes, nil
}

// PublicProfile 公開個人頁，不含 email 與密碼
func (s *Service) PublicProfile(ctx context.Context, userID uint) (*Profile, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrap("failed to load profile", err)
	}

	followers, following, err := s.users.CountFollows(ctx, userID)
	if err != nil {
		return nil, wrap("failed to load profile", err)
	}

	return &Profile{
		UserSummary:    u.Summary(),
		Bio:            u.Bio,
		CreatedAt:      u.CreatedAt,
		FollowerCount:  followers,
		FollowingCount: following,
	}, nil
}

func (s *Service) ensureUser(ctx context.Context, id uint) error {
	if id == 0 {
		return common.NewValidationError("user ID is required")
	}
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return wrap("failed to load user", err)
	}
	return nil
}

func validatePair(followerID, followingID uint, selfMessage string) error {
	if followerID == 0 || followingID == 0 {
		return common.NewValidationError("user IDs are required")
	}
	if followerID == followingID {
		return common.NewValidationError(selfMessage)
	}
	return nil
}

// wrap 保留預定義錯誤，其他錯誤附加描述
func wrap(message string, err error) error {
	var ce *common.CustomError
	if errors.As(err, &ce) {
		return err
	}
	return fmt.Errorf("%s: %w", message, err)
}
