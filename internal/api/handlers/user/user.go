// Package user 使用者社群功能的 HTTP 處理器
package user

import (
	"net/http"

	"recipe-share/internal/api/handlers"
	userService "recipe-share/internal/core/user"

	"github.com/gin-gonic/gin"
)

// Handler 使用者處理程序
type Handler struct {
	users *userService.Service
}

// NewHandler 創建新的使用者處理程序
func NewHandler(users *userService.Service) *Handler {
	return &Handler{users: users}
}

// Register 註冊使用者路由
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/:userId/profile", h.HandleProfile)
	rg.POST("/:userId/follow/:targetId", h.HandleFollow)
	rg.DELETE("/:userId/follow/:targetId", h.HandleUnfollow)
	rg.GET("/:userId/followers", h.HandleFollowers)
	rg.GET("/:userId/following", h.HandleFollowing)
	rg.POST("/:userId/favorites/:recipeId", h.HandleToggleFavorite)
	rg.GET("/:userId/favorites", h.HandleFavorites)
}

// HandleProfile 公開個人頁
func (h *Handler) HandleProfile(c *gin.Context) {
	userID, ok := handlers.ParamID(c, "userId")
	if !ok {
		return
	}
	profile, err := h.users.PublicProfile(c.Request.Context(), userID)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func pair(c *gin.Context, second string) (uint, uint, bool) {
	first, ok := handlers.ParamID(c, "userId")
	if !ok {
		return 0, 0, false
	}
	other, ok := handlers.ParamID(c, second)
	if !ok {
		return 0, 0, false
	}
	return first, other, true
}

// HandleFollow 追蹤使用者
func (h *Handler) HandleFollow(c *gin.Context) {
	userID, targetID, ok := pair(c, "targetId")
	if !ok {
		return
	}
	if err := h.users.Follow(c.Request.Context(), userID, targetID); err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Followed successfully"})
}

// HandleUnfollow 取消追蹤
func (h *Handler) HandleUnfollow(c *gin.Context) {
	userID, targetID, ok := pair(c, "targetId")
	if !ok {
		return
	}
	if err := h.users.Unfollow(c.Request.Context(), userID, targetID); err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed successfully"})
}

// HandleFollowers 追蹤者列表
func (h *Handler) HandleFollowers(c *gin.Context) {
	userID, ok := handlers.ParamID(c, "userId")
	if !ok {
		return
	}
	users, err := h.users.Followers(c.Request.Context(), userID)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// HandleFollowing 追蹤中列表
func (h *Handler) HandleFollowing(c *gin.Context) {
	userID, ok := handlers.ParamID(c, "userId")
	if !ok {
		return
	}
	users, err := h.users.Following(c.Request.Context(), userID)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// HandleToggleFavorite 切換收藏
func (h *Handler) HandleToggleFavorite(c *gin.Context) {
	userID, recipeID, ok := pair(c, "recipeId")
	if !ok {
		return
	}
	status, err := h.users.ToggleFavorite(c.Request.Context(), userID, recipeID)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// HandleFavorites 收藏列表
func (h *Handler) HandleFavorites(c *gin.Context) {
	userID, ok := handlers.ParamID(c, "userId")
	if !ok {
		return
	}
	recipes, err := h.users.Favorites(c.Request.Context(), userID)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}
