// Package recipe 食譜相關的 HTTP 處理器
package recipe

import (
	"net/http"

	"recipe-share/internal/api/handlers"
	recipeService "recipe-share/internal/core/recipe"
	"recipe-share/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreateRecipeRequest 建立食譜請求
type CreateRecipeRequest struct {
	UserID uint `json:"user_id" binding:"required"`
	recipeService.RecipeInput
}

// CreateReviewRequest 新增評論請求
type CreateReviewRequest struct {
	UserID uint `json:"user_id" binding:"required"`
	recipeService.ReviewInput
}

// Handler 食譜處理程序
type Handler struct {
	recipes *recipeService.Service
}

// NewHandler 創建新的食譜處理程序
func NewHandler(recipes *recipeService.Service) *Handler {
	return &Handler{recipes: recipes}
}

// Register 註冊食譜路由
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/feed", h.HandleFeed)
	rg.GET("/search", h.HandleSearch)
	rg.GET("/search/category", h.HandleSearchByCategory)
	rg.GET("/categories", h.HandleCategories)
	rg.GET("/user/:userId/search", h.HandleSearchUserRecipes)

	rg.POST("", h.HandleCreate)
	rg.GET("/:id", h.HandleGet)
	rg.PUT("/:id", h.HandleUpdate)
	rg.DELETE("/:id", h.HandleDelete)
	rg.POST("/:id/reviews", h.HandleCreateReview)
}

func searchInput(c *gin.Context, queryKey string) recipeService.SearchInput {
	return recipeService.SearchInput{
		Query:     c.Query(queryKey),
		Page:      c.Query("page"),
		Limit:     c.Query("limit"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
}

// HandleFeed 最新食譜動態牆
func (h *Handler) HandleFeed(c *gin.Context) {
	result, err := h.recipes.GetRecipeFeed(c.Request.Context(), c.Query("cursor"), c.Query("limit"))
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleSearch 關鍵字搜尋
func (h *Handler) HandleSearch(c *gin.Context) {
	result, err := h.recipes.SearchRecipes(c.Request.Context(), searchInput(c, "query"))
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleSearchByCategory 依食材分類搜尋
func (h *Handler) HandleSearchByCategory(c *gin.Context) {
	result, err := h.recipes.SearchRecipesByCategory(c.Request.Context(), c.Query("category"), searchInput(c, "query"))
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleCategories 可用分類
func (h *Handler) HandleCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.recipes.Categories()})
}

// HandleSearchUserRecipes 搜尋指定使用者的食譜
func (h *Handler) HandleSearchUserRecipes(c *gin.Context) {
	userID, ok := handlers.ParamID(c, "userId")
	if !ok {
		return
	}
	result, err := h.recipes.SearchUserRecipes(c.Request.Context(), userID, searchInput(c, "q"))
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleGet 食譜詳情
func (h *Handler) HandleGet(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	detail, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// HandleCreate 建立食譜
func (h *Handler) HandleCreate(c *gin.Context) {
	requestID := handlers.RequestID(c)

	var req CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}
	in := req.RecipeInput
	in.UserID = req.UserID

	detail, err := h.recipes.CreateRecipe(c.Request.Context(), in)
	if err != nil {
		handlers.Error(c, err)
		return
	}

	common.LogInfo("食譜建立請求完成",
		zap.String("request_id", requestID),
		zap.Uint("recipe_id", detail.ID),
	)
	c.JSON(http.StatusCreated, detail)
}

// HandleUpdate 更新食譜
func (h *Handler) HandleUpdate(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}

	var in recipeService.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	detail, err := h.recipes.UpdateRecipe(c.Request.Context(), id, in)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// HandleDelete 刪除食譜
func (h *Handler) HandleDelete(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.recipes.DeleteRecipe(c.Request.Context(), id); err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted successfully"})
}

// HandleCreateReview 新增評論
func (h *Handler) HandleCreateReview(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}
	in := req.ReviewInput
	in.UserID = req.UserID

	review, err := h.recipes.CreateReview(c.Request.Context(), id, in)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}
