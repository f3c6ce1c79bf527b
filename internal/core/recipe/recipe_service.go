package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"recipe-share/internal/core/model"
	"recipe-share/internal/pkg/common"

	"go.uber.org/zap"
)

// GetRecipe 取得食譜詳情，優先讀取快取
func (s *Service) GetRecipe(ctx context.Context, id uint) (*Detail, error) {
	if detail, ok := s.getFromCache(ctx, id); ok {
		return detail, nil
	}

	recipe, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := newDetail(recipe)
	s.setToCache(ctx, detail)
	return detail, nil
}

// CreateRecipe 建立食譜，步驟依陣列順序重新編號
func (s *Service) CreateRecipe(ctx context.Context, in RecipeInput) (*Detail, error) {
	if in.UserID == 0 {
		return nil, common.NewValidationError("user ID is required")
	}
	if err := validateRecipe(in); err != nil {
		return nil, err
	}

	recipe := buildRecipe(in)
	recipe.UserID = in.UserID
	recipe.Sections = buildSections(in.Sections)
	recipe.Steps = buildSteps(in.Steps)

	if err := s.repo.Create(ctx, &recipe, in.Tags); err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	common.LogInfo("食譜已建立",
		zap.Uint("recipe_id", recipe.ID),
		zap.Uint("user_id", recipe.UserID),
		zap.Int("steps", len(recipe.Steps)),
		zap.Int("sections", len(recipe.Sections)),
	)
	return s.GetRecipe(ctx, recipe.ID)
}

// UpdateRecipe 更新食譜；提供步驟時整批取代並重新編號
func (s *Service) UpdateRecipe(ctx context.Context, id uint, in RecipeInput) (*Detail, error) {
	if err := validateRecipe(in); err != nil {
		return nil, err
	}

	recipe := buildRecipe(in)
	recipe.ID = id
	replaceSteps := in.Steps != nil
	if replaceSteps {
		recipe.Steps = buildSteps(in.Steps)
	}

	err := s.repo.Update(ctx, &recipe, replaceSteps)
	s.invalidate(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrRecipeNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}

	common.LogInfo("食譜已更新", zap.Uint("recipe_id", id), zap.Bool("replace_steps", replaceSteps))
	return s.GetRecipe(ctx, id)
}

// DeleteRecipe 刪除食譜
func (s *Service) DeleteRecipe(ctx context.Context, id uint) error {
	err := s.repo.Delete(ctx, id)
	s.invalidate(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrRecipeNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	common.LogInfo("食譜已刪除", zap.Uint("recipe_id", id))
	return nil
}

// CreateReview 新增評論，不限制評分範圍
func (s *Service) CreateReview(ctx context.Context, recipeID uint, in ReviewInput) (*model.Review, error) {
	if in.UserID == 0 {
		return nil, common.NewValidationError("user ID is required")
	}

	exists, err := s.repo.Exists(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	if !exists {
		return nil, common.ErrRecipeNotFound
	}

	review := model.Review{
		RecipeID:   recipeID,
		UserID:     in.UserID,
		ReviewText: in.Text,
		Rating:     in.Rating,
		ImageURL:   in.ImageURL,
	}
	if err := s.repo.CreateReview(ctx, &review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	s.invalidate(ctx, recipeID)

	common.LogInfo("評論已建立",
		zap.Uint("recipe_id", recipeID),
		zap.Uint("user_id", in.UserID),
		zap.Float64("rating", in.Rating),
	)
	return &review, nil
}

func buildRecipe(in RecipeInput) model.Recipe {
	r := model.Recipe{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		ImageURL:    in.ImageURL,
	}
	if in.PreparationTime != nil {
		r.PreparationTime = *in.PreparationTime
	}
	if in.CookingTime != nil {
		r.CookingTime = *in.CookingTime
	}
	if in.Servings != nil {
		r.Servings = *in.Servings
	}
	return r
}

func buildSections(in []SectionInput) []model.Section {
	sections := make([]model.Section, len(in))
	for i, sec := range in {
		ingredients := make([]model.Ingredient, len(sec.Ingredients))
		for j, ing := range sec.Ingredients {
			ingredients[j] = model.Ingredient{Name: strings.TrimSpace(ing.Name), Unit: ing.Unit}
			if ing.Quantity != nil {
				ingredients[j].Quantity = *ing.Quantity
			}
		}
		sections[i] = model.Section{Name: strings.TrimSpace(sec.Name), Ingredients: ingredients}
	}
	return sections
}

// buildSteps 依陣列位置從 1 開始編號
func buildSteps(in []StepInput) []model.Step {
	steps := make([]model.Step, len(in))
	for i, st := range in {
		steps[i] = model.Step{OrderNumber: i + 1, Instruction: strings.TrimSpace(st.Instruction)}
	}
	return steps
}
