package recipe

import (
	"fmt"
	"strings"

	"recipe-share/internal/pkg/common"
)

// validateRecipe 驗證食譜內容，回傳第一個錯誤
func validateRecipe(in RecipeInput) error {
	if strings.TrimSpace(in.Description) == "" {
		return common.NewValidationError("recipe description is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return common.NewValidationError("recipe title is required")
	}

	if in.PreparationTime != nil && *in.PreparationTime < 0 {
		return common.NewValidationError("preparation time must be a positive number")
	}
	if in.CookingTime != nil && *in.CookingTime < 0 {
		return common.NewValidationError("cooking time must be a positive number")
	}
	if in.Servings != nil && *in.Servings <= 0 {
		return common.NewValidationError("servings must be a positive number")
	}

	for i, step := range in.Steps {
		if strings.TrimSpace(step.Instruction) == "" {
			return common.NewValidationError(fmt.Sprintf("step %d must have a valid instruction", i+1))
		}
	}

	for i, sec := range in.Sections {
		if strings.TrimSpace(sec.Name) == "" {
			return common.NewValidationError(fmt.Sprintf("section %d must have a valid name", i+1))
		}
		for j, ing := range sec.Ingredients {
			if strings.TrimSpace(ing.Name) == "" {
				return common.NewValidationError(fmt.Sprintf("ingredient %d in section %d must have a valid name", j+1, i+1))
			}
			if ing.Quantity != nil && *ing.Quantity <= 0 {
				return common.NewValidationError(fmt.Sprintf("ingredient %d in section %d must have a valid amount", j+1, i+1))
			}
		}
	}
	return nil
}
