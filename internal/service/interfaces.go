package service

import (
	"context"

	"github.com/pageza/ai-recipe-generator/backend/internal/types"
)

// RecipeGenerator defines the interface for model-backed recipe operations
type RecipeGenerator interface {
	GenerateRecipe(ctx context.Context, ingredients []types.Ingredient, filters types.RecipeFilters) (*types.Recipe, error)
	GenerateSubstitutions(ctx context.Context, ingredient string) ([]string, error)
}

// CredentialManager defines the interface for API key operations
type CredentialManager interface {
	Set(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Source() CredentialSource
	Configured() bool
}

var _ CredentialManager = (*Credentials)(nil)
