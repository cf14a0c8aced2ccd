package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/ai-recipe-generator/backend/internal/types"
)

// MockRecipeGenerator is a mock implementation of the recipe generator
type MockRecipeGenerator struct {
	mock.Mock
}

// GenerateRecipe mocks the GenerateRecipe method
func (m *MockRecipeGenerator) GenerateRecipe(ctx context.Context, ingredients []types.Ingredient, filters types.RecipeFilters) (*types.Recipe, error) {
	args := m.Called(ctx, ingredients, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Recipe), args.Error(1)
}

// GenerateSubstitutions mocks the GenerateSubstitutions method
func (m *MockRecipeGenerator) GenerateSubstitutions(ctx context.Context, ingredient string) ([]string, error) {
	args := m.Called(ctx, ingredient)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockFavoritesStore is a mock implementation of the favorites store
type MockFavoritesStore struct {
	mock.Mock
}

// Save mocks the Save method
func (m *MockFavoritesStore) Save(ctx context.Context, recipe types.Recipe) error {
	args := m.Called(ctx, recipe)
	return args.Error(0)
}

// Remove mocks the Remove method
func (m *MockFavoritesStore) Remove(ctx context.Context, recipeID string) error {
	args := m.Called(ctx, recipeID)
	return args.Error(0)
}

// List mocks the List method
func (m *MockFavoritesStore) List(ctx context.Context) ([]types.Recipe, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Recipe), args.Error(1)
}

// Get mocks the Get method
func (m *MockFavoritesStore) Get(ctx context.Context, recipeID string) (*types.Recipe, bool, error) {
	args := m.Called(ctx, recipeID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*types.Recipe), args.Bool(1), args.Error(2)
}
