package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/ai-recipe-generator/backend/internal/types"
)

const (
	DefaultModel = "gpt-3.5-turbo"

	recipeTemperature       = 0.8
	recipeMaxTokens         = 1500
	substitutionTemperature = 0.7
	substitutionMaxTokens   = 200
)

// RecipeServiceOption configures the RecipeService.
type RecipeServiceOption func(*RecipeService)

// WithModel sets the chat model name.
func WithModel(model string) RecipeServiceOption {
	return func(s *RecipeService) {
		if model != "" {
			s.model = model
		}
	}
}

// WithClock replaces the clock used for CreatedAt.
func WithClock(now func() time.Time) RecipeServiceOption {
	return func(s *RecipeService) { s.now = now }
}

// WithIDGenerator replaces the recipe id generator.
func WithIDGenerator(newID func() string) RecipeServiceOption {
	return func(s *RecipeService) { s.newID = newID }
}

// RecipeService turns ingredients and filters into recipes using a chat model
type RecipeService struct {
	chat  Completer
	creds *Credentials
	model string
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

var _ RecipeGenerator = (*RecipeService)(nil)

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(chat Completer, creds *Credentials, log *zap.Logger, opts ...RecipeServiceOption) *RecipeService {
	s := &RecipeService{
		chat:  chat,
		creds: creds,
		model: DefaultModel,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GenerateRecipe asks the model for one recipe built from ingredients and
// constrained by filters. Failures are returned as *GenerationError.
func (s *RecipeService) GenerateRecipe(ctx context.Context, ingredients []types.Ingredient, filters types.RecipeFilters) (*types.Recipe, error) {
	apiKey, ok := s.creds.Value()
	if !ok {
		return nil, newGenerationError(ErrNotConfigured, nil)
	}
	names := compact(types.IngredientNames(ingredients))
	if len(names) == 0 {
		return nil, newGenerationError(ErrNoIngredients, nil)
	}
	filters = filters.Normalize()
	if err := filters.Validate(); err != nil {
		return nil, newGenerationError(types.ErrInvalidFilters, err)
	}

	log := s.log.With(
		zap.Strings("ingredients", names),
		zap.String("difficulty", string(filters.Difficulty)),
		zap.Int("servings", filters.Servings),
	)
	log.Info("generating recipe")

	content, err := s.chat.Complete(ctx, apiKey, CompletionRequest{
		Model: s.model,
		Messages: []Message{
			{Role: RoleSystem, Content: recipeSystemPrompt},
			{Role: RoleUser, Content: buildRecipePrompt(names, filters)},
		},
		Temperature: recipeTemperature,
		MaxTokens:   recipeMaxTokens,
	})
	if err != nil {
		genErr := classifyFailure(err)
		log.Error("recipe generation failed", zap.Error(err), zap.String("kind", genErr.Kind.Error()))
		return nil, genErr
	}

	payload, err := parseRecipePayload(content)
	if err != nil {
		log.Error("recipe response rejected", zap.Error(err), zap.Int("chars", len(content)))
		return nil, newGenerationError(ErrInvalidResponse, err)
	}

	recipe := &types.Recipe{
		ID:              s.newID(),
		Title:           payload.Title,
		Description:     strings.TrimSpace(payload.Description),
		Ingredients:     payload.Ingredients,
		Instructions:    payload.Instructions,
		PrepTime:        payload.PrepTime,
		CookTime:        payload.CookTime,
		TotalTime:       payload.TotalTime,
		Difficulty:      filters.Difficulty,
		Servings:        filters.Servings,
		NutritionalInfo: payload.NutritionalInfo.toNutritionalInfo(),
		Tags:            compact(payload.Tags),
		CreatedAt:       s.now(),
	}

	if payload.Difficulty != "" && !strings.EqualFold(payload.Difficulty, string(filters.Difficulty)) {
		log.Warn("model difficulty overridden", zap.String("model_difficulty", payload.Difficulty))
	}
	if payload.Servings.Set && payload.Servings.Value != filters.Servings {
		log.Warn("model servings overridden", zap.Int("model_servings", payload.Servings.Value))
	}

	log.Info("recipe generated", zap.String("recipe_id", recipe.ID), zap.String("title", recipe.Title))
	return recipe, nil
}

// GenerateSubstitutions asks for up to five replacements for ingredient. Only
// a missing API key is reported; any other failure yields an empty list.
func (s *RecipeService) GenerateSubstitutions(ctx context.Context, ingredient string) ([]string, error) {
	apiKey, ok := s.creds.Value()
	if !ok {
		return nil, newGenerationError(ErrNotConfigured, nil)
	}
	ingredient = strings.TrimSpace(ingredient)
	if ingredient == "" {
		return []string{}, nil
	}

	log := s.log.With(zap.String("ingredient", ingredient))
	content, err := s.chat.Complete(ctx, apiKey, CompletionRequest{
		Model: s.model,
		Messages: []Message{
			{Role: RoleSystem, Content: substitutionSystemPrompt},
			{Role: RoleUser, Content: buildSubstitutionPrompt(ingredient)},
		},
		Temperature: substitutionTemperature,
		MaxTokens:   substitutionMaxTokens,
	})
	if err != nil {
		log.Warn("substitution request failed", zap.Error(err))
		return []string{}, nil
	}

	subs, err := parseSubstitutions(content)
	if err != nil {
		if !errors.Is(err, ErrEmptyResponse) {
			log.Warn("substitution response rejected", zap.Error(err))
		}
		return []string{}, nil
	}
	log.Debug("substitutions generated", zap.Int("count", len(subs)))
	return subs, nil
}
