package api

import (
	"github.com/pageza/ai-recipe-generator/backend/internal/service"
	"github.com/pageza/ai-recipe-generator/backend/internal/session"
	"github.com/pageza/ai-recipe-generator/backend/internal/types"
)

// AddIngredientRequest is the body of POST /sessions/:id/ingredients
type AddIngredientRequest struct {
	Name string `json:"name" binding:"required"`
}

// SubstitutionsRequest is the body of POST /sessions/:id/substitutions
type SubstitutionsRequest struct {
	Ingredient string `json:"ingredient" binding:"required"`
}

// SubstitutionsResponse lists replacement suggestions for one ingredient
type SubstitutionsResponse struct {
	Ingredient    string   `json:"ingredient"`
	Substitutions []string `json:"substitutions"`
}

// ToggleDietaryRequest is the body of POST /sessions/:id/filters/dietary
type ToggleDietaryRequest struct {
	Preference string `json:"preference" binding:"required"`
}

// SetViewRequest is the body of PUT /sessions/:id/view
type SetViewRequest struct {
	View types.View `json:"view" binding:"required"`
}

// SetCredentialRequest is the body of PUT /credential
type SetCredentialRequest struct {
	APIKey string `json:"api_key"`
}

// CredentialResponse reports whether an API key is active and where it came from
type CredentialResponse struct {
	Configured bool                     `json:"configured"`
	Source     service.CredentialSource `json:"source"`
}

// SessionResponse is a session snapshot plus whether its current recipe is a favorite
type SessionResponse struct {
	session.State
	IsFavorite bool `json:"isFavorite"`
}

// FavoritesResponse lists the stored recipes
type FavoritesResponse struct {
	Recipes []types.Recipe `json:"recipes"`
	Count   int            `json:"count"`
}

// ServingsRange is the allowed servings interval
type ServingsRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// OptionsResponse lists the choices a client can offer
type OptionsResponse struct {
	DietaryOptions []string            `json:"dietaryOptions"`
	CookingTimes   []types.CookingTime `json:"cookingTimes"`
	Difficulties   []types.Difficulty  `json:"difficulties"`
	Servings       ServingsRange       `json:"servings"`
	Defaults       types.RecipeFilters `json:"defaults"`
}
