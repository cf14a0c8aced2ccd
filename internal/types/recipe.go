package types

import (
	"time"
)

// NutritionalInfo is the optional per-serving breakdown returned by the model.
// Every field is independently optional.
type NutritionalInfo struct {
	Calories *float64 `json:"calories,omitempty"`
	Protein  *string  `json:"protein,omitempty"`
	Carbs    *string  `json:"carbs,omitempty"`
	Fat      *string  `json:"fat,omitempty"`
	Fiber    *string  `json:"fiber,omitempty"`
}

// Recipe represents a generated recipe
type Recipe struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Ingredients     []string         `json:"ingredients"`
	Instructions    []string         `json:"instructions"`
	PrepTime        string           `json:"prepTime"`
	CookTime        string           `json:"cookTime"`
	TotalTime       string           `json:"totalTime"`
	Difficulty      Difficulty       `json:"difficulty"`
	Servings        int              `json:"servings"`
	NutritionalInfo *NutritionalInfo `json:"nutritionalInfo,omitempty"`
	Tags            []string         `json:"tags"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// LoadingState tracks the generation lifecycle of a session
type LoadingState string

const (
	LoadingIdle    LoadingState = "idle"
	LoadingLoading LoadingState = "loading"
	LoadingSuccess LoadingState = "success"
	LoadingError   LoadingState = "error"
)

// View is the tab a session is currently showing
type View string

const (
	ViewGenerator View = "generator"
	ViewFavorites View = "favorites"
)

// Valid reports whether v is a known view
func (v View) Valid() bool {
	return v == ViewGenerator || v == ViewFavorites
}
