package types

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrEmptyIngredient = errors.New("ingredient name must not be empty")

// Ingredient is a user-entered ingredient, owned by a single session
type Ingredient struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewIngredient trims name and assigns a fresh identifier
func NewIngredient(name string) (Ingredient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Ingredient{}, ErrEmptyIngredient
	}
	return Ingredient{ID: uuid.NewString(), Name: name}, nil
}

// IngredientNames returns the names in list order
func IngredientNames(ingredients []Ingredient) []string {
	names := make([]string, len(ingredients))
	for i, ing := range ingredients {
		names[i] = ing.Name
	}
	return names
}
