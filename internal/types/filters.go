package types

import (
	"errors"
	"fmt"
	"strings"
)

// CookingTime is one of the fixed cooking-time buckets
type CookingTime string

const (
	CookingUnder15   CookingTime = "Under 15 minutes"
	Cooking15To30    CookingTime = "15-30 minutes"
	Cooking30To60    CookingTime = "30-60 minutes"
	Cooking1To2Hours CookingTime = "1-2 hours"
	CookingOver2     CookingTime = "Over 2 hours"
)

// CookingTimes lists the buckets in display order
var CookingTimes = []CookingTime{CookingUnder15, Cooking15To30, Cooking30To60, Cooking1To2Hours, CookingOver2}

// Difficulty is one of the fixed difficulty levels
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Difficulties lists the levels in display order
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// DietaryOptions are the preferences offered to clients. Free-text preferences
// are accepted as well.
var DietaryOptions = []string{
	"Vegetarian", "Vegan", "Gluten-free", "Dairy-free",
	"Keto", "Paleo", "Low-carb", "High-protein",
}

const (
	MinServings = 1
	MaxServings = 12
)

var ErrInvalidFilters = errors.New("invalid recipe filters")

// RecipeFilters are the user constraints shaping a generation request
type RecipeFilters struct {
	DietaryPreferences []string    `json:"dietaryPreferences"`
	CookingTime        CookingTime `json:"cookingTime"`
	Difficulty         Difficulty  `json:"difficulty"`
	Servings           int         `json:"servings"`
}

// DefaultFilters returns the filters a new session starts with
func DefaultFilters() RecipeFilters {
	return RecipeFilters{
		DietaryPreferences: []string{},
		CookingTime:        Cooking15To30,
		Difficulty:         DifficultyEasy,
		Servings:           4,
	}
}

// Validate reports the first constraint the filters violate
func (f RecipeFilters) Validate() error {
	if !validCookingTime(f.CookingTime) {
		return fmt.Errorf("%w: unknown cooking time %q", ErrInvalidFilters, f.CookingTime)
	}
	if !validDifficulty(f.Difficulty) {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidFilters, f.Difficulty)
	}
	if f.Servings < MinServings || f.Servings > MaxServings {
		return fmt.Errorf("%w: servings must be between %d and %d, got %d", ErrInvalidFilters, MinServings, MaxServings, f.Servings)
	}
	return nil
}

// Normalize trims and deduplicates the dietary preferences, keeping first
// occurrence order. Comparison is case-insensitive.
func (f RecipeFilters) Normalize() RecipeFilters {
	seen := make(map[string]struct{}, len(f.DietaryPreferences))
	prefs := make([]string, 0, len(f.DietaryPreferences))
	for _, p := range f.DietaryPreferences {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		prefs = append(prefs, p)
	}
	f.DietaryPreferences = prefs
	return f
}

// Toggle flips a dietary preference on or off
func (f RecipeFilters) Toggle(pref string) RecipeFilters {
	out := make([]string, 0, len(f.DietaryPreferences)+1)
	removed := false
	for _, p := range f.DietaryPreferences {
		if strings.EqualFold(p, pref) {
			removed = true
			continue
		}
		out = append(out, p)
	}
	if !removed {
		out = append(out, pref)
	}
	f.DietaryPreferences = out
	return f.Normalize()
}

func validCookingTime(c CookingTime) bool {
	for _, v := range CookingTimes {
		if v == c {
			return true
		}
	}
	return false
}

func validDifficulty(d Difficulty) bool {
	for _, v := range Difficulties {
		if v == d {
			return true
		}
	}
	return false
}
