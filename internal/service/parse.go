package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pageza/ai-recipe-generator/backend/internal/types"
)

// flexInt accepts a JSON number or a string with a leading integer ("4",
// "4 servings")
type flexInt struct {
	Value int
	Set   bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		f.Value, f.Set = int(num), true
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if n, ok := leadingNumber(str); ok {
			f.Value, f.Set = int(n), true
		}
		return nil
	}

	return fmt.Errorf("invalid integer format: %s", data)
}

// flexFloat accepts a JSON number or a string with a leading number ("450 kcal")
type flexFloat struct {
	Value *float64
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		f.Value = &num
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if n, ok := leadingNumber(str); ok {
			f.Value = &n
		}
		return nil
	}

	return fmt.Errorf("invalid number format: %s", data)
}

// flexString accepts a JSON string or a bare number (25 becomes "25")
type flexString struct {
	Value *string
}

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		f.Value = &str
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		s := strconv.FormatFloat(num, 'f', -1, 64)
		f.Value = &s
		return nil
	}

	return fmt.Errorf("invalid string format: %s", data)
}

// leadingNumber parses the number at the start of s, ignoring what follows
func leadingNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.') {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

type nutritionPayload struct {
	Calories flexFloat  `json:"calories"`
	Protein  flexString `json:"protein"`
	Carbs    flexString `json:"carbs"`
	Fat      flexString `json:"fat"`
	Fiber    flexString `json:"fiber"`
}

// recipePayload is the recipe object as the model returns it
type recipePayload struct {
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Ingredients     []string          `json:"ingredients"`
	Instructions    []string          `json:"instructions"`
	PrepTime        string            `json:"prepTime"`
	CookTime        string            `json:"cookTime"`
	TotalTime       string            `json:"totalTime"`
	Difficulty      string            `json:"difficulty"`
	Servings        flexInt           `json:"servings"`
	NutritionalInfo *nutritionPayload `json:"nutritionalInfo"`
	Tags            []string          `json:"tags"`
}

// stripCodeFence removes a surrounding markdown code fence, if any
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if nl := strings.IndexByte(content, '\n'); nl >= 0 {
		content = content[nl+1:]
	} else {
		content = strings.TrimPrefix(content, "json")
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

// parseRecipePayload decodes and checks the model's reply. Fields other than
// title, ingredients and instructions are optional.
func parseRecipePayload(content string) (*recipePayload, error) {
	content = stripCodeFence(content)
	if content == "" {
		return nil, ErrEmptyResponse
	}

	var p recipePayload
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	p.Title = strings.TrimSpace(p.Title)
	p.Ingredients = compact(p.Ingredients)
	p.Instructions = compact(p.Instructions)

	switch {
	case p.Title == "":
		return nil, fmt.Errorf("%w: missing title", ErrInvalidResponse)
	case len(p.Ingredients) == 0:
		return nil, fmt.Errorf("%w: missing ingredients", ErrInvalidResponse)
	case len(p.Instructions) == 0:
		return nil, fmt.Errorf("%w: missing instructions", ErrInvalidResponse)
	}
	return &p, nil
}

func (n *nutritionPayload) toNutritionalInfo() *types.NutritionalInfo {
	if n == nil {
		return nil
	}
	info := &types.NutritionalInfo{
		Calories: n.Calories.Value,
		Protein:  n.Protein.Value,
		Carbs:    n.Carbs.Value,
		Fat:      n.Fat.Value,
		Fiber:    n.Fiber.Value,
	}
	if *info == (types.NutritionalInfo{}) {
		return nil
	}
	return info
}

// parseSubstitutions decodes a JSON array of strings
func parseSubstitutions(content string) ([]string, error) {
	content = stripCodeFence(content)
	if content == "" {
		return nil, ErrEmptyResponse
	}
	var subs []string
	if err := json.Unmarshal([]byte(content), &subs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return compact(subs), nil
}

// compact trims entries and drops empty ones
func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
