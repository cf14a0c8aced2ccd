package service

import (
	"fmt"
	"strings"

	"github.com/pageza/ai-recipe-generator/backend/internal/types"
)

const (
	recipeSystemPrompt       = "You are a professional chef and nutritionist. Always respond with valid JSON only, no additional text."
	substitutionSystemPrompt = "You are a culinary expert. Always respond with valid JSON only."
)

// buildRecipePrompt renders the user message for a recipe request
func buildRecipePrompt(ingredientNames []string, filters types.RecipeFilters) string {
	dietary := ""
	if len(filters.DietaryPreferences) > 0 {
		dietary = fmt.Sprintf(" following %s dietary restrictions", strings.Join(filters.DietaryPreferences, ", "))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a detailed recipe using these ingredients: %s.\n\n", strings.Join(ingredientNames, ", "))
	b.WriteString("Requirements:\n")
	fmt.Fprintf(&b, "- Cooking time: %s\n", filters.CookingTime)
	fmt.Fprintf(&b, "- Difficulty: %s\n", filters.Difficulty)
	fmt.Fprintf(&b, "- Servings: %d%s\n\n", filters.Servings, dietary)
	b.WriteString("Please provide a JSON response with the following structure:\n")
	fmt.Fprintf(&b, `{
  "title": "Recipe Name",
  "description": "Brief description of the dish",
  "ingredients": ["ingredient 1 with measurements", "ingredient 2 with measurements"],
  "instructions": ["step 1", "step 2", "step 3"],
  "prepTime": "X minutes",
  "cookTime": "X minutes",
  "totalTime": "X minutes",
  "difficulty": "%s",
  "servings": %d,
  "nutritionalInfo": {
    "calories": 500,
    "protein": "25g",
    "carbs": "60g",
    "fat": "15g",
    "fiber": "8g"
  },
  "tags": ["tag1", "tag2", "tag3"]
}`, filters.Difficulty, filters.Servings)
	b.WriteString("\n\nMake the recipe creative, practical, and delicious. Include realistic nutritional estimates.")
	return b.String()
}

// buildSubstitutionPrompt renders the user message for a substitution request
func buildSubstitutionPrompt(ingredient string) string {
	return fmt.Sprintf("Suggest 5 good substitutions for %q in cooking.\n"+
		"Return only a JSON array of strings, no additional text.\n"+
		`Example: ["substitute 1", "substitute 2", "substitute 3", "substitute 4", "substitute 5"]`, ingredient)
}
