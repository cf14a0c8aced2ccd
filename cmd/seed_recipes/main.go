package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/ai-recipe-generator/backend/config"
	"github.com/pageza/ai-recipe-generator/backend/internal/database"
	"github.com/pageza/ai-recipe-generator/backend/internal/favorites"
	"github.com/pageza/ai-recipe-generator/backend/internal/logger"
	"github.com/pageza/ai-recipe-generator/backend/internal/service"
	"github.com/pageza/ai-recipe-generator/backend/internal/types"
)

// seed is one generation request: a pantry and the filters to apply
type seed struct {
	Ingredients []string
	Filters     types.RecipeFilters
}

func filters(cookingTime types.CookingTime, difficulty types.Difficulty, servings int, dietary ...string) types.RecipeFilters {
	if dietary == nil {
		dietary = []string{}
	}
	return types.RecipeFilters{
		DietaryPreferences: dietary,
		CookingTime:        cookingTime,
		Difficulty:         difficulty,
		Servings:           servings,
	}
}

var seeds = []seed{
	{Ingredients: []string{"chicken breast", "rice", "soy sauce", "garlic"}, Filters: filters(types.Cooking15To30, types.DifficultyEasy, 4)},
	{Ingredients: []string{"chickpeas", "spinach", "coconut milk", "curry paste"}, Filters: filters(types.Cooking30To60, types.DifficultyEasy, 4, "Vegan")},
	{Ingredients: []string{"eggs", "oats", "banana"}, Filters: filters(types.CookingUnder15, types.DifficultyEasy, 2, "Vegetarian")},
	{Ingredients: []string{"salmon", "lemon", "dill", "potatoes"}, Filters: filters(types.Cooking30To60, types.DifficultyMedium, 2, "Gluten-free")},
	{Ingredients: []string{"beef chuck", "carrots", "onion", "red wine"}, Filters: filters(types.Cooking1To2Hours, types.DifficultyMedium, 6)},
	{Ingredients: []string{"cauliflower", "parmesan", "almond flour"}, Filters: filters(types.Cooking30To60, types.DifficultyMedium, 4, "Keto")},
	{Ingredients: []string{"pork shoulder", "apple cider", "brown sugar"}, Filters: filters(types.CookingOver2, types.DifficultyHard, 8, "Dairy-free")},
	{Ingredients: []string{"tofu", "broccoli", "ginger", "sesame oil"}, Filters: filters(types.Cooking15To30, types.DifficultyEasy, 3, "Vegan", "High-protein")},
}

func main() {
	count := flag.Int("count", len(seeds), "Number of recipes to generate")
	delay := flag.Duration("delay", 2*time.Second, "Pause between generations")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(config.IsProduction(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	saved, err := run(ctx, cfg, log, *count, *delay)
	if err != nil {
		log.Error("Seeding failed", zap.Error(err))
		logger.Close(log)
		os.Exit(1)
	}
	log.Info("Seeding finished", zap.Int("saved", saved))
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, count int, delay time.Duration) (int, error) {
	if cfg.StorageBackend == config.StorageMemory {
		return 0, errors.New("seeding the memory backend has no effect; choose a persistent STORAGE_BACKEND")
	}

	var redisClient *redis.Client
	if cfg.StorageBackend == config.StorageRedis {
		client, err := database.NewRedisClient(cfg, log)
		if err != nil {
			return 0, err
		}
		defer client.Close()
		redisClient = client
	}

	store, closeStore, err := database.OpenStore(ctx, cfg, redisClient, log)
	if err != nil {
		return 0, err
	}
	defer closeStore()

	creds := service.NewCredentials(store, service.NewSealer(cfg.CredentialSealKey), log)
	if err := creds.Load(ctx, cfg.OpenAIAPIKey); err != nil {
		return 0, err
	}
	if !creds.Configured() {
		return 0, service.ErrNotConfigured
	}

	chat := service.NewChatClient(cfg.OpenAIAPIURL, log, service.WithTimeout(cfg.OpenAITimeout))
	recipes := service.NewRecipeService(chat, creds, log, service.WithModel(cfg.OpenAIModel))
	favs := favorites.NewStore(store, log)

	saved := 0
	for i := 0; i < count; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return saved, ctx.Err()
			case <-time.After(delay):
			}
		}

		s := seeds[i%len(seeds)]
		log.Info("Generating recipe",
			zap.Int("n", i+1),
			zap.String("ingredients", strings.Join(s.Ingredients, ", ")),
		)

		ingredients := make([]types.Ingredient, 0, len(s.Ingredients))
		for _, name := range s.Ingredients {
			ing, err := types.NewIngredient(name)
			if err != nil {
				return saved, err
			}
			ingredients = append(ingredients, ing)
		}

		recipe, err := recipes.GenerateRecipe(ctx, ingredients, s.Filters)
		if err != nil {
			// Bad credentials and quota errors fail every later call too.
			if errors.Is(err, service.ErrInvalidCredential) || errors.Is(err, service.ErrQuotaExceeded) {
				return saved, err
			}
			log.Warn("Failed to generate recipe", zap.Error(err))
			continue
		}
		if err := favs.Save(ctx, *recipe); err != nil {
			return saved, err
		}
		saved++
		log.Info("Saved recipe", zap.String("title", recipe.Title), zap.String("id", recipe.ID))
	}
	return saved, nil
}
