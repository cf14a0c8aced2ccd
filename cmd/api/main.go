package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/ai-recipe-generator/backend/config"
	"github.com/pageza/ai-recipe-generator/backend/internal/api"
	"github.com/pageza/ai-recipe-generator/backend/internal/database"
	"github.com/pageza/ai-recipe-generator/backend/internal/favorites"
	"github.com/pageza/ai-recipe-generator/backend/internal/logger"
	"github.com/pageza/ai-recipe-generator/backend/internal/middleware"
	"github.com/pageza/ai-recipe-generator/backend/internal/router"
	"github.com/pageza/ai-recipe-generator/backend/internal/server"
	"github.com/pageza/ai-recipe-generator/backend/internal/service"
	"github.com/pageza/ai-recipe-generator/backend/internal/session"
)

func main() {
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

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Server error", zap.Error(err))
		logger.Close(log)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		client, err := database.NewRedisClient(cfg, log)
		if err != nil {
			return err
		}
		defer client.Close()
		redisClient = client
	}

	store, closeStore, err := database.OpenStore(ctx, cfg, redisClient, log)
	if err != nil {
		return err
	}
	defer closeStore()

	creds := service.NewCredentials(store, service.NewSealer(cfg.CredentialSealKey), log)
	if err := creds.Load(ctx, cfg.OpenAIAPIKey); err != nil {
		// The service still starts; the key can be supplied at runtime.
		log.Warn("Failed to load stored API key", zap.Error(err))
	}
	log.Info("API credential", zap.String("source", string(creds.Source())))

	chat := service.NewChatClient(cfg.OpenAIAPIURL, log, service.WithTimeout(cfg.OpenAITimeout))
	recipes := service.NewRecipeService(chat, creds, log, service.WithModel(cfg.OpenAIModel))
	favs := favorites.NewStore(store, log)

	sessions := session.NewManager(recipes, favs, log)
	go sessions.RunSweeper(ctx, sweepInterval(cfg.SessionIdleTimeout), cfg.SessionIdleTimeout)

	var limiter gin.HandlerFunc
	if cfg.RateLimitPerHour > 0 {
		limiter = middleware.NewGenerationRateLimiter(redisClient, cfg.RateLimitPerHour, log).RateLimitMiddleware()
	}

	handler := router.SetupRouter(cfg.AllowedOrigins, api.Dependencies{
		Sessions:          sessions,
		Favorites:         favs,
		Credentials:       creds,
		Storage:           store,
		GenerationLimiter: limiter,
		Logger:            log,
	})

	return server.New(cfg.ServerHost, cfg.ServerPort, handler, cfg.ShutdownTimeout, log).Run(ctx)
}

func sweepInterval(idle time.Duration) time.Duration {
	if interval := idle / 4; interval > time.Minute {
		return interval
	}
	return time.Minute
}
