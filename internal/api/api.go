package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/ai-recipe-generator/backend/internal/service"
	"github.com/pageza/ai-recipe-generator/backend/internal/session"
)

// Dependencies are the components the handlers are built from
type Dependencies struct {
	Sessions    *session.Manager
	Favorites   session.FavoritesStore
	Credentials service.CredentialManager
	Storage     Pinger
	// GenerationLimiter guards the generate and retry routes; nil disables it
	GenerationLimiter gin.HandlerFunc
	Logger            *zap.Logger
}

// SetupAPI registers every route under /api/v1
func SetupAPI(router *gin.Engine, deps Dependencies) {
	health := NewHealthHandler(deps.Storage, deps.Logger)
	router.GET("/health", health.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", health.HealthCheck)
		v1.GET("/options", Options)

		NewCredentialHandler(deps.Credentials).RegisterRoutes(v1)
		NewSessionHandler(deps.Sessions, deps.Favorites, deps.Credentials, deps.GenerationLimiter, deps.Logger).RegisterRoutes(v1)
		NewFavoritesHandler(deps.Favorites, deps.Logger).RegisterRoutes(v1)
	}
}
