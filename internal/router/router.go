package router

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/ai-recipe-generator/backend/internal/api"
	"github.com/pageza/ai-recipe-generator/backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(allowedOrigins []string, deps api.Dependencies) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.ErrorHandler(deps.Logger))
	router.Use(middleware.CORS(allowedOrigins))

	api.SetupAPI(router, deps)

	return router
}
