package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/ai-recipe-generator/backend/internal/service"
	"github.com/pageza/ai-recipe-generator/backend/internal/types"
)

const Version = "v1.0.0"

// Pinger reports whether a backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service and storage health
type HealthHandler struct {
	store Pinger
	log   *zap.Logger
}

func NewHealthHandler(store Pinger, log *zap.Logger) *HealthHandler {
	return &HealthHandler{store: store, log: log}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn("storage health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "degraded",
			"message": "storage unavailable",
			"version": Version,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "AI Recipe Generator API is running",
		"version": Version,
	})
}

// Options lists the dietary options, cooking times, difficulties and servings bounds
func Options(c *gin.Context) {
	c.JSON(http.StatusOK, OptionsResponse{
		DietaryOptions: types.DietaryOptions,
		CookingTimes:   types.CookingTimes,
		Difficulties:   types.Difficulties,
		Servings:       ServingsRange{Min: types.MinServings, Max: types.MaxServings},
		Defaults:       types.DefaultFilters(),
	})
}

// CredentialHandler manages the model API key
type CredentialHandler struct {
	creds service.CredentialManager
}

func NewCredentialHandler(creds service.CredentialManager) *CredentialHandler {
	return &CredentialHandler{creds: creds}
}

func (h *CredentialHandler) RegisterRoutes(router *gin.RouterGroup) {
	credential := router.Group("/credential")
	{
		credential.GET("", h.GetCredential)
		credential.PUT("", h.SetCredential)
		credential.DELETE("", h.ClearCredential)
	}
}

// GetCredential reports whether a key is configured. The key itself is never returned.
func (h *CredentialHandler) GetCredential(c *gin.Context) {
	c.JSON(http.StatusOK, h.status())
}

// SetCredential validates and stores a new key
func (h *CredentialHandler) SetCredential(c *gin.Context) {
	var req SetCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}
	if err := h.creds.Set(c.Request.Context(), req.APIKey); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, h.status())
}

// ClearCredential forgets the stored key
func (h *CredentialHandler) ClearCredential(c *gin.Context) {
	if err := h.creds.Clear(c.Request.Context()); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CredentialHandler) status() CredentialResponse {
	return CredentialResponse{Configured: h.creds.Configured(), Source: h.creds.Source()}
}
