package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/ai-recipe-generator/backend/internal/middleware"
	"github.com/pageza/ai-recipe-generator/backend/internal/session"
)

// SessionHandler exposes the generator actions of one session
type SessionHandler struct {
	sessions *session.Manager
	favs     session.FavoritesStore
	creds    middleware.CredentialChecker
	limiter  gin.HandlerFunc
	log      *zap.Logger
}

// NewSessionHandler creates the handler. limiter may be nil.
func NewSessionHandler(sessions *session.Manager, favs session.FavoritesStore, creds middleware.CredentialChecker, limiter gin.HandlerFunc, log *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		favs:     favs,
		creds:    creds,
		limiter:  limiter,
		log:      log,
	}
}

func (h *SessionHandler) RegisterRoutes(router *gin.RouterGroup) {
	sessions := router.Group("/sessions")
	sessions.POST("", h.CreateSession)

	one := sessions.Group("/:id", middleware.LoadSession(h.sessions))
	{
		one.GET("", h.GetSession)
		one.DELETE("", h.DeleteSession)
		one.POST("/ingredients", h.AddIngredient)
		one.DELETE("/ingredients/:ingredientId", h.RemoveIngredient)
		one.POST("/substitutions", middleware.RequireCredential(h.creds), h.Substitutions)
		one.PUT("/filters", h.SetFilters)
		one.POST("/filters/dietary", h.ToggleDietary)
		one.PUT("/view", h.SetView)
		one.POST("/favorites", h.SaveFavorite)
		one.POST("/favorites/:recipeId/select", h.SelectFavorite)

		one.POST("/generate", h.generation(h.Generate)...)
		one.POST("/retry", h.generation(h.Retry)...)
	}
}

// generation prepends the credential check and rate limit to a model-backed handler
func (h *SessionHandler) generation(handler gin.HandlerFunc) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{middleware.RequireCredential(h.creds)}
	if h.limiter != nil {
		chain = append(chain, h.limiter)
	}
	return append(chain, handler)
}

// CreateSession starts a session with default filters
func (h *SessionHandler) CreateSession(c *gin.Context) {
	s := h.sessions.Create()
	c.JSON(http.StatusCreated, h.response(c, s))
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.response(c, middleware.CurrentSession(c)))
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	h.sessions.Delete(middleware.CurrentSession(c).ID())
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) AddIngredient(c *gin.Context) {
	var req AddIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}
	ing, err := middleware.CurrentSession(c).AddIngredient(req.Name)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ing)
}

func (h *SessionHandler) RemoveIngredient(c *gin.Context) {
	if err := middleware.CurrentSession(c).RemoveIngredient(c.Param("ingredientId")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Substitutions suggests replacements for one ingredient
func (h *SessionHandler) Substitutions(c *gin.Context) {
	var req SubstitutionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}
	subs, err := middleware.CurrentSession(c).Substitutions(c.Request.Context(), req.Ingredient)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, SubstitutionsResponse{Ingredient: req.Ingredient, Substitutions: subs})
}

// SetFilters merges the body over the current filters. Fields left out of the
// body keep their current value.
func (h *SessionHandler) SetFilters(c *gin.Context) {
	s := middleware.CurrentSession(c)
	filters := s.Snapshot().Filters
	if err := c.ShouldBindJSON(&filters); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}
	updated, err := s.SetFilters(filters)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *SessionHandler) ToggleDietary(c *gin.Context) {
	var req ToggleDietaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}
	updated, err := middleware.CurrentSession(c).ToggleDietaryPreference(req.Preference)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *SessionHandler) SetView(c *gin.Context) {
	var req SetViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}
	s := middleware.CurrentSession(c)
	if err := s.SetView(req.View); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, h.response(c, s))
}

// Generate runs one generation and returns the updated session
func (h *SessionHandler) Generate(c *gin.Context) {
	s := middleware.CurrentSession(c)
	if _, err := s.Generate(c.Request.Context()); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, h.response(c, s))
}

// Retry repeats the last generation request
func (h *SessionHandler) Retry(c *gin.Context) {
	s := middleware.CurrentSession(c)
	if _, err := s.Retry(c.Request.Context()); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, h.response(c, s))
}

// SaveFavorite stores the session's current recipe
func (h *SessionHandler) SaveFavorite(c *gin.Context) {
	recipe, err := middleware.CurrentSession(c).SaveFavorite(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

// SelectFavorite makes a stored recipe the session's current recipe
func (h *SessionHandler) SelectFavorite(c *gin.Context) {
	s := middleware.CurrentSession(c)
	if _, err := s.SelectFavorite(c.Request.Context(), c.Param("recipeId")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, h.response(c, s))
}

func (h *SessionHandler) response(c *gin.Context, s *session.Session) SessionResponse {
	state := s.Snapshot()
	resp := SessionResponse{State: state}
	if state.CurrentRecipe == nil {
		return resp
	}
	_, ok, err := h.favs.Get(c.Request.Context(), state.CurrentRecipe.ID)
	if err != nil {
		h.log.Warn("failed to check favorite", zap.String("recipe_id", state.CurrentRecipe.ID), zap.Error(err))
		return resp
	}
	resp.IsFavorite = ok
	return resp
}
