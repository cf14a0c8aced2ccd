package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/ai-recipe-generator/backend/internal/session"
	"github.com/pageza/ai-recipe-generator/backend/internal/types"
)

// FavoritesHandler serves the stored recipes independent of any session
type FavoritesHandler struct {
	favs session.FavoritesStore
	log  *zap.Logger
}

func NewFavoritesHandler(favs session.FavoritesStore, log *zap.Logger) *FavoritesHandler {
	return &FavoritesHandler{favs: favs, log: log}
}

func (h *FavoritesHandler) RegisterRoutes(router *gin.RouterGroup) {
	favorites := router.Group("/favorites")
	{
		favorites.GET("", h.ListFavorites)
		favorites.GET("/:id", h.GetFavorite)
		favorites.DELETE("/:id", h.RemoveFavorite)
	}
}

// ListFavorites returns the stored recipes in save order. A storage failure
// is logged and shown as an empty list.
func (h *FavoritesHandler) ListFavorites(c *gin.Context) {
	list, err := h.favs.List(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list favorites", zap.Error(err))
		list = []types.Recipe{}
	}
	c.JSON(http.StatusOK, FavoritesResponse{Recipes: list, Count: len(list)})
}

func (h *FavoritesHandler) GetFavorite(c *gin.Context) {
	recipe, ok, err := h.favs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !ok {
		_ = c.Error(session.ErrFavoriteNotFound)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// RemoveFavorite drops every stored recipe with the id. Unknown ids succeed.
func (h *FavoritesHandler) RemoveFavorite(c *gin.Context) {
	if err := h.favs.Remove(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
