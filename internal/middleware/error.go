package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/ai-recipe-generator/backend/internal/favorites"
	"github.com/pageza/ai-recipe-generator/backend/internal/service"
	"github.com/pageza/ai-recipe-generator/backend/internal/session"
	"github.com/pageza/ai-recipe-generator/backend/internal/types"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorHandler recovers panics and renders the last error a handler attached
// with c.Error as {"error": msg} with the matching status
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		last := c.Errors.Last()
		status, msg := StatusFor(last.Err)
		if last.IsType(gin.ErrorTypeBind) {
			status, msg = http.StatusBadRequest, last.Err.Error()
		}

		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(last.Err),
		}
		if status >= http.StatusInternalServerError {
			log.Error("request failed", fields...)
		} else {
			log.Info("request rejected", fields...)
		}

		c.JSON(status, ErrorResponse{Error: msg})
	}
}

// StatusFor maps an error to its HTTP status and client-facing message
func StatusFor(err error) (int, string) {
	var genErr *service.GenerationError
	isGen := errors.As(err, &genErr)
	msg := err.Error()
	if isGen {
		msg = genErr.Message()
	}

	switch {
	case errors.Is(err, service.ErrNotConfigured):
		return http.StatusPreconditionFailed, msg
	case errors.Is(err, service.ErrInvalidCredential):
		return http.StatusUnauthorized, msg
	case errors.Is(err, service.ErrQuotaExceeded), errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests, msg
	case errors.Is(err, session.ErrGenerationInProgress), errors.Is(err, session.ErrNoRecipe):
		return http.StatusConflict, msg
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, session.ErrClosed),
		errors.Is(err, session.ErrIngredientNotFound),
		errors.Is(err, session.ErrFavoriteNotFound):
		return http.StatusNotFound, msg
	case errors.Is(err, service.ErrNoIngredients),
		errors.Is(err, types.ErrInvalidFilters),
		errors.Is(err, types.ErrEmptyIngredient),
		errors.Is(err, session.ErrInvalidView),
		errors.Is(err, service.ErrInvalidAPIKeyFormat):
		return http.StatusBadRequest, msg
	case isGen:
		return http.StatusBadGateway, msg
	case errors.Is(err, favorites.ErrStorage):
		return http.StatusInternalServerError, "Failed to access favorites storage"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}
