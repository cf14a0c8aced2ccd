package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/pageza/ai-recipe-generator/backend/internal/mocks"
	"github.com/pageza/ai-recipe-generator/backend/internal/session"
)

func TestLoadSession(t *testing.T) {
	mgr := session.NewManager(new(mocks.MockRecipeGenerator), new(mocks.MockFavoritesStore), zap.NewNop())
	s := mgr.Create()

	r := gin.New()
	r.Use(ErrorHandler(zap.NewNop()))
	r.GET("/sessions/:id", LoadSession(mgr), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentSession(c).ID())
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sessions/"+s.ID(), nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, s.ID(), rr.Body.String())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sessions/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"session not found"}`, rr.Body.String())
}

func TestRequireCredential(t *testing.T) {
	creds := new(mocks.MockCredentialManager)
	creds.On("Configured").Return(false).Once()
	creds.On("Configured").Return(true).Once()

	r := gin.New()
	r.Use(ErrorHandler(zap.NewNop()))
	r.POST("/generate", RequireCredential(creds), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/generate", nil))
	assert.Equal(t, http.StatusPreconditionFailed, rr.Code)
	assert.JSONEq(t, `{"error":"OpenAI API key not configured"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/generate", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	creds.AssertExpectations(t)
}
