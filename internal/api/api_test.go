package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/ai-recipe-generator/backend/internal/favorites"
	"github.com/pageza/ai-recipe-generator/backend/internal/middleware"
	"github.com/pageza/ai-recipe-generator/backend/internal/mocks"
	"github.com/pageza/ai-recipe-generator/backend/internal/service"
	"github.com/pageza/ai-recipe-generator/backend/internal/session"
	"github.com/pageza/ai-recipe-generator/backend/internal/storage"
	"github.com/pageza/ai-recipe-generator/backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	router *gin.Engine
	gen    *mocks.MockRecipeGenerator
	creds  *mocks.MockCredentialManager
	favs   *favorites.Store
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func newTestAPI(t *testing.T, configured bool) *testAPI {
	t.Helper()
	log := zap.NewNop()
	store := storage.NewMemoryStore()

	ta := &testAPI{
		gen:   new(mocks.MockRecipeGenerator),
		creds: new(mocks.MockCredentialManager),
		favs:  favorites.NewStore(store, log),
	}
	ta.creds.On("Configured").Return(configured).Maybe()

	ta.router = gin.New()
	ta.router.Use(middleware.ErrorHandler(log))
	SetupAPI(ta.router, Dependencies{
		Sessions:    session.NewManager(ta.gen, ta.favs, log),
		Favorites:   ta.favs,
		Credentials: ta.creds,
		Storage:     store,
		Logger:      log,
	})
	return ta
}

func (ta *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	ta.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func (ta *testAPI) newSession(t *testing.T, ingredients ...string) string {
	t.Helper()
	rr := ta.do(t, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decode[SessionResponse](t, rr).ID
	for _, name := range ingredients {
		rr = ta.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/ingredients", AddIngredientRequest{Name: name})
		require.Equal(t, http.StatusCreated, rr.Code)
	}
	return id
}

func sampleRecipe() *types.Recipe {
	return &types.Recipe{
		ID:           "recipe-1",
		Title:        "Chicken Fried Rice",
		Description:  "Quick weeknight dinner",
		Ingredients:  []string{"2 cups rice", "1 chicken breast"},
		Instructions: []string{"Cook rice", "Fry chicken", "Combine"},
		Difficulty:   types.DifficultyEasy,
		Servings:     4,
		Tags:         []string{"quick"},
		CreatedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestHealthCheck(t *testing.T) {
	ta := newTestAPI(t, true)
	rr := ta.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, rr)["status"])

	r := gin.New()
	r.GET("/health", NewHealthHandler(failingPinger{}, zap.NewNop()).HealthCheck)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "degraded", decode[map[string]string](t, rr)["status"])
}

func TestOptions(t *testing.T) {
	ta := newTestAPI(t, true)
	rr := ta.do(t, http.MethodGet, "/api/v1/options", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	opts := decode[OptionsResponse](t, rr)
	assert.Contains(t, opts.DietaryOptions, "Vegan")
	assert.Len(t, opts.CookingTimes, 5)
	assert.Equal(t, ServingsRange{Min: 1, Max: 12}, opts.Servings)
	assert.Equal(t, types.DefaultFilters(), opts.Defaults)
}

func TestSessionLifecycle(t *testing.T) {
	ta := newTestAPI(t, true)

	rr := ta.do(t, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	created := decode[SessionResponse](t, rr)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, types.LoadingIdle, created.LoadingState)
	assert.Equal(t, types.ViewGenerator, created.View)
	assert.False(t, created.CanGenerate)

	base := "/api/v1/sessions/" + created.ID

	rr = ta.do(t, http.MethodPost, base+"/ingredients", AddIngredientRequest{Name: "  chicken  "})
	require.Equal(t, http.StatusCreated, rr.Code)
	ing := decode[types.Ingredient](t, rr)
	assert.Equal(t, "chicken", ing.Name)

	rr = ta.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	state := decode[SessionResponse](t, rr)
	assert.True(t, state.CanGenerate)
	assert.Len(t, state.Ingredients, 1)

	rr = ta.do(t, http.MethodDelete, base+"/ingredients/"+ing.ID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = ta.do(t, http.MethodDelete, base+"/ingredients/"+ing.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ta.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = ta.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"session not found"}`, rr.Body.String())
}

func TestAddIngredient_Invalid(t *testing.T) {
	ta := newTestAPI(t, true)
	id := ta.newSession(t)

	rr := ta.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/ingredients", AddIngredientRequest{Name: "   "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"ingredient name must not be empty"}`, rr.Body.String())

	rr = ta.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/ingredients", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGenerate_SaveAndSelectFavorite(t *testing.T) {
	ta := newTestAPI(t, true)
	ta.gen.On("GenerateRecipe", mock.Anything, mock.Anything, mock.Anything).Return(sampleRecipe(), nil).Once()

	id := ta.newSession(t, "chicken", "rice")
	base := "/api/v1/sessions/" + id

	rr := ta.do(t, http.MethodPost, base+"/generate", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	state := decode[SessionResponse](t, rr)
	require.NotNil(t, state.CurrentRecipe)
	assert.Equal(t, "Chicken Fried Rice", state.CurrentRecipe.Title)
	assert.Equal(t, types.LoadingSuccess, state.LoadingState)
	assert.Empty(t, state.Error)
	assert.False(t, state.IsFavorite)

	rr = ta.do(t, http.MethodPost, base+"/favorites", nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ta.do(t, http.MethodGet, base, nil)
	assert.True(t, decode[SessionResponse](t, rr).IsFavorite)

	rr = ta.do(t, http.MethodGet, "/api/v1/favorites", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[FavoritesResponse](t, rr)
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, "recipe-1", list.Recipes[0].ID)

	// A second session can open the stored recipe.
	other := ta.newSession(t)
	rr = ta.do(t, http.MethodPut, "/api/v1/sessions/"+other+"/view", SetViewRequest{View: types.ViewFavorites})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = ta.do(t, http.MethodPost, "/api/v1/sessions/"+other+"/favorites/recipe-1/select", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	selected := decode[SessionResponse](t, rr)
	assert.Equal(t, types.ViewGenerator, selected.View)
	assert.Equal(t, types.LoadingSuccess, selected.LoadingState)
	assert.True(t, selected.IsFavorite)

	rr = ta.do(t, http.MethodDelete, "/api/v1/favorites/recipe-1", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = ta.do(t, http.MethodGet, "/api/v1/favorites/recipe-1", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = ta.do(t, http.MethodPost, "/api/v1/sessions/"+other+"/favorites/recipe-1/select", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	ta.gen.AssertExpectations(t)
}

func TestGenerate_Errors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		ta := newTestAPI(t, false)
		id := ta.newSession(t, "chicken")

		rr := ta.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/generate", nil)
		assert.Equal(t, http.StatusPreconditionFailed, rr.Code)
		assert.JSONEq(t, `{"error":"OpenAI API key not configured"}`, rr.Body.String())
		ta.gen.AssertNotCalled(t, "GenerateRecipe", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no ingredients", func(t *testing.T) {
		ta := newTestAPI(t, true)
		id := ta.newSession(t)

		rr := ta.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/generate", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error":"Please add at least one ingredient"}`, rr.Body.String())
	})

	t.Run("invalid key", func(t *testing.T) {
		ta := newTestAPI(t, true)
		genErr := &service.GenerationError{Kind: service.ErrInvalidCredential, Cause: errors.New("API error (status 401): bad key")}
		ta.gen.On("GenerateRecipe", mock.Anything, mock.Anything, mock.Anything).Return(nil, genErr).Once()
		id := ta.newSession(t, "chicken")

		rr := ta.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/generate", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"error":"Invalid OpenAI API key. Please check your API key configuration."}`, rr.Body.String())

		rr = ta.do(t, http.MethodGet, "/api/v1/sessions/"+id, nil)
		state := decode[SessionResponse](t, rr)
		assert.Equal(t, types.LoadingError, state.LoadingState)
		assert.Equal(t, "Invalid OpenAI API key. Please check your API key configuration.", state.Error)
		assert.Nil(t, state.CurrentRecipe)
	})

	t.Run("save without recipe", func(t *testing.T) {
		ta := newTestAPI(t, true)
		id := ta.newSession(t)

		rr := ta.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/favorites", nil)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestRetry_ReusesLastRequest(t *testing.T) {
	ta := newTestAPI(t, true)
	ta.gen.On("GenerateRecipe", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &service.GenerationError{Kind: service.ErrUpstream, Cause: errors.New("boom")}).Once()
	ta.gen.On("GenerateRecipe", mock.Anything, mock.Anything, mock.Anything).Return(sampleRecipe(), nil).Once()

	id := ta.newSession(t, "chicken")
	base := "/api/v1/sessions/" + id

	rr := ta.do(t, http.MethodPost, base+"/generate", nil)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.JSONEq(t, `{"error":"Failed to generate recipe: boom"}`, rr.Body.String())

	rr = ta.do(t, http.MethodPost, base+"/ingredients", AddIngredientRequest{Name: "rice"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ta.do(t, http.MethodPost, base+"/retry", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	calls := ta.gen.Calls
	require.Len(t, calls, 2)
	retried := calls[1].Arguments.Get(1).([]types.Ingredient)
	assert.Equal(t, []string{"chicken"}, types.IngredientNames(retried))
}

func TestFilters(t *testing.T) {
	ta := newTestAPI(t, true)
	id := ta.newSession(t)
	base := "/api/v1/sessions/" + id

	rr := ta.do(t, http.MethodPut, base+"/filters", map[string]any{"servings": 6})
	require.Equal(t, http.StatusOK, rr.Code)
	filters := decode[types.RecipeFilters](t, rr)
	assert.Equal(t, 6, filters.Servings)
	assert.Equal(t, types.Cooking15To30, filters.CookingTime)
	assert.Equal(t, types.DifficultyEasy, filters.Difficulty)

	rr = ta.do(t, http.MethodPut, base+"/filters", map[string]any{"servings": 40})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ta.do(t, http.MethodPost, base+"/filters/dietary", ToggleDietaryRequest{Preference: "Vegan"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"Vegan"}, decode[types.RecipeFilters](t, rr).DietaryPreferences)

	rr = ta.do(t, http.MethodPost, base+"/filters/dietary", ToggleDietaryRequest{Preference: "vegan"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[types.RecipeFilters](t, rr).DietaryPreferences)

	rr = ta.do(t, http.MethodGet, base, nil)
	assert.Equal(t, 6, decode[SessionResponse](t, rr).Filters.Servings)
}

func TestSetView_Invalid(t *testing.T) {
	ta := newTestAPI(t, true)
	id := ta.newSession(t)

	rr := ta.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/view", SetViewRequest{View: "settings"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSubstitutions(t *testing.T) {
	ta := newTestAPI(t, true)
	ta.gen.On("GenerateSubstitutions", mock.Anything, "butter").Return([]string{"margarine", "coconut oil"}, nil).Once()
	id := ta.newSession(t, "butter")

	rr := ta.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/substitutions", SubstitutionsRequest{Ingredient: "butter"})
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[SubstitutionsResponse](t, rr)
	assert.Equal(t, []string{"margarine", "coconut oil"}, resp.Substitutions)

	rr = ta.do(t, http.MethodGet, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, []string{"margarine", "coconut oil"}, decode[SessionResponse](t, rr).Substitutions["butter"])
	ta.gen.AssertExpectations(t)
}

func TestCredential(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		ta := newTestAPI(t, true)
		ta.creds.On("Source").Return(service.SourceEnvironment)

		rr := ta.do(t, http.MethodGet, "/api/v1/credential", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"configured":true,"source":"environment"}`, rr.Body.String())
	})

	t.Run("set", func(t *testing.T) {
		ta := newTestAPI(t, true)
		ta.creds.On("Set", mock.Anything, "sk-test-0123456789abcdefghij").Return(nil).Once()
		ta.creds.On("Source").Return(service.SourceExplicit)

		rr := ta.do(t, http.MethodPut, "/api/v1/credential", SetCredentialRequest{APIKey: "sk-test-0123456789abcdefghij"})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"configured":true,"source":"explicit"}`, rr.Body.String())
		ta.creds.AssertExpectations(t)
	})

	t.Run("bad format", func(t *testing.T) {
		ta := newTestAPI(t, false)
		ta.creds.On("Set", mock.Anything, "nope").
			Return(service.ValidateAPIKeyFormat("nope")).Once()

		rr := ta.do(t, http.MethodPut, "/api/v1/credential", SetCredentialRequest{APIKey: "nope"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "invalid API key format")
	})

	t.Run("clear", func(t *testing.T) {
		ta := newTestAPI(t, true)
		ta.creds.On("Clear", mock.Anything).Return(nil).Once()

		rr := ta.do(t, http.MethodDelete, "/api/v1/credential", nil)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		ta.creds.AssertExpectations(t)
	})
}

func TestGenerationLimiter(t *testing.T) {
	log := zap.NewNop()
	store := storage.NewMemoryStore()
	gen := new(mocks.MockRecipeGenerator)
	gen.On("GenerateRecipe", mock.Anything, mock.Anything, mock.Anything).Return(sampleRecipe(), nil)
	creds := new(mocks.MockCredentialManager)
	creds.On("Configured").Return(true)
	favs := favorites.NewStore(store, log)

	router := gin.New()
	router.Use(middleware.ErrorHandler(log))
	SetupAPI(router, Dependencies{
		Sessions:          session.NewManager(gen, favs, log),
		Favorites:         favs,
		Credentials:       creds,
		Storage:           store,
		GenerationLimiter: middleware.NewGenerationRateLimiter(nil, 1, log).RateLimitMiddleware(),
		Logger:            log,
	})
	ta := &testAPI{router: router, gen: gen, creds: creds, favs: favs}

	id := ta.newSession(t, "chicken")
	rr := ta.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/generate", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ta.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/generate", nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))
}
