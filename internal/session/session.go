// Package session holds the per-client generator state: the ingredient list,
// filters, the current recipe and its loading state, the active view and any
// substitution suggestions. A Session is safe for concurrent use; its lock is
// never held while the model is being called.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/ai-recipe-generator/backend/internal/service"
	"github.com/pageza/ai-recipe-generator/backend/internal/types"
)

var (
	ErrNotFound             = errors.New("session not found")
	ErrGenerationInProgress = errors.New("a recipe is already being generated")
	ErrNoRecipe             = errors.New("no current recipe")
	ErrIngredientNotFound   = errors.New("ingredient not found")
	ErrFavoriteNotFound     = errors.New("favorite not found")
	ErrInvalidView          = errors.New("invalid view")
	ErrClosed               = errors.New("session closed")
)

// FavoritesStore is the subset of favorites.Store a session needs
type FavoritesStore interface {
	Save(ctx context.Context, recipe types.Recipe) error
	Remove(ctx context.Context, recipeID string) error
	List(ctx context.Context) ([]types.Recipe, error)
	Get(ctx context.Context, recipeID string) (*types.Recipe, bool, error)
}

// generationRequest is the input of one generation, kept for Retry
type generationRequest struct {
	ingredients []types.Ingredient
	filters     types.RecipeFilters
}

// State is a point-in-time copy of a session
type State struct {
	ID            string              `json:"id"`
	Ingredients   []types.Ingredient  `json:"ingredients"`
	Filters       types.RecipeFilters `json:"filters"`
	CurrentRecipe *types.Recipe       `json:"currentRecipe"`
	LoadingState  types.LoadingState  `json:"loadingState"`
	Error         string              `json:"error"`
	View          types.View          `json:"view"`
	Substitutions map[string][]string `json:"substitutions"`
	CanGenerate   bool                `json:"canGenerate"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// Session is one client's generator state
type Session struct {
	mu            sync.Mutex
	id            string
	ingredients   []types.Ingredient
	filters       types.RecipeFilters
	recipe        *types.Recipe
	loading       types.LoadingState
	errMsg        string
	view          types.View
	substitutions map[string][]string
	last          *generationRequest
	token         uint64
	closed        bool
	createdAt     time.Time
	updatedAt     time.Time

	gen  service.RecipeGenerator
	favs FavoritesStore
	log  *zap.Logger
	now  func() time.Time
}

func newSession(id string, gen service.RecipeGenerator, favs FavoritesStore, log *zap.Logger, now func() time.Time) *Session {
	created := now()
	return &Session{
		id:            id,
		ingredients:   []types.Ingredient{},
		filters:       types.DefaultFilters(),
		loading:       types.LoadingIdle,
		view:          types.ViewGenerator,
		substitutions: map[string][]string{},
		createdAt:     created,
		updatedAt:     created,
		gen:           gen,
		favs:          favs,
		log:           log.With(zap.String("session_id", id)),
		now:           now,
	}
}

func (s *Session) ID() string { return s.id }

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs := make(map[string][]string, len(s.substitutions))
	for k, v := range s.substitutions {
		subs[k] = append([]string(nil), v...)
	}
	return State{
		ID:            s.id,
		Ingredients:   append([]types.Ingredient{}, s.ingredients...),
		Filters:       cloneFilters(s.filters),
		CurrentRecipe: s.recipe,
		LoadingState:  s.loading,
		Error:         s.errMsg,
		View:          s.view,
		Substitutions: subs,
		CanGenerate:   s.loading != types.LoadingLoading && len(s.ingredients) > 0,
		CreatedAt:     s.createdAt,
		UpdatedAt:     s.updatedAt,
	}
}

// AddIngredient appends a trimmed, non-empty ingredient
func (s *Session) AddIngredient(name string) (types.Ingredient, error) {
	ing, err := types.NewIngredient(name)
	if err != nil {
		return types.Ingredient{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ingredients = append(s.ingredients, ing)
	s.touch()
	return ing, nil
}

// RemoveIngredient drops the ingredient and, when no other ingredient shares
// its name, its substitutions
func (s *Session) RemoveIngredient(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, ing := range s.ingredients {
		if ing.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrIngredientNotFound
	}

	name := s.ingredients[idx].Name
	s.ingredients = append(s.ingredients[:idx], s.ingredients[idx+1:]...)
	if !s.hasIngredientNamed(name) {
		delete(s.substitutions, name)
	}
	s.touch()
	return nil
}

// SetFilters replaces the filters after normalizing and validating them
func (s *Session) SetFilters(f types.RecipeFilters) (types.RecipeFilters, error) {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return types.RecipeFilters{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = f
	s.touch()
	return cloneFilters(f), nil
}

// ToggleDietaryPreference adds pref to the filters, or removes it when present
func (s *Session) ToggleDietaryPreference(pref string) (types.RecipeFilters, error) {
	pref = strings.TrimSpace(pref)
	if pref == "" {
		return types.RecipeFilters{}, fmt.Errorf("%w: empty dietary preference", types.ErrInvalidFilters)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = s.filters.Toggle(pref)
	s.touch()
	return cloneFilters(s.filters), nil
}

// SetView switches the active tab
func (s *Session) SetView(v types.View) error {
	if !v.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidView, v)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
	s.touch()
	return nil
}

// Generate requests a recipe for the current ingredients and filters
func (s *Session) Generate(ctx context.Context) (*types.Recipe, error) {
	s.mu.Lock()
	req, err := s.nextRequest()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	return s.generate(ctx, req)
}

// Retry repeats the last request with the same ingredients and filters. With
// no previous request it behaves like Generate.
func (s *Session) Retry(ctx context.Context) (*types.Recipe, error) {
	s.mu.Lock()
	if s.last == nil {
		req, err := s.nextRequest()
		if err != nil {
			s.mu.Unlock()
			return nil, err
		}
		return s.generate(ctx, req)
	}
	if err := s.checkIdle(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	return s.generate(ctx, *s.last)
}

// nextRequest builds a request from the live state. Caller holds s.mu.
func (s *Session) nextRequest() (generationRequest, error) {
	if err := s.checkIdle(); err != nil {
		return generationRequest{}, err
	}
	if len(s.ingredients) == 0 {
		genErr := &service.GenerationError{Kind: service.ErrNoIngredients}
		s.errMsg = genErr.Message()
		s.touch()
		return generationRequest{}, genErr
	}
	return generationRequest{
		ingredients: append([]types.Ingredient(nil), s.ingredients...),
		filters:     cloneFilters(s.filters),
	}, nil
}

func (s *Session) checkIdle() error {
	if s.closed {
		return ErrClosed
	}
	if s.loading == types.LoadingLoading {
		return ErrGenerationInProgress
	}
	return nil
}

// generate runs one request. It is entered with s.mu held and releases it
// for the duration of the model call.
func (s *Session) generate(ctx context.Context, req generationRequest) (*types.Recipe, error) {
	s.token++
	token := s.token
	s.loading = types.LoadingLoading
	s.errMsg = ""
	s.recipe = nil
	s.last = &req
	s.touch()
	s.mu.Unlock()

	started := time.Now()
	recipe, err := s.gen.GenerateRecipe(context.WithoutCancel(ctx), req.ingredients, req.filters)

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.token || s.closed {
		s.log.Info("discarding stale generation result", zap.Uint64("token", token))
		return nil, ErrClosed
	}
	s.touch()

	if err != nil {
		s.loading = types.LoadingError
		s.errMsg = userMessage(err)
		s.log.Warn("generation failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		return nil, err
	}

	s.recipe = recipe
	s.loading = types.LoadingSuccess
	s.log.Info("generation succeeded",
		zap.String("recipe_id", recipe.ID),
		zap.Duration("elapsed", time.Since(started)),
	)
	return recipe, nil
}

// Substitutions fetches replacement suggestions for an ingredient and keeps
// them on the session
func (s *Session) Substitutions(ctx context.Context, ingredient string) ([]string, error) {
	ingredient = strings.TrimSpace(ingredient)
	if ingredient == "" {
		return nil, types.ErrEmptyIngredient
	}

	subs, err := s.gen.GenerateSubstitutions(context.WithoutCancel(ctx), ingredient)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.substitutions[ingredient] = subs
	s.touch()
	return subs, nil
}

// SaveFavorite stores the current recipe
func (s *Session) SaveFavorite(ctx context.Context) (*types.Recipe, error) {
	s.mu.Lock()
	recipe := s.recipe
	s.mu.Unlock()

	if recipe == nil {
		return nil, ErrNoRecipe
	}
	if err := s.favs.Save(ctx, *recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

// RemoveFavorite drops a stored recipe
func (s *Session) RemoveFavorite(ctx context.Context, recipeID string) error {
	return s.favs.Remove(ctx, recipeID)
}

// Favorites lists the stored recipes. A storage failure is logged and shown as
// an empty list.
func (s *Session) Favorites(ctx context.Context) []types.Recipe {
	list, err := s.favs.List(ctx)
	if err != nil {
		s.log.Error("failed to list favorites", zap.Error(err))
		return []types.Recipe{}
	}
	return list
}

// SelectFavorite makes a stored recipe current and switches to the generator
func (s *Session) SelectFavorite(ctx context.Context, recipeID string) (*types.Recipe, error) {
	recipe, ok, err := s.favs.Get(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrFavoriteNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipe = recipe
	s.view = types.ViewGenerator
	if s.loading != types.LoadingLoading {
		s.loading = types.LoadingSuccess
		s.errMsg = ""
	}
	s.touch()
	return recipe, nil
}

// close marks the session closed; an in-flight result is discarded
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.token++
}

func (s *Session) lastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

func (s *Session) touch() {
	s.updatedAt = s.now()
}

func (s *Session) hasIngredientNamed(name string) bool {
	for _, ing := range s.ingredients {
		if ing.Name == name {
			return true
		}
	}
	return false
}

func userMessage(err error) string {
	var genErr *service.GenerationError
	if errors.As(err, &genErr) {
		return genErr.Message()
	}
	return "Failed to generate recipe: " + err.Error()
}

func cloneFilters(f types.RecipeFilters) types.RecipeFilters {
	f.DietaryPreferences = append([]string{}, f.DietaryPreferences...)
	return f
}
