// Package favorites persists the user's saved recipes as one JSON array under
// a single key of a storage.Store. Every operation reads and rewrites the
// whole list.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/pageza/ai-recipe-generator/backend/internal/storage"
	"github.com/pageza/ai-recipe-generator/backend/internal/types"
)

// Key is the storage key holding the favorites list
const Key = "recipe_generator_favorites"

// ErrStorage wraps every read, write or encoding failure of the list
var ErrStorage = errors.New("favorites storage failure")

// Store is the favorites collection. The mutex serializes read-modify-write
// cycles within this process only; other processes sharing the backend still
// race and the last writer wins.
type Store struct {
	mu  sync.Mutex
	kv  storage.Store
	log *zap.Logger
	key string
}

// NewStore creates a favorites store on top of kv
func NewStore(kv storage.Store, log *zap.Logger) *Store {
	return &Store{kv: kv, log: log, key: Key}
}

// Save appends recipe and writes the list back. The same recipe saved twice
// is stored twice.
func (s *Store) Save(ctx context.Context, recipe types.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.read(ctx)
	if err != nil {
		return err
	}
	list = append(list, recipe)
	if err := s.write(ctx, list); err != nil {
		return err
	}

	s.log.Debug("saved favorite", zap.String("recipe_id", recipe.ID), zap.Int("count", len(list)))
	return nil
}

// Remove drops every entry with the given id and writes the list back.
// Removing an unknown id leaves the list unchanged.
func (s *Store) Remove(ctx context.Context, recipeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.read(ctx)
	if err != nil {
		return err
	}

	kept := list[:0]
	for _, r := range list {
		if r.ID != recipeID {
			kept = append(kept, r)
		}
	}
	if err := s.write(ctx, kept); err != nil {
		return err
	}

	s.log.Debug("removed favorite", zap.String("recipe_id", recipeID), zap.Int("removed", len(list)-len(kept)))
	return nil
}

// List returns the stored recipes in insertion order, or an empty list when
// nothing has been saved yet.
func (s *Store) List(ctx context.Context) ([]types.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read(ctx)
}

// Get returns the first stored recipe with the given id
func (s *Store) Get(ctx context.Context, recipeID string) (*types.Recipe, bool, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, false, err
	}
	for i := range list {
		if list[i].ID == recipeID {
			return &list[i], true, nil
		}
	}
	return nil, false, nil
}

// IsFavorite reports whether some stored recipe has the given id
func (s *Store) IsFavorite(ctx context.Context, recipeID string) (bool, error) {
	_, ok, err := s.Get(ctx, recipeID)
	return ok, err
}

func (s *Store) read(ctx context.Context) ([]types.Recipe, error) {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && len(data) == 0) {
		return []types.Recipe{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	var list []types.Recipe
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: decode favorites: %w", ErrStorage, err)
	}
	if list == nil {
		list = []types.Recipe{}
	}
	return list, nil
}

func (s *Store) write(ctx context.Context, list []types.Recipe) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("%w: encode favorites: %w", ErrStorage, err)
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}
