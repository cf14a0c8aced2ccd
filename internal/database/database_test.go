package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/ai-recipe-generator/backend/config"
	"github.com/pageza/ai-recipe-generator/backend/internal/storage"
)

func TestOpenSQLite(t *testing.T) {
	cfg := &config.Config{
		StorageBackend: config.StorageSQLite,
		SQLitePath:     filepath.Join(t.TempDir(), "recipes.db"),
	}

	db, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })

	require.NoError(t, RunMigrations(db, zap.NewNop()))
	assert.True(t, db.Migrator().HasTable(&storage.Entry{}))

	store := storage.NewSQLStore(db)
	require.NoError(t, store.Set(context.Background(), "k", []byte("v")))
	got, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestOpenRejectsNonSQLBackend(t *testing.T) {
	_, err := Open(&config.Config{StorageBackend: config.StorageRedis}, zap.NewNop())
	assert.Error(t, err)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	t.Run("memory", func(t *testing.T) {
		store, closeStore, err := OpenStore(ctx, &config.Config{StorageBackend: config.StorageMemory}, nil, log)
		require.NoError(t, err)
		defer closeStore()
		assert.IsType(t, &storage.MemoryStore{}, store)
	})

	t.Run("sqlite is migrated", func(t *testing.T) {
		cfg := &config.Config{
			StorageBackend: config.StorageSQLite,
			SQLitePath:     filepath.Join(t.TempDir(), "recipes.db"),
		}
		store, closeStore, err := OpenStore(ctx, cfg, nil, log)
		require.NoError(t, err)
		defer closeStore()

		require.NoError(t, store.Set(ctx, "k", []byte("v")))
		assert.NoError(t, store.Ping(ctx))
	})

	t.Run("redis without client", func(t *testing.T) {
		_, _, err := OpenStore(ctx, &config.Config{StorageBackend: config.StorageRedis}, nil, log)
		assert.ErrorContains(t, err, "requires REDIS_URL")
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, _, err := OpenStore(ctx, &config.Config{StorageBackend: "floppy"}, nil, log)
		assert.Error(t, err)
	})
}
