package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragcore/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragcore/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragcore/internal/core/domain"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory backend", func(t *testing.T) {
		store, err := openStore(ctx, domain.StoreSettings{Backend: domain.StoreBackendMemory, Collection: "docs"})
		require.NoError(t, err)
		defer store.Close()

		assert.IsType(t, &memory.VectorStore{}, store)
	})

	t.Run("sqlite backend in temp dir", func(t *testing.T) {
		store, err := openStore(ctx, domain.StoreSettings{
			Backend:    domain.StoreBackendSQLite,
			Path:       t.TempDir(),
			Collection: "docs",
		})
		require.NoError(t, err)
		defer store.Close()

		assert.IsType(t, &sqlite.Store{}, store)
	})

	t.Run("empty sqlite path is ephemeral", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		store, err := openStore(ctx, domain.StoreSettings{
			Backend:    domain.StoreBackendSQLite,
			Collection: "docs",
		})
		require.NoError(t, err)

		require.IsType(t, &sqlite.Store{}, store)
		path := store.(*sqlite.Store).Path()
		assert.NotContains(t, path, home)
		_, err = os.Stat(path)
		require.NoError(t, err)

		require.NoError(t, store.Close())
		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err), "temporary store is removed on close")
		_, err = os.Stat(filepath.Join(home, ".ragcore"))
		assert.True(t, os.IsNotExist(err), "nothing durable is written")
	})

	t.Run("default settings are durable", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		store, err := openStore(ctx, domain.DefaultAppSettings().Store)
		require.NoError(t, err)
		defer store.Close()

		require.IsType(t, &sqlite.Store{}, store)
		assert.Equal(t, filepath.Join(home, ".ragcore", "data", "vectors.db"), store.(*sqlite.Store).Path())
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := openStore(ctx, domain.StoreSettings{Backend: "redis"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
	})
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	t.Run("fills empty key", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		applyEnv(&settings)
		assert.Equal(t, "sk-from-env", settings.Embedding.APIKey)
	})

	t.Run("keeps configured key", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.Embedding.APIKey = "sk-configured"
		applyEnv(&settings)
		assert.Equal(t, "sk-configured", settings.Embedding.APIKey)
	})
}

func TestBuildRAGService_DefaultSettings(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Store.Backend = domain.StoreBackendMemory

	rag, closeFn, err := buildRAGService(context.Background(), &settings, nil)
	require.NoError(t, err)
	defer closeFn()

	n, err := rag.CollectionSize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
