package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfigStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	require.NoError(t, store.Set("rag.top_k", 3))
	_, err = os.Stat(filepath.Join(dir, "config.toml"))
	assert.NoError(t, err)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := newTestConfigStore(t)

	require.NoError(t, store.Set("embedding.model", "hashing-v1-384"))
	require.NoError(t, store.Set("rag.chunk_size", 1000))
	require.NoError(t, store.Set("embedding.rate_limit", 2.5))
	require.NoError(t, store.Set("debug", true))

	assert.Equal(t, "hashing-v1-384", store.GetString("embedding.model"))
	assert.Equal(t, 1000, store.GetInt("rag.chunk_size"))
	assert.InDelta(t, 2.5, store.GetFloat("embedding.rate_limit"), 1e-9)
	assert.InDelta(t, 1000.0, store.GetFloat("rag.chunk_size"), 1e-9)
	assert.True(t, store.GetBool("debug"))

	// Missing keys and wrong types yield zero values
	assert.Equal(t, "", store.GetString("nonexistent"))
	assert.Equal(t, 0, store.GetInt("embedding.model"))
	assert.Zero(t, store.GetFloat("embedding.model"))
	assert.False(t, store.GetBool("rag.chunk_size"))

	_, ok := store.Get("nonexistent")
	assert.False(t, ok)
}

func TestConfigStore_SaveReload_PreservesData(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("rag.chunk_size", 800))
	require.NoError(t, store.Set("rag.overlap", 0))
	require.NoError(t, store.Set("embedding.rate_limit", 1.5))
	require.NoError(t, store.Set("store.qdrant.host", "qdrant.internal"))
	require.NoError(t, store.Set("store.path", ""))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)

	// TOML integers come back as int64
	assert.Equal(t, 800, reopened.GetInt("rag.chunk_size"))
	assert.Equal(t, 0, reopened.GetInt("rag.overlap"))
	_, ok := reopened.Get("rag.overlap")
	assert.True(t, ok)
	assert.InDelta(t, 1.5, reopened.GetFloat("embedding.rate_limit"), 1e-9)
	assert.Equal(t, "qdrant.internal", reopened.GetString("store.qdrant.host"))

	// An explicitly empty string is kept, not treated as missing
	_, ok = reopened.Get("store.path")
	assert.True(t, ok)
	assert.Empty(t, reopened.GetString("store.path"))
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("rag.top_k", 5))
	require.NoError(t, store.Set("store.qdrant.port", 6334))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "[rag]")
	assert.Contains(t, content, "top_k = 5")
	assert.Contains(t, content, "[store.qdrant]")
	assert.NotContains(t, content, `"rag.top_k"`)
}

func TestConfigStore_Save_ConflictingKeys(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("store.backend", "sqlite"))

	err := store.Set("store", "scalar")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "conflicts")
}

func TestConfigStore_Load_NonExistent(t *testing.T) {
	store := newTestConfigStore(t)

	require.NoError(t, store.Load())
	_, ok := store.Get("anything")
	assert.False(t, ok)
}

func TestConfigStore_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), nil, 0600))

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.Equal(t, "", store.GetString("rag.chunk_size"))
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[rag\nchunk_size = "), 0600))

	_, err := NewConfigStore(dir)

	assert.Error(t, err)
}

func TestConfigStore_Load_PicksUpExternalEdits(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("rag.top_k", 3))

	require.NoError(t, os.WriteFile(store.Path(), []byte("[rag]\ntop_k = 7\n"), 0600))
	require.NoError(t, store.Load())

	assert.Equal(t, 7, store.GetInt("rag.top_k"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("embedding.api_key", "sk-secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Save_Explicit(t *testing.T) {
	store := newTestConfigStore(t)
	store.data["rag.top_k"] = int64(4)

	require.NoError(t, store.Save())
	require.NoError(t, store.Load())

	assert.Equal(t, 4, store.GetInt("rag.top_k"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newTestConfigStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Set("rag.top_k", i+1))
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("rag.top_k")
		}()
	}
	wg.Wait()

	assert.Positive(t, store.GetInt("rag.top_k"))
}

func TestFlattenUnflattenRoundTrip(t *testing.T) {
	nested := map[string]any{
		"rag":   map[string]any{"top_k": int64(3)},
		"store": map[string]any{"qdrant": map[string]any{"host": "localhost"}},
	}

	flat := flattenMap(nested, "")
	assert.Equal(t, map[string]any{"rag.top_k": int64(3), "store.qdrant.host": "localhost"}, flat)

	back, err := unflattenMap(flat)
	require.NoError(t, err)
	assert.Equal(t, nested, back)
}
