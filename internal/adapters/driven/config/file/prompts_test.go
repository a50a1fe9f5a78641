package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
)

func testDefaults() map[string]string {
	return map[string]string{
		driven.PromptGrounded: "Context:\n%s\n\nQuestion: %s",
		driven.PromptGeneral:  "Question: %s",
	}
}

func newTestPromptStore(t *testing.T) (*PromptStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewPromptStore(dir, testDefaults())
	require.NoError(t, err)
	return store, dir
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	store, err := NewPromptStore("", nil)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".ragcore", "prompts"), store.Dir())
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	store, dir := newTestPromptStore(t)

	_, err := store.Load(driven.PromptGrounded)
	require.NoError(t, err)

	for _, f := range []string{"grounded.txt", "general.txt", "README.md"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected file %s to exist", f)
	}
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	dir := t.TempDir()
	customContent := "Answer using %s for %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "grounded.txt"), []byte(customContent), 0600))

	store, err := NewPromptStore(dir, testDefaults())
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptGrounded)
	require.NoError(t, err)
	assert.Equal(t, customContent, prompt)
}

func TestPromptStore_Load_FallsBackToDefault(t *testing.T) {
	store, dir := newTestPromptStore(t)

	_, _ = store.Load(driven.PromptGeneral)
	require.NoError(t, os.Remove(filepath.Join(dir, "general.txt")))
	store.Reload()

	prompt, err := store.Load(driven.PromptGeneral)
	require.NoError(t, err)
	assert.Equal(t, "Question: %s", prompt)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, _ := newTestPromptStore(t)

	_, err := store.Load("nonexistent_prompt")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent_prompt")
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	store, dir := newTestPromptStore(t)

	first, err := store.Load(driven.PromptGeneral)
	require.NoError(t, err)

	modified := "Q: %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "general.txt"), []byte(modified), 0600))

	cached, err := store.Load(driven.PromptGeneral)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptGeneral)
	require.NoError(t, err)
	assert.Equal(t, modified, fresh)
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, _ := newTestPromptStore(t)

	const goroutines = 50
	var wg sync.WaitGroup
	results := make([]string, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			prompt, err := store.Load(driven.PromptGrounded)
			assert.NoError(t, err)
			results[i] = prompt
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}

func TestPromptStore_DoesNotOverwriteExistingFiles(t *testing.T) {
	dir := t.TempDir()
	customContent := "pre-existing custom prompt %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "general.txt"), []byte(customContent), 0600))

	store, err := NewPromptStore(dir, testDefaults())
	require.NoError(t, err)
	_, _ = store.Load(driven.PromptGrounded)

	data, err := os.ReadFile(filepath.Join(dir, "general.txt"))
	require.NoError(t, err)
	assert.Equal(t, customContent, string(data))
}

func TestPromptStore_TrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "general.txt"), []byte("\n\n  prompt %s  \n\n"), 0600))

	store, err := NewPromptStore(dir, testDefaults())
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptGeneral)
	require.NoError(t, err)
	assert.Equal(t, "prompt %s", prompt)
}
