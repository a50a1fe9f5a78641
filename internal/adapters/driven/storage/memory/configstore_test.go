package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigStore_TypedGetters(t *testing.T) {
	s := NewConfigStore()
	_ = s.Set("rag.chunk_size", 1000)
	_ = s.Set("rag.max_file_bytes", int64(1<<20))
	_ = s.Set("embedding.rate_limit", 2.5)
	_ = s.Set("debug", true)
	_ = s.Set("embedding.model", "hashing-v1-384")

	assert.Equal(t, 1000, s.GetInt("rag.chunk_size"))
	assert.Equal(t, 1<<20, s.GetInt("rag.max_file_bytes"))
	assert.Equal(t, 2, s.GetInt("embedding.rate_limit"))
	assert.InDelta(t, 2.5, s.GetFloat("embedding.rate_limit"), 1e-9)
	assert.InDelta(t, 1000.0, s.GetFloat("rag.chunk_size"), 1e-9)
	assert.True(t, s.GetBool("debug"))
	assert.Equal(t, "hashing-v1-384", s.GetString("embedding.model"))
}

func TestConfigStore_MissingAndWrongType(t *testing.T) {
	s := NewConfigStore()
	_ = s.Set("key", "text")

	_, ok := s.Get("missing")
	assert.False(t, ok)
	assert.Empty(t, s.GetString("missing"))
	assert.Zero(t, s.GetInt("key"))
	assert.Zero(t, s.GetFloat("key"))
	assert.False(t, s.GetBool("key"))
}

func TestConfigStore_SaveLoadPath(t *testing.T) {
	s := NewConfigStore()
	assert.NoError(t, s.Save())
	assert.NoError(t, s.Load())
	assert.Equal(t, ":memory:", s.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	s := NewConfigStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = s.Set(fmt.Sprintf("key.%d", n), n)
		}(i)
		go func(n int) {
			defer wg.Done()
			_ = s.GetInt(fmt.Sprintf("key.%d", n))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		assert.Equal(t, i, s.GetInt(fmt.Sprintf("key.%d", i)))
	}
}
