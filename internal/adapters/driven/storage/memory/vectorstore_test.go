package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragcore/internal/adapters/driven/storage/storetest"
	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
)

func TestVectorStore(t *testing.T) {
	storetest.Run(t, func(_ *testing.T) driven.VectorStore {
		return NewVectorStore("test")
	})
}

func TestVectorStore_Info(t *testing.T) {
	s := NewVectorStore("")

	info, err := s.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCollectionName, info.Name)
	assert.Equal(t, "memory", info.Backend)
	assert.Equal(t, ":memory:", info.Location)
	assert.Equal(t, 0, info.Count)
}

func TestVectorStore_Add_DimensionMismatch(t *testing.T) {
	s := NewVectorStore("test")

	_, err := s.Add(context.Background(), storetest.Model,
		[]domain.EmbeddingRecord{storetest.Record("a.txt", 0, "short", 1, 0)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
