// Package storetest provides a behavioural test suite run against every
// driven.VectorStore implementation.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
)

// Factory returns a fresh, empty store. Cleanup is registered on t.
type Factory func(t *testing.T) driven.VectorStore

// Model is the embedding model used by the suite.
var Model = domain.EmbeddingModel{Name: "test-model", Dimensions: 3}

// Record builds a record for text with the given vector.
func Record(source string, index int, text string, vector ...float32) domain.EmbeddingRecord {
	return domain.EmbeddingRecord{
		ID:     uuid.NewString(),
		Vector: vector,
		Chunk: domain.Chunk{
			Text: text,
			Metadata: domain.ChunkMetadata{
				Source:      source,
				FileType:    domain.FileTypeTXT,
				FileSize:    int64(len(text)),
				ChunkIndex:  index,
				ChunkSize:   len(text),
				ContentHash: domain.ContentHash(text),
			},
		},
	}
}

// Run executes the suite.
func Run(t *testing.T, newStore Factory) {
	t.Run("empty collection", func(t *testing.T) { testEmpty(t, newStore(t)) })
	t.Run("add and query", func(t *testing.T) { testAddAndQuery(t, newStore(t)) })
	t.Run("duplicates ignored", func(t *testing.T) { testDuplicates(t, newStore(t)) })
	t.Run("model mismatch", func(t *testing.T) { testModelMismatch(t, newStore(t)) })
	t.Run("filter", func(t *testing.T) { testFilter(t, newStore(t)) })
	t.Run("top_k clamped", func(t *testing.T) { testTopKClamp(t, newStore(t)) })
	t.Run("deterministic ties", func(t *testing.T) { testTies(t, newStore(t)) })
	t.Run("clear", func(t *testing.T) { testClear(t, newStore(t)) })
	t.Run("concurrent adds", func(t *testing.T) { testConcurrentAdds(t, newStore(t)) })
}

func testEmpty(t *testing.T, s driven.VectorStore) {
	ctx := context.Background()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	results, err := s.Query(ctx, Model, []float32{1, 0, 0}, 3, domain.MetadataFilter{})
	require.NoError(t, err)
	assert.Empty(t, results)

	hashes, err := s.Hashes(ctx)
	require.NoError(t, err)
	assert.Empty(t, hashes)

	// Any model may query an empty collection
	_, err = s.Query(ctx, domain.EmbeddingModel{Name: "other", Dimensions: 2}, []float32{1, 0}, 3, domain.MetadataFilter{})
	assert.NoError(t, err)
}

func testAddAndQuery(t *testing.T, s driven.VectorStore) {
	ctx := context.Background()

	res, err := s.Add(ctx, Model, []domain.EmbeddingRecord{
		Record("a.txt", 0, "alpha", 1, 0, 0),
		Record("a.txt", 1, "beta", 0, 1, 0),
		Record("b.txt", 0, "gamma", 0.9, 0.1, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Added)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	results, err := s.Query(ctx, Model, []float32{1, 0, 0}, 2, domain.MetadataFilter{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "alpha", results[0].Text)
	assert.Equal(t, "gamma", results[1].Text)
	assert.InDelta(t, 0.0, results[0].Distance, 1e-6)
	assert.LessOrEqual(t, results[0].Distance, results[1].Distance)

	for _, r := range results {
		assert.GreaterOrEqual(t, r.Distance, 0.0)
		assert.LessOrEqual(t, r.Distance, 1.0)
	}

	// Metadata round-trips
	assert.Equal(t, "a.txt", results[0].Metadata.Source)
	assert.Equal(t, domain.FileTypeTXT, results[0].Metadata.FileType)
	assert.Equal(t, domain.ContentHash("alpha"), results[0].Metadata.ContentHash)

	info, err := s.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, info.Count)
	assert.True(t, info.EmbeddingModel.Matches(Model))
}

func testDuplicates(t *testing.T, s driven.VectorStore) {
	ctx := context.Background()

	first := Record("a.txt", 0, "same text", 1, 0, 0)
	_, err := s.Add(ctx, Model, []domain.EmbeddingRecord{first})
	require.NoError(t, err)

	res, err := s.Add(ctx, Model, []domain.EmbeddingRecord{
		Record("b.txt", 5, "same text", 0, 1, 0),
		Record("b.txt", 6, "new text", 0, 0, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Duplicates)

	hashes, err := s.Hashes(ctx)
	require.NoError(t, err)
	assert.Len(t, hashes, 2)
	assert.Contains(t, hashes, domain.ContentHash("same text"))
}

func testModelMismatch(t *testing.T, s driven.VectorStore) {
	ctx := context.Background()

	_, err := s.Add(ctx, Model, []domain.EmbeddingRecord{Record("a.txt", 0, "alpha", 1, 0, 0)})
	require.NoError(t, err)

	other := domain.EmbeddingModel{Name: "other-model", Dimensions: 3}
	_, err = s.Add(ctx, other, []domain.EmbeddingRecord{Record("a.txt", 1, "beta", 0, 1, 0)})
	assert.ErrorIs(t, err, domain.ErrModelMismatch)

	_, err = s.Query(ctx, other, []float32{1, 0, 0}, 1, domain.MetadataFilter{})
	assert.ErrorIs(t, err, domain.ErrModelMismatch)

	// Nothing was written by the rejected add
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func testFilter(t *testing.T, s driven.VectorStore) {
	ctx := context.Background()

	pdf := Record("report.pdf", 0, "pdf text", 1, 0, 0)
	pdf.Chunk.Metadata.FileType = domain.FileTypePDF
	_, err := s.Add(ctx, Model, []domain.EmbeddingRecord{
		pdf,
		Record("notes.txt", 0, "notes text", 1, 0, 0),
		Record("notes.txt", 1, "more notes", 0, 1, 0),
	})
	require.NoError(t, err)

	results, err := s.Query(ctx, Model, []float32{1, 0, 0}, 10, domain.MetadataFilter{Source: "notes.txt"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, "notes.txt", r.Metadata.Source)
	}

	results, err = s.Query(ctx, Model, []float32{1, 0, 0}, 10, domain.MetadataFilter{FileType: domain.FileTypePDF})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "report.pdf", results[0].Metadata.Source)

	results, err = s.Query(ctx, Model, []float32{1, 0, 0}, 10,
		domain.MetadataFilter{Source: "notes.txt", FileType: domain.FileTypePDF})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func testTopKClamp(t *testing.T, s driven.VectorStore) {
	ctx := context.Background()

	_, err := s.Add(ctx, Model, []domain.EmbeddingRecord{
		Record("a.txt", 0, "one", 1, 0, 0),
		Record("a.txt", 1, "two", 0, 1, 0),
	})
	require.NoError(t, err)

	results, err := s.Query(ctx, Model, []float32{1, 1, 0}, 50, domain.MetadataFilter{})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func testTies(t *testing.T, s driven.VectorStore) {
	ctx := context.Background()

	_, err := s.Add(ctx, Model, []domain.EmbeddingRecord{
		Record("b.txt", 0, "tie b0", 1, 0, 0),
		Record("a.txt", 2, "tie a2", 1, 0, 0),
		Record("a.txt", 1, "tie a1", 1, 0, 0),
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		results, err := s.Query(ctx, Model, []float32{1, 0, 0}, 3, domain.MetadataFilter{})
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, []string{"tie a1", "tie a2", "tie b0"},
			[]string{results[0].Text, results[1].Text, results[2].Text})
	}
}

func testClear(t *testing.T, s driven.VectorStore) {
	ctx := context.Background()

	// Clearing an empty collection succeeds
	require.NoError(t, s.Clear(ctx))

	_, err := s.Add(ctx, Model, []domain.EmbeddingRecord{Record("a.txt", 0, "alpha", 1, 0, 0)})
	require.NoError(t, err)
	require.NoError(t, s.Clear(ctx))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	hashes, err := s.Hashes(ctx)
	require.NoError(t, err)
	assert.Empty(t, hashes)

	// The recorded model is reset, so a different model is accepted
	other := domain.EmbeddingModel{Name: "other-model", Dimensions: 2}
	res, err := s.Add(ctx, other, []domain.EmbeddingRecord{Record("a.txt", 0, "alpha", 1, 0)})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
}

func testConcurrentAdds(t *testing.T, s driven.VectorStore) {
	ctx := context.Background()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			records := make([]domain.EmbeddingRecord, 0, 5)
			for j := 0; j < 5; j++ {
				records = append(records, Record(fmt.Sprintf("w%d.txt", worker), j, fmt.Sprintf("shared %d", j), 1, 0, 0))
			}
			_, err := s.Add(ctx, Model, records)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}
