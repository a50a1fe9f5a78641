package driven

import (
	"context"

	"github.com/custodia-labs/ragcore/internal/core/domain"
)

// VectorStore persists embedding records for one collection together with
// the collection's dedupe hash index, and answers nearest-neighbour queries.
//
// Distance is cosine based and bounded: (1 - cos) / 2, in [0,1].
// Mutations (Add, Clear) are serialised per collection; Query and Count
// observe a consistent snapshot.
type VectorStore interface {
	// Add persists records embedded with model.
	// Returns domain.ErrModelMismatch, writing nothing, if the collection is
	// non-empty and was built with a different model.
	// Records whose content hash is already stored are ignored and counted
	// as duplicates.
	Add(ctx context.Context, model domain.EmbeddingModel, records []domain.EmbeddingRecord) (domain.AddResult, error)

	// Query returns up to topK records closest to vector, ascending by distance,
	// considering only records matching filter. An empty collection yields an
	// empty slice.
	Query(
		ctx context.Context,
		model domain.EmbeddingModel,
		vector []float32,
		topK int,
		filter domain.MetadataFilter,
	) ([]domain.QueryResult, error)

	// Count returns the number of persisted records.
	Count(ctx context.Context) (int, error)

	// Hashes returns the dedupe index: content hash to record ID.
	Hashes(ctx context.Context) (map[string]string, error)

	// Clear deletes every record, the hash index and the recorded model.
	// Clearing an empty collection succeeds.
	Clear(ctx context.Context) error

	// Info describes the collection.
	Info(ctx context.Context) (domain.CollectionInfo, error)

	// Close releases resources.
	Close() error
}
