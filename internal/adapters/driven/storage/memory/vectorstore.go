package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/ragcore/internal/adapters/driven/storage/ranking"
	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an ephemeral in-process implementation of driven.VectorStore.
// Records are lost when the process exits.
type VectorStore struct {
	mu      sync.RWMutex
	name    string
	model   *domain.EmbeddingModel
	records []domain.EmbeddingRecord
	hashes  map[string]string
}

// NewVectorStore creates an empty in-memory collection.
func NewVectorStore(name string) *VectorStore {
	if name == "" {
		name = domain.DefaultCollectionName
	}
	return &VectorStore{
		name:   name,
		hashes: make(map[string]string),
	}
}

// checkModel returns ErrModelMismatch if the collection was built with a different model.
// Caller must hold the lock.
func (s *VectorStore) checkModel(model domain.EmbeddingModel) error {
	if s.model != nil && len(s.records) > 0 && !s.model.Matches(model) {
		return fmt.Errorf("%w: collection uses %s, got %s", domain.ErrModelMismatch, s.model, model)
	}
	return nil
}

// Add stores records, ignoring those whose content hash is already present.
func (s *VectorStore) Add(_ context.Context, model domain.EmbeddingModel, records []domain.EmbeddingRecord) (domain.AddResult, error) {
	var res domain.AddResult

	for _, r := range records {
		if len(r.Vector) != model.Dimensions {
			return res, fmt.Errorf("%w: record %s has %d dimensions, model %s",
				domain.ErrInvalidInput, r.ID, len(r.Vector), model)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkModel(model); err != nil {
		return res, err
	}

	for _, r := range records {
		hash := r.Chunk.Metadata.ContentHash
		if _, exists := s.hashes[hash]; exists {
			res.Duplicates++
			continue
		}
		s.hashes[hash] = r.ID
		s.records = append(s.records, r)
		res.Added++
	}

	if res.Added > 0 && s.model == nil {
		m := model
		s.model = &m
	}

	return res, nil
}

// Query returns the topK records closest to vector that match filter.
func (s *VectorStore) Query(
	_ context.Context,
	model domain.EmbeddingModel,
	vector []float32,
	topK int,
	filter domain.MetadataFilter,
) ([]domain.QueryResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 || topK <= 0 {
		return []domain.QueryResult{}, nil
	}
	if err := s.checkModel(model); err != nil {
		return nil, err
	}

	results := make([]domain.QueryResult, 0, len(s.records))
	for _, r := range s.records {
		if !filter.Matches(r.Chunk.Metadata) {
			continue
		}
		results = append(results, domain.QueryResult{
			Text:     r.Chunk.Text,
			Metadata: r.Chunk.Metadata,
			Distance: ranking.CosineDistance(vector, r.Vector),
		})
	}

	return ranking.Rank(results, topK), nil
}

// Count returns the number of stored records.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Hashes returns a copy of the hash index.
func (s *VectorStore) Hashes(_ context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.hashes))
	for k, v := range s.hashes {
		out[k] = v
	}
	return out, nil
}

// Clear deletes all records, the hash index and the recorded model.
func (s *VectorStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.hashes = make(map[string]string)
	s.model = nil
	return nil
}

// Info describes the collection.
func (s *VectorStore) Info(_ context.Context) (domain.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := domain.CollectionInfo{
		Name:     s.name,
		Backend:  domain.StoreBackendMemory.String(),
		Location: ":memory:",
		Count:    len(s.records),
	}
	if s.model != nil {
		info.EmbeddingModel = *s.model
	}
	return info, nil
}

// Close is a no-op.
func (s *VectorStore) Close() error {
	return nil
}
