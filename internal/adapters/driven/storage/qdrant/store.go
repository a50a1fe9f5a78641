// Package qdrant provides a driven.VectorStore backed by a Qdrant collection over gRPC.
//
// Point IDs are derived from content hashes, so the collection itself is the
// dedupe index. Each point's payload carries the chunk metadata and the
// embedding model it was built with.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/custodia-labs/ragcore/internal/adapters/driven/storage/ranking"
	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Payload keys.
const (
	keyText        = "text"
	keySource      = "source"
	keyFileType    = "file_type"
	keyFileSize    = "file_size"
	keyChunkIndex  = "chunk_index"
	keyChunkSize   = "chunk_size"
	keyContentHash = "content_hash"
	keyModel       = "embedding_model"
	keyDimensions  = "dimensions"
)

// scrollPage is the number of points fetched per scroll request.
const scrollPage = 256

// pointNamespace scopes the name-based point IDs.
var pointNamespace = uuid.NameSpaceOID

// Config holds Qdrant connection settings.
type Config struct {
	Host       string
	Port       int
	APIKey     string
	Collection string
}

// Store is a Qdrant-backed vector store for one collection.
type Store struct {
	// mu serialises the check-then-upsert sequence within this process.
	mu         sync.RWMutex
	client     *qdrant.Client
	collection string
	location   string
}

// NewStore connects to Qdrant and verifies the server is reachable.
// An unreachable server is domain.ErrStoreUnavailable.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollectionName
	}

	clientConfig := &qdrant.Config{
		Host: cfg.Host,
		Port: cfg.Port,
	}
	if cfg.APIKey != "" {
		clientConfig.APIKey = cfg.APIKey
	}

	client, err := qdrant.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: creating qdrant client: %w", domain.ErrStoreUnavailable, err)
	}

	s := &Store{
		client:     client,
		collection: cfg.Collection,
		location:   fmt.Sprintf("qdrant://%s:%d/%s", cfg.Host, cfg.Port, cfg.Collection),
	}

	if _, err := s.exists(ctx); err != nil {
		client.Close()
		return nil, err
	}

	return s, nil
}

// classify maps a client error to a domain error.
func classify(op string, err error) error {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: qdrant unreachable during %s: %w", domain.ErrStoreUnavailable, op, err)
	default:
		return fmt.Errorf("%w: qdrant %s: %w", domain.ErrStoreUnavailable, op, err)
	}
}

// PointID returns the deterministic point ID for a content hash.
func PointID(contentHash string) string {
	return uuid.NewSHA1(pointNamespace, []byte(contentHash)).String()
}

func (s *Store) exists(ctx context.Context) (bool, error) {
	ok, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return false, classify("checking collection", err)
	}
	return ok, nil
}

// recordedModel reads the model from any stored point. Nil means the
// collection is missing or empty.
func (s *Store) recordedModel(ctx context.Context) (*domain.EmbeddingModel, error) {
	ok, err := s.exists(ctx)
	if err != nil || !ok {
		return nil, err
	}

	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Limit:          qdrant.PtrOf(uint32(1)),
		WithPayload:    qdrant.NewWithPayloadInclude(keyModel, keyDimensions),
	})
	if err != nil {
		return nil, classify("reading collection model", err)
	}
	if len(points) == 0 {
		return nil, nil
	}

	p := points[0].GetPayload()
	return &domain.EmbeddingModel{
		Name:       p[keyModel].GetStringValue(),
		Dimensions: int(p[keyDimensions].GetIntegerValue()),
	}, nil
}

func checkModel(recorded *domain.EmbeddingModel, model domain.EmbeddingModel) error {
	if recorded != nil && !recorded.Matches(model) {
		return fmt.Errorf("%w: collection uses %s, got %s", domain.ErrModelMismatch, recorded, model)
	}
	return nil
}

func (s *Store) ensureCollection(ctx context.Context, dims int) error {
	ok, err := s.exists(ctx)
	if err != nil || ok {
		return err
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dims),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return classify("creating collection", err)
	}
	return nil
}

// Add upserts records whose point does not exist yet.
func (s *Store) Add(ctx context.Context, model domain.EmbeddingModel, records []domain.EmbeddingRecord) (domain.AddResult, error) {
	var res domain.AddResult

	for _, r := range records {
		if len(r.Vector) != model.Dimensions {
			return res, fmt.Errorf("%w: record %s has %d dimensions, model %s",
				domain.ErrInvalidInput, r.ID, len(r.Vector), model)
		}
	}
	if len(records) == 0 {
		return res, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recorded, err := s.recordedModel(ctx)
	if err != nil {
		return res, err
	}
	if err := checkModel(recorded, model); err != nil {
		return res, err
	}
	if err := s.ensureCollection(ctx, model.Dimensions); err != nil {
		return res, err
	}

	existing, err := s.existingIDs(ctx, records)
	if err != nil {
		return res, err
	}

	points := make([]*qdrant.PointStruct, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		id := PointID(r.Chunk.Metadata.ContentHash)
		if existing[id] || seen[id] {
			res.Duplicates++
			continue
		}
		seen[id] = true
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(id),
			Vectors: qdrant.NewVectors(r.Vector...),
			Payload: payload(r.Chunk, model),
		})
	}

	if len(points) == 0 {
		return res, nil
	}

	if _, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	}); err != nil {
		return domain.AddResult{}, classify("upserting points", err)
	}

	res.Added = len(points)
	return res, nil
}

func (s *Store) existingIDs(ctx context.Context, records []domain.EmbeddingRecord) (map[string]bool, error) {
	ids := make([]*qdrant.PointId, len(records))
	for i, r := range records {
		ids[i] = qdrant.NewID(PointID(r.Chunk.Metadata.ContentHash))
	}

	found, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.collection,
		Ids:            ids,
		WithPayload:    qdrant.NewWithPayload(false),
	})
	if err != nil {
		return nil, classify("looking up points", err)
	}

	existing := make(map[string]bool, len(found))
	for _, p := range found {
		existing[p.GetId().GetUuid()] = true
	}
	return existing, nil
}

// payload converts chunk metadata into Qdrant values.
func payload(c domain.Chunk, model domain.EmbeddingModel) map[string]*qdrant.Value {
	m := c.Metadata
	return map[string]*qdrant.Value{
		keyText:        qdrant.NewValueString(c.Text),
		keySource:      qdrant.NewValueString(m.Source),
		keyFileType:    qdrant.NewValueString(string(m.FileType)),
		keyFileSize:    qdrant.NewValueInt(m.FileSize),
		keyChunkIndex:  qdrant.NewValueInt(int64(m.ChunkIndex)),
		keyChunkSize:   qdrant.NewValueInt(int64(m.ChunkSize)),
		keyContentHash: qdrant.NewValueString(m.ContentHash),
		keyModel:       qdrant.NewValueString(model.Name),
		keyDimensions:  qdrant.NewValueInt(int64(model.Dimensions)),
	}
}

// chunkFromPayload is the inverse of payload.
func chunkFromPayload(p map[string]*qdrant.Value) domain.Chunk {
	return domain.Chunk{
		Text: p[keyText].GetStringValue(),
		Metadata: domain.ChunkMetadata{
			Source:      p[keySource].GetStringValue(),
			FileType:    domain.FileType(p[keyFileType].GetStringValue()),
			FileSize:    p[keyFileSize].GetIntegerValue(),
			ChunkIndex:  int(p[keyChunkIndex].GetIntegerValue()),
			ChunkSize:   int(p[keyChunkSize].GetIntegerValue()),
			ContentHash: p[keyContentHash].GetStringValue(),
		},
	}
}

// buildFilter translates a metadata filter into keyword match conditions.
func buildFilter(f domain.MetadataFilter) *qdrant.Filter {
	if f.IsEmpty() {
		return nil
	}
	var must []*qdrant.Condition
	if f.Source != "" {
		must = append(must, qdrant.NewMatch(keySource, f.Source))
	}
	if f.FileType != "" {
		must = append(must, qdrant.NewMatch(keyFileType, string(f.FileType)))
	}
	return &qdrant.Filter{Must: must}
}

// Query asks Qdrant for the nearest points and converts scores to distances.
func (s *Store) Query(
	ctx context.Context,
	model domain.EmbeddingModel,
	vector []float32,
	topK int,
	filter domain.MetadataFilter,
) ([]domain.QueryResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recorded, err := s.recordedModel(ctx)
	if err != nil {
		return nil, err
	}
	if recorded == nil || topK <= 0 {
		return []domain.QueryResult{}, nil
	}
	if err := checkModel(recorded, model); err != nil {
		return nil, err
	}

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		Filter:         buildFilter(filter),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, classify("querying points", err)
	}

	results := make([]domain.QueryResult, 0, len(points))
	for _, p := range points {
		c := chunkFromPayload(p.GetPayload())
		results = append(results, domain.QueryResult{
			Text:     c.Text,
			Metadata: c.Metadata,
			Distance: ranking.DistanceFromCosineScore(float64(p.GetScore())),
		})
	}

	return ranking.Rank(results, topK), nil
}

// Count returns the exact number of points. A missing collection counts as empty.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count(ctx)
}

func (s *Store) count(ctx context.Context) (int, error) {
	ok, err := s.exists(ctx)
	if err != nil || !ok {
		return 0, err
	}

	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, classify("counting points", err)
	}
	return int(n), nil
}

// Hashes scrolls the whole collection and returns content hash to point ID.
func (s *Store) Hashes(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ok, err := s.exists(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[string]string{}, nil
	}

	return collectHashes(ctx, func(ctx context.Context, offset *qdrant.PointId, limit uint32) ([]*qdrant.RetrievedPoint, error) {
		return s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Offset:         offset,
			Limit:          qdrant.PtrOf(limit),
			WithPayload:    qdrant.NewWithPayloadInclude(keyContentHash),
		})
	})
}

// scrollFunc fetches up to limit points starting at offset, inclusive.
type scrollFunc func(ctx context.Context, offset *qdrant.PointId, limit uint32) ([]*qdrant.RetrievedPoint, error)

// collectHashes pages through scroll until a short page or a page with
// nothing new.
func collectHashes(ctx context.Context, scroll scrollFunc) (map[string]string, error) {
	hashes := make(map[string]string)

	var offset *qdrant.PointId
	for {
		points, err := scroll(ctx, offset, scrollPage)
		if err != nil {
			return nil, classify("scrolling points", err)
		}

		added := 0
		for _, p := range points {
			hash := p.GetPayload()[keyContentHash].GetStringValue()
			if _, seen := hashes[hash]; seen {
				// The scroll offset is inclusive
				continue
			}
			hashes[hash] = p.GetId().GetUuid()
			added++
		}

		if len(points) < scrollPage || added == 0 {
			return hashes, nil
		}
		offset = points[len(points)-1].GetId()
	}
}

// Clear drops the collection. It is recreated by the next Add.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.exists(ctx)
	if err != nil || !ok {
		return err
	}
	if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
		return classify("deleting collection", err)
	}
	return nil
}

// Info describes the collection.
func (s *Store) Info(ctx context.Context) (domain.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := domain.CollectionInfo{
		Name:     s.collection,
		Backend:  domain.StoreBackendQdrant.String(),
		Location: s.location,
	}

	n, err := s.count(ctx)
	if err != nil {
		return info, err
	}
	info.Count = n

	recorded, err := s.recordedModel(ctx)
	if err != nil {
		return info, err
	}
	if recorded != nil {
		info.EmbeddingModel = *recorded
	}
	return info, nil
}

// Close closes the gRPC connection.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Close(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
