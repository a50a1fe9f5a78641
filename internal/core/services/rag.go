package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
	"github.com/custodia-labs/ragcore/internal/core/ports/driving"
	"github.com/custodia-labs/ragcore/internal/logger"
)

// Ensure RAGService implements the interface.
var _ driving.RAGService = (*RAGService)(nil)

// RAGService runs ingestion (extract, chunk, dedupe, embed, store) and
// retrieval (embed, rank, assemble) against one collection.
type RAGService struct {
	// mu serialises the dedupe-embed-add sequence and clear.
	mu sync.Mutex

	normalisers  driven.NormaliserRegistry
	pipelines    driven.PipelineBuilder
	embedder     driven.EmbeddingService
	store        driven.VectorStore
	metrics      driven.Metrics
	maxFileBytes int64
	defaults     domain.ChunkOptions
}

// RAGOption configures a RAGService.
type RAGOption func(*RAGService)

// WithMetrics sets the metrics recorder. Nil disables recording.
func WithMetrics(m driven.Metrics) RAGOption {
	return func(s *RAGService) {
		s.metrics = m
	}
}

// WithMaxFileBytes caps the accepted document size. Zero disables the check.
func WithMaxFileBytes(n int64) RAGOption {
	return func(s *RAGService) {
		s.maxFileBytes = n
	}
}

// WithDefaultChunkOptions sets the chunking used when a request leaves both
// ChunkSize and Overlap at zero.
func WithDefaultChunkOptions(opts domain.ChunkOptions) RAGOption {
	return func(s *RAGService) {
		s.defaults = opts
	}
}

// NewRAGService creates a new RAG service.
func NewRAGService(
	normalisers driven.NormaliserRegistry,
	pipelines driven.PipelineBuilder,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	opts ...RAGOption,
) *RAGService {
	s := &RAGService{
		normalisers:  normalisers,
		pipelines:    pipelines,
		embedder:     embedder,
		store:        store,
		maxFileBytes: domain.DefaultMaxFileBytes,
		defaults: domain.ChunkOptions{
			Size:    domain.DefaultChunkSize,
			Overlap: domain.DefaultChunkOverlap,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// model describes the embedder's output for the store's mismatch check.
func (s *RAGService) model() domain.EmbeddingModel {
	return domain.EmbeddingModel{Name: s.embedder.ModelName(), Dimensions: s.embedder.Dimensions()}
}

// Ingest extracts, chunks, deduplicates, embeds and stores one document.
func (s *RAGService) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestReport, error) {
	logger.Section("Ingest")
	logger.Debug("Document: %q (%d bytes)", req.FileName, len(req.Content))

	opts := domain.ChunkOptions{Size: req.ChunkSize, Overlap: req.Overlap}
	if opts.Size == 0 && opts.Overlap == 0 {
		opts = s.defaults
	}

	// Invalid chunking fails the call before any work
	pipeline, err := s.pipelines.Build(opts)
	if err != nil {
		return nil, err
	}

	report := &domain.IngestReport{Source: req.FileName}

	text, err := s.extract(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("Skipping %s: %v", req.FileName, err)
		report.Errors = append(report.Errors, domain.IngestError{Source: req.FileName, ChunkIndex: -1, Err: err})
		s.recordIngest(report, true)
		return report, nil
	}

	chunks, err := pipeline.Process(ctx, &driven.ChunkSource{
		Text:     text,
		Source:   req.FileName,
		FileType: s.fileType(req),
		FileSize: int64(len(req.Content)),
	})
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", req.FileName, err)
	}

	report.TotalChunks = len(chunks)
	logger.Debug("Chunks: %d (size=%d, overlap=%d)", len(chunks), opts.Size, opts.Overlap)
	if len(chunks) == 0 {
		s.recordIngest(report, false)
		return report, nil
	}

	if err := s.persist(ctx, chunks, report); err != nil {
		return nil, err
	}

	logger.Info("Ingested %s: %d accepted, %d duplicates, %d errors",
		req.FileName, report.Accepted, report.SkippedDuplicates, len(report.Errors))
	s.recordIngest(report, false)

	return report, nil
}

// fileType resolves the request's type, falling back to the file name.
func (s *RAGService) fileType(req domain.IngestRequest) domain.FileType {
	if req.FileType != "" {
		return req.FileType
	}
	t, _ := domain.FileTypeFromName(req.FileName)
	return t
}

// extract validates the request and returns the document's normalised text.
func (s *RAGService) extract(ctx context.Context, req domain.IngestRequest) (string, error) {
	fileType := req.FileType
	if fileType == "" {
		t, err := domain.FileTypeFromName(req.FileName)
		if err != nil {
			return "", err
		}
		fileType = t
	}
	if !fileType.IsValid() {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, fileType)
	}

	size := int64(len(req.Content))
	if s.maxFileBytes > 0 && size > s.maxFileBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds limit of %d", domain.ErrInvalidInput, size, s.maxFileBytes)
	}

	defer logger.Timed("extract " + req.FileName)()

	return s.normalisers.Normalise(ctx, &domain.Document{
		SourceName: req.FileName,
		FileType:   fileType,
		ByteSize:   size,
		Content:    req.Content,
	})
}

// persist deduplicates, embeds and stores chunks, filling in report.
// The whole sequence holds the mutation lock so concurrent ingests cannot
// both accept the same hash.
func (s *RAGService) persist(ctx context.Context, chunks []domain.Chunk, report *domain.IngestReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.store.Hashes(ctx)
	if err != nil {
		return fmt.Errorf("load hash index: %w", err)
	}

	accepted, skipped := Filter(chunks, NewHashSet(index))
	report.SkippedDuplicates = skipped
	logger.Debug("Dedupe: %d new, %d duplicates", len(accepted), skipped)
	if len(accepted) == 0 {
		return nil
	}

	records, err := s.embed(ctx, accepted, report)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	res, err := s.store.Add(ctx, s.model(), records)
	if err != nil {
		return fmt.Errorf("store %s: %w", report.Source, err)
	}

	report.Accepted = res.Added
	report.SkippedDuplicates += res.Duplicates

	if s.metrics != nil {
		if n, err := s.store.Count(ctx); err == nil {
			s.metrics.SetCollectionSize(n)
		}
	}

	return nil
}

// embed turns chunks into records. A failed batch is retried chunk by chunk
// so one bad chunk does not fail its siblings; per-chunk failures are added
// to report.
func (s *RAGService) embed(ctx context.Context, chunks []domain.Chunk, report *domain.IngestReport) ([]domain.EmbeddingRecord, error) {
	defer logger.Timed(fmt.Sprintf("embed %d chunks", len(chunks)))()

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil || len(vectors) != len(chunks) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Debug("Batch embedding failed, embedding chunks individually: %v", err)
		vectors = make([][]float32, len(chunks))
		for i, text := range texts {
			v, err := s.embedder.Embed(ctx, text)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				vectors[i] = nil
				report.Errors = append(report.Errors, chunkError(chunks[i], embeddingError(err)))
				continue
			}
			vectors[i] = v
		}
	}

	dims := s.embedder.Dimensions()
	records := make([]domain.EmbeddingRecord, 0, len(chunks))
	for i, c := range chunks {
		v := vectors[i]
		if v == nil {
			if !hasChunkError(report, c) {
				report.Errors = append(report.Errors,
					chunkError(c, fmt.Errorf("%w: empty vector", domain.ErrEmbedding)))
			}
			continue
		}
		if len(v) != dims {
			report.Errors = append(report.Errors,
				chunkError(c, fmt.Errorf("%w: got %d dimensions, want %d", domain.ErrEmbedding, len(v), dims)))
			continue
		}
		records = append(records, domain.EmbeddingRecord{
			ID:     uuid.NewString(),
			Vector: v,
			Chunk:  c,
		})
	}

	return records, nil
}

func chunkError(c domain.Chunk, err error) domain.IngestError {
	return domain.IngestError{Source: c.Metadata.Source, ChunkIndex: c.Metadata.ChunkIndex, Err: err}
}

func hasChunkError(report *domain.IngestReport, c domain.Chunk) bool {
	for _, e := range report.Errors {
		if e.ChunkIndex == c.Metadata.ChunkIndex && e.Source == c.Metadata.Source {
			return true
		}
	}
	return false
}

// embeddingError ensures err is classified as an embedding failure.
func embeddingError(err error) error {
	if errors.Is(err, domain.ErrEmbedding) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
}

func (s *RAGService) recordIngest(report *domain.IngestReport, docFailed bool) {
	if s.metrics == nil {
		return
	}
	chunkErrors := len(report.Errors)
	if docFailed {
		chunkErrors = 0
	}
	s.metrics.RecordIngest(report.Accepted, report.SkippedDuplicates, chunkErrors, docFailed)
}

// IngestFiles ingests documents in order. It stops before the next document
// when ctx is cancelled and returns the reports gathered so far with the
// context error. A store or config failure also stops the batch.
func (s *RAGService) IngestFiles(
	ctx context.Context, reqs []domain.IngestRequest, progress domain.ProgressFunc,
) ([]*domain.IngestReport, error) {
	reports := make([]*domain.IngestReport, 0, len(reqs))

	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			logger.Warn("Ingestion cancelled after %d of %d documents", i, len(reqs))
			return reports, err
		}

		report, err := s.Ingest(ctx, req)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)

		if progress != nil {
			progress(domain.IngestProgress{Index: i, Total: len(reqs), Report: report})
		}
	}

	return reports, nil
}

// Retrieve embeds the query, ranks stored chunks and assembles context.
// An empty collection yields an empty result without embedding the query.
func (s *RAGService) Retrieve(ctx context.Context, req domain.RetrieveRequest) (result *domain.RetrievalResult, err error) {
	logger.Section("Retrieve")
	logger.Debug("Query: %q, top_k=%d, max_context_chars=%d", req.Query, req.TopK, req.MaxContextChars)

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}
	if req.TopK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidConfig, req.TopK)
	}
	if req.MaxContextChars <= 0 {
		return nil, fmt.Errorf("%w: max_context_chars must be positive, got %d",
			domain.ErrInvalidConfig, req.MaxContextChars)
	}

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			n := 0
			if result != nil {
				n = len(result.Sources)
			}
			s.metrics.RecordRetrieval(time.Since(start), n, err)
		}
	}()

	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}
	if count == 0 {
		logger.Debug("Collection is empty, skipping retrieval")
		return &domain.RetrievalResult{Sources: []domain.Source{}}, nil
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", embeddingError(err))
	}

	results, err := s.store.Query(ctx, s.model(), vector, req.TopK, req.Filter)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	logger.Debug("Ranked results: %d", len(results))

	assembled, sources := Assemble(results, req.MaxContextChars)
	logger.Info("Assembled %d of %d results into %d characters", len(sources), len(results), len(assembled))

	return &domain.RetrievalResult{
		Context: assembled,
		Sources: sources,
		Results: results,
	}, nil
}

// ClearAll deletes every record and the hash index.
func (s *RAGService) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	logger.Info("Collection cleared")

	if s.metrics != nil {
		s.metrics.SetCollectionSize(0)
	}
	return nil
}

// CollectionSize returns the number of stored records.
func (s *RAGService) CollectionSize(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

// CollectionInfo describes the collection.
func (s *RAGService) CollectionInfo(ctx context.Context) (domain.CollectionInfo, error) {
	return s.store.Info(ctx)
}
