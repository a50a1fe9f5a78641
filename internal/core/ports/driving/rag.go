package driving

import (
	"context"

	"github.com/custodia-labs/ragcore/internal/core/domain"
)

// RAGService is the ingestion and retrieval surface of the engine.
type RAGService interface {
	// Ingest extracts, chunks, deduplicates, embeds and stores one document.
	// Document-level and chunk-level failures are collected in the report;
	// config and store failures are returned as errors.
	Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestReport, error)

	// IngestFiles ingests documents in order, calling progress once per document.
	// It stops between documents when ctx is cancelled.
	IngestFiles(ctx context.Context, reqs []domain.IngestRequest, progress domain.ProgressFunc) ([]*domain.IngestReport, error)

	// Retrieve ranks stored chunks against the query and assembles bounded context.
	Retrieve(ctx context.Context, req domain.RetrieveRequest) (*domain.RetrievalResult, error)

	// ClearAll irreversibly deletes every record and the dedupe index.
	ClearAll(ctx context.Context) error

	// CollectionSize returns the number of stored records.
	CollectionSize(ctx context.Context) (int, error)

	// CollectionInfo describes the collection.
	CollectionInfo(ctx context.Context) (domain.CollectionInfo, error)
}
