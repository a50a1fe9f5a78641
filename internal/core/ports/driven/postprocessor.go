package driven

import (
	"context"

	"github.com/custodia-labs/ragcore/internal/core/domain"
)

// ChunkSource is the input to the post-processor pipeline: a document's
// normalised text plus the metadata every chunk inherits.
type ChunkSource struct {
	Text     string
	Source   string
	FileType domain.FileType
	FileSize int64
}

// PostProcessor processes document text to produce chunks.
// PostProcessors are chained in a pipeline (e.g., chunking, hashing).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns chunks.
	// If the processor modifies chunks (e.g., hashing), it receives and returns chunks.
	// If the processor creates chunks (e.g., chunker), it receives nil and returns new chunks.
	Process(ctx context.Context, src *ChunkSource, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, src *ChunkSource) ([]domain.Chunk, error)
}

// PipelineBuilder builds a pipeline for one ingest call's chunking parameters.
type PipelineBuilder interface {
	// Build returns a pipeline, or domain.ErrInvalidConfig for bad options.
	Build(opts domain.ChunkOptions) (PostProcessorPipeline, error)
}
