// Package hasher stamps each chunk with the fingerprint used for deduplication.
package hasher

import (
	"context"

	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// Processor sets Metadata.ContentHash to the SHA-1 hex digest of the chunk text.
type Processor struct{}

// New creates a hasher processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "hasher"
}

// Process hashes chunks in place and returns them.
func (p *Processor) Process(_ context.Context, _ *driven.ChunkSource, chunks []domain.Chunk) ([]domain.Chunk, error) {
	for i := range chunks {
		chunks[i].Metadata.ContentHash = domain.ContentHash(chunks[i].Text)
	}
	return chunks, nil
}
