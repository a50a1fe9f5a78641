package mcp

import (
	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
	"github.com/custodia-labs/ragcore/internal/core/ports/driving"
)

// Ports aggregates the dependencies of the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// RAG provides ingestion and retrieval.
	RAG driving.RAGService

	// Defaults fills tool arguments the caller leaves unset.
	// Zero fields fall back to the domain defaults.
	Defaults domain.RAGSettings

	// Prompts serves prompt templates as resources. Optional.
	Prompts driven.PromptStore
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.RAG == nil {
		return ErrMissingRAGService
	}
	return nil
}

// defaults returns Defaults with zero fields replaced by domain defaults.
func (p *Ports) defaults() domain.RAGSettings {
	d := p.Defaults
	if d.ChunkSize == 0 && d.Overlap == 0 {
		d.ChunkSize, d.Overlap = domain.DefaultChunkSize, domain.DefaultChunkOverlap
	}
	if d.TopK == 0 {
		d.TopK = domain.DefaultTopK
	}
	if d.MaxContextChars == 0 {
		d.MaxContextChars = domain.DefaultMaxContextChars
	}
	return d
}
