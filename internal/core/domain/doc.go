// Package domain defines the core business entities for ragcore.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded artifact awaiting extraction
//   - Chunk: A contiguous substring of a document's text with fixed metadata
//   - EmbeddingRecord: The persisted unit of the vector store
//   - QueryResult: A ranked, ephemeral retrieval hit
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
