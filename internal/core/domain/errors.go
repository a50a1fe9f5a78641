package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Pipeline Errors.

	// ErrUnsupportedFormat indicates a document type no normaliser can extract.
	// Fatal for that document only.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrExtractionFailure indicates no text could be recovered from a document.
	// Fatal for that document only.
	ErrExtractionFailure = errors.New("extraction failure")

	// ErrInvalidConfig indicates non-positive or inconsistent chunking or retrieval parameters.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrEmbedding indicates the embedding backend failed for a chunk or query.
	ErrEmbedding = errors.New("embedding error")

	// Store Errors.

	// ErrModelMismatch indicates an attempt to mix vectors from different embedding
	// models in one collection.
	ErrModelMismatch = errors.New("embedding model mismatch")

	// ErrStoreUnavailable indicates the persistence backend cannot be reached or opened.
	ErrStoreUnavailable = errors.New("store unavailable")
)
