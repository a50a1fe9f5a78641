package retrieve

import "errors"

// Error definitions for the retrieve view.
var (
	// ErrNoRAGService indicates that no RAG service was provided.
	ErrNoRAGService = errors.New("rag service is required")
)
