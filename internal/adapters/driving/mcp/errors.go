// Package mcp provides an MCP (Model Context Protocol) server adapter for ragcore.
// It lets AI assistants retrieve grounded context from, and add documents to,
// the local collection.
package mcp

import "errors"

// ErrMissingRAGService is returned when the RAG service is not provided.
var ErrMissingRAGService = errors.New("mcp: rag service is required")
