package domain

import (
	"fmt"
	"os"
	"path/filepath"
)

const unknownDescription = "Unknown"

// Default retrieval settings.
const (
	DefaultChunkSize       = 1000
	DefaultChunkOverlap    = 200
	DefaultTopK            = 3
	DefaultMaxContextChars = 2000
	DefaultMaxFileBytes    = 50 << 20
	DefaultCollectionName  = "documents"
)

// AIProvider identifies an embedding provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderHashing is the built-in local feature-hashing embedder.
	AIProviderHashing AIProvider = "hashing"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderHashing, AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHashing
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderHashing:
		return "Hashing (built-in, offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// StoreBackend selects the vector store implementation.
type StoreBackend string

// Available store backends.
const (
	// StoreBackendSQLite is the durable embedded store.
	StoreBackendSQLite StoreBackend = "sqlite"

	// StoreBackendMemory is the ephemeral in-process store.
	StoreBackendMemory StoreBackend = "memory"

	// StoreBackendQdrant is a remote Qdrant collection over gRPC.
	StoreBackendQdrant StoreBackend = "qdrant"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendSQLite, StoreBackendMemory, StoreBackendQdrant:
		return true
	default:
		return false
	}
}

// IsDurable returns true if records survive the process.
func (b StoreBackend) IsDurable() bool {
	return b == StoreBackendSQLite || b == StoreBackendQdrant
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// RAGSettings holds the caller-adjustable chunking and retrieval parameters.
type RAGSettings struct {
	ChunkSize       int
	Overlap         int
	TopK            int
	MaxContextChars int
	MaxFileBytes    int64
}

// ChunkOptions returns the chunking parameters.
func (r RAGSettings) ChunkOptions() ChunkOptions {
	return ChunkOptions{Size: r.ChunkSize, Overlap: r.Overlap}
}

// Validate returns ErrInvalidConfig for unusable parameters.
func (r RAGSettings) Validate() error {
	if err := r.ChunkOptions().Validate(); err != nil {
		return err
	}
	if r.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", ErrInvalidConfig, r.TopK)
	}
	if r.MaxContextChars <= 0 {
		return fmt.Errorf("%w: max_context_chars must be positive, got %d", ErrInvalidConfig, r.MaxContextChars)
	}
	if r.MaxFileBytes < 0 {
		return fmt.Errorf("%w: max_file_bytes must not be negative, got %d", ErrInvalidConfig, r.MaxFileBytes)
	}
	return nil
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RateLimit caps embedding requests per second. Zero disables throttling.
	RateLimit float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// QdrantSettings holds connection details for the Qdrant backend.
type QdrantSettings struct {
	Host   string
	Port   int
	APIKey string
}

// StoreSettings holds vector store configuration.
type StoreSettings struct {
	// Backend selects the store implementation.
	Backend StoreBackend

	// Path is the data directory for the sqlite backend.
	// Empty means an ephemeral store that is discarded on close.
	Path string

	// Collection is the logical collection name.
	Collection string

	// Qdrant holds settings for the qdrant backend.
	Qdrant QdrantSettings
}

// AppSettings holds all application settings.
type AppSettings struct {
	RAG       RAGSettings
	Embedding EmbeddingSettings
	Store     StoreSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The built-in hashing embedder and the sqlite store work without any setup.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		RAG: RAGSettings{
			ChunkSize:       DefaultChunkSize,
			Overlap:         DefaultChunkOverlap,
			TopK:            DefaultTopK,
			MaxContextChars: DefaultMaxContextChars,
			MaxFileBytes:    DefaultMaxFileBytes,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderHashing,
			Model:    DefaultEmbeddingModels()[AIProviderHashing],
		},
		Store: StoreSettings{
			Backend:    StoreBackendSQLite,
			Path:       DefaultDataDir(),
			Collection: DefaultCollectionName,
			Qdrant: QdrantSettings{
				Host: "localhost",
				Port: 6334,
			},
		},
	}
}

// DefaultDataDir returns ~/.ragcore/data, or "" when the home directory
// cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ragcore", "data")
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderHashing,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllStoreBackends returns every store backend.
func AllStoreBackends() []StoreBackend {
	return []StoreBackend{
		StoreBackendSQLite,
		StoreBackendMemory,
		StoreBackendQdrant,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderHashing: "hashing-v1-384",
		AIProviderOllama:  "nomic-embed-text",
		AIProviderOpenAI:  "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"hashing-v1-384": 384,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
