// Package hashing provides a deterministic, offline embedding service based on
// feature hashing of word unigrams and bigrams.
package hashing

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"

	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "hashing-v1-384"
	DefaultDimensions = 384
)

// bigramWeight scales bigram features relative to unigrams.
const bigramWeight = 0.5

// Config holds configuration for the hashing embedding service.
type Config struct {
	// Model is the reported model name (default: hashing-v1-384).
	Model string

	// Dimensions is the number of hash buckets (default: 384).
	Dimensions int
}

// EmbeddingService maps text to L2-normalised signed feature-hash vectors.
// Identical text always yields an identical vector, so it needs no network
// and no model download.
type EmbeddingService struct {
	model      string
	dimensions int
}

// NewEmbeddingService creates a new hashing embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	return &EmbeddingService{
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// Embed generates a vector embedding for the given text.
// Text without any word characters yields the zero vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float64, s.dimensions)
	tokens := tokenize(text)

	for i, tok := range tokens {
		s.add(vec, tok, 1)
		if i > 0 {
			s.add(vec, tokens[i-1]+" "+tok, bigramWeight)
		}
	}

	return normalise(vec), nil
}

// add accumulates one feature into its signed bucket.
func (s *EmbeddingService) add(vec []float64, feature string, weight float64) {
	h := xxhash.Sum64String(feature)
	bucket := h % uint64(s.dimensions)
	if h>>63 == 1 {
		weight = -weight
	}
	vec[bucket] += weight
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping always succeeds; the service is in-process.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// tokenize lowercases text and splits it into runs of letters and digits.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalise(vec []float64) []float32 {
	var sum float64
	for _, x := range vec {
		sum += x * x
	}

	out := make([]float32, len(vec))
	if sum == 0 {
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i, x := range vec {
		out[i] = float32(x * inv)
	}
	return out
}
