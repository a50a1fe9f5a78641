package postprocessors

import (
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
	"github.com/custodia-labs/ragcore/internal/postprocessors/chunker"
	"github.com/custodia-labs/ragcore/internal/postprocessors/hasher"
)

// DefaultOrder is the processor sequence used for ingestion.
var DefaultOrder = []string{"chunker", "hasher"}

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
	r.Register("hasher", buildHasher)
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 1000)
//   - overlap (int): Overlapping characters between chunks (default: 200)
//   - separators ([]string): Boundary strings, one priority level each, highest first
//
// Present keys are passed through unchanged so invalid values are rejected.
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if size, ok := getIntFromConfig(cfg, "chunk_size"); ok {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := getIntFromConfig(cfg, "overlap"); ok {
		opts = append(opts, chunker.WithOverlap(overlap))
	}
	if seps, ok := cfg["separators"].([]string); ok && len(seps) > 0 {
		levels := make([][]string, len(seps))
		for i, sep := range seps {
			levels[i] = []string{sep}
		}
		opts = append(opts, chunker.WithSeparators(levels))
	}

	return chunker.New(opts...)
}

func buildHasher(_ map[string]any) (driven.PostProcessor, error) {
	return hasher.New(), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
