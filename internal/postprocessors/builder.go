package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
)

// Ensure Builder implements the interface.
var _ driven.PipelineBuilder = (*Builder)(nil)

// Builder assembles a pipeline per ingest call from registered processors.
type Builder struct {
	registry *Registry
	order    []string
}

// NewBuilder creates a builder over the registry using the given processor
// order. An empty order uses DefaultOrder.
func NewBuilder(registry *Registry, order ...string) *Builder {
	if len(order) == 0 {
		order = DefaultOrder
	}
	return &Builder{registry: registry, order: order}
}

// NewDefaultBuilder creates a builder with the built-in processors registered.
func NewDefaultBuilder() *Builder {
	r := NewRegistry()
	RegisterDefaults(r)
	return NewBuilder(r)
}

// Build validates opts and returns a pipeline configured with them.
func (b *Builder) Build(opts domain.ChunkOptions) (driven.PostProcessorPipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	cfg := map[string]any{
		"chunk_size": opts.Size,
		"overlap":    opts.Overlap,
	}

	pipeline := NewPipeline()
	for _, name := range b.order {
		processor, err := b.registry.Build(name, cfg)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", name, err)
		}
		pipeline.Add(processor)
	}

	return pipeline, nil
}
