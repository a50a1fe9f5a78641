package normalisers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
	"github.com/custodia-labs/ragcore/internal/normalisers/docx"
	"github.com/custodia-labs/ragcore/internal/normalisers/pdf"
	"github.com/custodia-labs/ragcore/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches extraction to the normaliser registered for a file type.
// A later registration for the same type replaces the earlier one.
type Registry struct {
	mu     sync.RWMutex
	byType map[domain.FileType]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[domain.FileType]driven.Normaliser),
	}
}

// NewDefaultRegistry creates a registry with the pdf, docx and plaintext normalisers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(plaintext.New())
	return r
}

// Register adds a normaliser for each of its supported types.
func (r *Registry) Register(normaliser driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ft := range normaliser.SupportedTypes() {
		r.byType[ft] = normaliser
	}
}

// Normalise extracts the document's text with the matching normaliser.
func (r *Registry) Normalise(ctx context.Context, doc *domain.Document) (string, error) {
	if doc == nil {
		return "", domain.ErrInvalidInput
	}

	r.mu.RLock()
	normaliser, ok := r.byType[doc.FileType]
	r.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %q for %s", domain.ErrUnsupportedFormat, doc.FileType, doc.SourceName)
	}

	return normaliser.Normalise(ctx, doc)
}

// SupportedTypes returns all registered file types in sorted order.
func (r *Registry) SupportedTypes() []domain.FileType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]domain.FileType, 0, len(r.byType))
	for ft := range r.byType {
		types = append(types, ft)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
