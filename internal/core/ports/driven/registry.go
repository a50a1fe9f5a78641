package driven

import (
	"context"

	"github.com/custodia-labs/ragcore/internal/core/domain"
)

// NormaliserRegistry selects the appropriate normaliser for a document.
type NormaliserRegistry interface {
	// Normalise extracts text using the normaliser registered for the document's type.
	// Returns domain.ErrUnsupportedFormat if none is registered.
	Normalise(ctx context.Context, doc *domain.Document) (string, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedTypes returns all file types that can be normalised.
	SupportedTypes() []domain.FileType
}
