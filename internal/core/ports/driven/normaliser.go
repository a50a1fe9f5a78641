package driven

import (
	"context"

	"github.com/custodia-labs/ragcore/internal/core/domain"
)

// Normaliser extracts a single normalised text string from a document.
// Each normaliser handles specific file types (e.g., PDF, DOCX).
type Normaliser interface {
	// SupportedTypes returns the file types this normaliser handles.
	SupportedTypes() []domain.FileType

	// Normalise extracts the document's text.
	// Returns domain.ErrExtractionFailure if no text can be recovered.
	Normalise(ctx context.Context, doc *domain.Document) (string, error)
}
