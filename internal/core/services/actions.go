package services

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driving"
)

// Ensure ResultActionService implements the interface.
var _ driving.ResultActionService = (*ResultActionService)(nil)

// ResultActionService provides actions on retrieved chunks and context.
type ResultActionService struct {
	write func(string) error
}

// NewResultActionService creates a result action service backed by the
// system clipboard.
func NewResultActionService() *ResultActionService {
	return &ResultActionService{write: clipboard.WriteAll}
}

// CopyToClipboard copies text to the system clipboard.
func (s *ResultActionService) CopyToClipboard(_ context.Context, text string) error {
	if text == "" {
		return fmt.Errorf("%w: nothing to copy", domain.ErrInvalidInput)
	}
	if err := s.write(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}
