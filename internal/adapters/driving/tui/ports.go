// Package tui provides an interactive terminal user interface for ragcore.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// RAG provides retrieval and collection management.
	RAG driving.RAGService

	// ResultAction provides clipboard actions. Optional.
	ResultAction driving.ResultActionService

	// Settings supplies retrieval defaults (top_k, context budget). Optional.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(rag driving.RAGService, resultAction driving.ResultActionService) *Ports {
	return &Ports{
		RAG:          rag,
		ResultAction: resultAction,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.RAG == nil {
		return ErrMissingRAGService
	}
	return nil
}

// ragSettings returns the configured retrieval settings, or zero values
// when settings are unavailable.
func (p *Ports) ragSettings() domain.RAGSettings {
	if p.Settings == nil {
		return domain.RAGSettings{}
	}
	settings, err := p.Settings.Get()
	if err != nil || settings == nil {
		return domain.RAGSettings{}
	}
	return settings.RAG
}
