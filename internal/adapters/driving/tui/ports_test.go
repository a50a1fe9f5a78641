package tui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/ragcore/internal/core/domain"
)

func TestPorts_Validate(t *testing.T) {
	assert.ErrorIs(t, (*Ports)(nil).Validate(), ErrMissingRAGService)
	assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingRAGService)
	assert.NoError(t, NewPorts(&mockRAGService{}, nil).Validate())
}

func TestPorts_RAGSettings(t *testing.T) {
	t.Run("no settings service", func(t *testing.T) {
		p := NewPorts(&mockRAGService{}, nil)
		assert.Equal(t, domain.RAGSettings{}, p.ragSettings())
	})

	t.Run("from settings service", func(t *testing.T) {
		s := domain.DefaultAppSettings()
		s.RAG.TopK = 9
		p := &Ports{RAG: &mockRAGService{}, Settings: &mockSettingsService{settings: &s}}
		assert.Equal(t, 9, p.ragSettings().TopK)
	})

	t.Run("settings error", func(t *testing.T) {
		p := &Ports{RAG: &mockRAGService{}, Settings: &mockSettingsService{err: errors.New("bad toml")}}
		assert.Equal(t, domain.RAGSettings{}, p.ragSettings())
	})
}
