package tui

import (
	"context"

	"github.com/custodia-labs/ragcore/internal/core/domain"
)

type mockRAGService struct {
	result *domain.RetrievalResult
	info   domain.CollectionInfo
	err    error
}

func (m *mockRAGService) Ingest(context.Context, domain.IngestRequest) (*domain.IngestReport, error) {
	return nil, m.err
}

func (m *mockRAGService) IngestFiles(
	context.Context, []domain.IngestRequest, domain.ProgressFunc,
) ([]*domain.IngestReport, error) {
	return nil, m.err
}

func (m *mockRAGService) Retrieve(context.Context, domain.RetrieveRequest) (*domain.RetrievalResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.RetrievalResult{Sources: []domain.Source{}}, nil
	}
	return m.result, nil
}

func (m *mockRAGService) ClearAll(context.Context) error { return m.err }

func (m *mockRAGService) CollectionSize(context.Context) (int, error) { return m.info.Count, m.err }

func (m *mockRAGService) CollectionInfo(context.Context) (domain.CollectionInfo, error) {
	return m.info, m.err
}

type mockSettingsService struct {
	settings *domain.AppSettings
	err      error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) { return m.settings, m.err }

func (m *mockSettingsService) Save(*domain.AppSettings) error { return nil }

func (m *mockSettingsService) SetRAG(domain.RAGSettings) error { return nil }

func (m *mockSettingsService) SetEmbeddingProvider(domain.AIProvider, string, string) error { return nil }

func (m *mockSettingsService) SetStoreBackend(domain.StoreBackend, string) error { return nil }

func (m *mockSettingsService) Validate() error { return nil }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }
