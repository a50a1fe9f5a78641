package mcp

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driving"
)

// mockRAGService implements driving.RAGService for testing.
type mockRAGService struct {
	mu sync.Mutex

	result *domain.RetrievalResult
	report *domain.IngestReport
	info   domain.CollectionInfo
	err    error

	lastRetrieve domain.RetrieveRequest
	lastIngest   domain.IngestRequest
}

var _ driving.RAGService = (*mockRAGService)(nil)

func (m *mockRAGService) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastIngest = req
	if m.err != nil {
		return nil, m.err
	}
	if m.report != nil {
		return m.report, nil
	}
	return &domain.IngestReport{Source: req.FileName}, nil
}

func (m *mockRAGService) IngestFiles(
	ctx context.Context,
	reqs []domain.IngestRequest,
	progress domain.ProgressFunc,
) ([]*domain.IngestReport, error) {
	reports := make([]*domain.IngestReport, 0, len(reqs))
	for i, req := range reqs {
		report, err := m.Ingest(ctx, req)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
		if progress != nil {
			progress(domain.IngestProgress{Index: i, Total: len(reqs), Report: report})
		}
	}
	return reports, nil
}

func (m *mockRAGService) Retrieve(_ context.Context, req domain.RetrieveRequest) (*domain.RetrievalResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastRetrieve = req
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.RetrievalResult{Sources: []domain.Source{}}, nil
}

func (m *mockRAGService) ClearAll(_ context.Context) error {
	return m.err
}

func (m *mockRAGService) CollectionSize(_ context.Context) (int, error) {
	return m.info.Count, m.err
}

func (m *mockRAGService) CollectionInfo(_ context.Context) (domain.CollectionInfo, error) {
	return m.info, m.err
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("prompt not found")
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}
