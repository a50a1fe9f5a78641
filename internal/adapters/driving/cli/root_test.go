package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragcore/internal/core/domain"
)

// mockRAGService implements driving.RAGService for command tests.
type mockRAGService struct {
	ingested   []domain.IngestRequest
	retrieved  []domain.RetrieveRequest
	cleared    int
	count      int
	reportErrs []domain.IngestError

	retrieveResult *domain.RetrievalResult
	retrieveErr    error
	ingestErr      error
	info           domain.CollectionInfo
}

func (m *mockRAGService) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestReport, error) {
	if m.ingestErr != nil {
		return nil, m.ingestErr
	}
	m.ingested = append(m.ingested, req)
	return &domain.IngestReport{
		Source:      req.FileName,
		TotalChunks: 2,
		Accepted:    2,
		Errors:      m.reportErrs,
	}, nil
}

func (m *mockRAGService) IngestFiles(
	ctx context.Context, reqs []domain.IngestRequest, progress domain.ProgressFunc,
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
	m.retrieved = append(m.retrieved, req)
	if m.retrieveErr != nil {
		return nil, m.retrieveErr
	}
	if m.retrieveResult != nil {
		return m.retrieveResult, nil
	}
	return &domain.RetrievalResult{Sources: []domain.Source{}}, nil
}

func (m *mockRAGService) ClearAll(_ context.Context) error {
	m.cleared++
	m.count = 0
	return nil
}

func (m *mockRAGService) CollectionSize(_ context.Context) (int, error) {
	return m.count, nil
}

func (m *mockRAGService) CollectionInfo(_ context.Context) (domain.CollectionInfo, error) {
	return m.info, nil
}

// mockSettingsService keeps settings in memory.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	pingErr     error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetRAG(rag domain.RAGSettings) error {
	if err := rag.Validate(); err != nil {
		return err
	}
	m.settings.RAG = rag
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding.Provider = provider
	m.settings.Embedding.Model = model
	m.settings.Embedding.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetStoreBackend(backend domain.StoreBackend, path string) error {
	if !backend.IsValid() {
		return domain.ErrInvalidConfig
	}
	m.settings.Store.Backend = backend
	m.settings.Store.Path = path
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.pingErr }

// setupTestServices installs mocks and restores the previous services and
// flag values when the test ends.
func setupTestServices(t *testing.T) (*mockRAGService, *mockSettingsService) {
	t.Helper()

	prev := Services{
		RAG:            ragService,
		Settings:       settingsService,
		ResultAction:   resultActionService,
		Prompts:        promptStore,
		MetricsHandler: metricsHandler,
	}

	rag := &mockRAGService{}
	settings := newMockSettingsService()
	SetServices(Services{RAG: rag, Settings: settings})
	resetFlags(rootCmd)

	t.Cleanup(func() {
		SetServices(prev)
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	return rag, settings
}

// resetFlags restores every flag in the tree to its default so values do
// not leak between Execute calls.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue) //nolint:errcheck // defaults always parse
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"ingest", "query", "info", "clear", "settings", "watch", "mcp", "tui", "version"} {
		assert.True(t, names[want], "command %q should be registered", want)
	}
}

func TestRootCmd_VerboseFlag(t *testing.T) {
	setupTestServices(t)

	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)
}

func TestSetVersion_IgnoresEmpty(t *testing.T) {
	original := version
	defer func() { version = original }()

	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)

	SetVersion("")
	assert.Equal(t, "1.2.3", version)
}

func TestCurrentRAGSettings(t *testing.T) {
	t.Run("uses stored settings", func(t *testing.T) {
		_, settings := setupTestServices(t)
		settings.settings.RAG.TopK = 9

		assert.Equal(t, 9, currentRAGSettings().TopK)
	})

	t.Run("falls back to defaults", func(t *testing.T) {
		setupTestServices(t)
		settingsService = nil

		assert.Equal(t, domain.DefaultAppSettings().RAG, currentRAGSettings())
	})
}

func TestCommands_RequireRAGService(t *testing.T) {
	for _, args := range [][]string{
		{"query", "hello"},
		{"info"},
		{"clear", "--yes"},
		{"ingest", "."},
		{"watch", "."},
		{"mcp", "serve"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			setupTestServices(t)
			ragService = nil

			_, err := execute(t, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "rag service not configured")
		})
	}
}
