package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ragcore/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure chunking, retrieval, embedding and storage settings.

Settings are stored in ~/.ragcore/config.toml.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsRAGCmd = &cobra.Command{
	Use:   "rag",
	Short: "Set chunking and retrieval parameters",
	Long: `Set chunking and retrieval parameters. Only flags that are given change.

Chunk overlap must be smaller than the chunk size. A new chunk size only
affects documents ingested afterwards.`,
	RunE: runSettingsRAG,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Configure the embedding provider interactively.

Switching provider or model changes the vectors produced. Existing records
keep their model, so run 'ragcore clear' and re-ingest after switching.`,
	RunE: runSettingsEmbedding,
}

var settingsStoreCmd = &cobra.Command{
	Use:   "store <backend>",
	Short: "Select the vector store backend",
	Long: `Select the vector store backend.

Available backends:
  sqlite  - durable embedded database (default, ~/.ragcore/data)
  memory  - in-process only, lost on exit
  qdrant  - remote Qdrant collection over gRPC

Without --path the sqlite location is left unchanged. An empty --path ""
makes the store ephemeral: it lives in a temporary directory that is
removed on exit.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsStore,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate settings and ping the embedding provider",
	RunE:  runSettingsValidate,
}

func init() {
	f := settingsRAGCmd.Flags()
	f.Int("chunk-size", 0, "target chunk length in characters")
	f.Int("overlap", 0, "characters shared by consecutive chunks")
	f.Int("top-k", 0, "number of chunks considered per query")
	f.Int("max-chars", 0, "context character budget")
	f.Int64("max-file-bytes", 0, "largest accepted document in bytes (0 disables the limit)")

	settingsStoreCmd.Flags().String("path", "", "data directory for the sqlite backend (empty for ephemeral)")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsRAGCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsStoreCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[RAG]")
	cmd.Printf("  Chunk size: %d\n", settings.RAG.ChunkSize)
	cmd.Printf("  Overlap: %d\n", settings.RAG.Overlap)
	cmd.Printf("  Top K: %d\n", settings.RAG.TopK)
	cmd.Printf("  Max context chars: %d\n", settings.RAG.MaxContextChars)
	cmd.Printf("  Max file bytes: %d\n", settings.RAG.MaxFileBytes)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		if settings.Embedding.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	if settings.Embedding.RateLimit > 0 {
		cmd.Printf("  Rate limit: %.1f req/s\n", settings.Embedding.RateLimit)
	}
	status := "configured"
	if !settings.Embedding.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Store]")
	cmd.Printf("  Backend: %s\n", settings.Store.Backend)
	cmd.Printf("  Collection: %s\n", settings.Store.Collection)
	switch settings.Store.Backend {
	case domain.StoreBackendSQLite:
		path := settings.Store.Path
		if path == "" {
			path = "(ephemeral, removed on exit)"
		}
		cmd.Printf("  Path: %s\n", path)
	case domain.StoreBackendQdrant:
		cmd.Printf("  Qdrant: %s:%d\n", settings.Store.Qdrant.Host, settings.Store.Qdrant.Port)
	case domain.StoreBackendMemory:
		cmd.Println("  Records are lost on exit")
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'ragcore settings --help' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsRAG(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	rag := settings.RAG

	f := cmd.Flags()
	changed := false
	for name, dst := range map[string]*int{
		"chunk-size": &rag.ChunkSize,
		"overlap":    &rag.Overlap,
		"top-k":      &rag.TopK,
		"max-chars":  &rag.MaxContextChars,
	} {
		if f.Changed(name) {
			v, _ := f.GetInt(name) //nolint:errcheck // flag is registered as int
			*dst = v
			changed = true
		}
	}
	if f.Changed("max-file-bytes") {
		rag.MaxFileBytes, _ = f.GetInt64("max-file-bytes") //nolint:errcheck // flag is registered as int64
		changed = true
	}
	if !changed {
		return errors.New("no settings given; see 'ragcore settings rag --help'")
	}

	if err := settingsService.SetRAG(rag); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	cmd.Printf("Chunking: size=%d overlap=%d\n", rag.ChunkSize, rag.Overlap)
	cmd.Printf("Retrieval: top_k=%d max_context_chars=%d\n", rag.TopK, rag.MaxContextChars)
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureEmbeddingProvider(cmd, reader)
}

func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n", selectedProvider.Description(), model)
	cmd.Println("Existing records keep their model; run 'ragcore clear' and re-ingest if it changed.")
	return nil
}

func runSettingsStore(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	backend := domain.StoreBackend(strings.ToLower(args[0]))

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	path := settings.Store.Path
	if cmd.Flags().Changed("path") {
		path, _ = cmd.Flags().GetString("path") //nolint:errcheck // flag is registered as string
	}

	if err := settingsService.SetStoreBackend(backend, path); err != nil {
		return fmt.Errorf("failed to set store backend: %w", err)
	}

	cmd.Printf("Store backend set to: %s\n", backend)
	if backend == domain.StoreBackendSQLite && path == "" {
		cmd.Println("Note: no path is set, so the store is ephemeral and removed when ragcore exits.")
	}
	if !backend.IsDurable() {
		cmd.Println("Note: records in the memory backend are lost when ragcore exits.")
	}
	return nil
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	cmd.Print("Pinging embedding provider... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Println("FAILED")
		return fmt.Errorf("embedding provider unreachable: %w", err)
	}
	cmd.Println("OK")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal, and falls back to
// a plain line read otherwise.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
