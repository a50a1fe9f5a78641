// Command ragcore ingests documents into a local vector store and retrieves
// bounded, cited context for questions about them.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/ragcore/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragcore/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragcore/internal/adapters/driven/metrics"
	"github.com/custodia-labs/ragcore/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragcore/internal/adapters/driven/storage/qdrant"
	"github.com/custodia-labs/ragcore/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragcore/internal/adapters/driving/cli"
	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
	"github.com/custodia-labs/ragcore/internal/core/services"
	"github.com/custodia-labs/ragcore/internal/logger"
	"github.com/custodia-labs/ragcore/internal/normalisers"
	"github.com/custodia-labs/ragcore/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal.
	_ = godotenv.Load() //nolint:errcheck // optional file

	settingsService := services.NewSettingsService(openConfigStore(), ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	applyEnv(settings)

	prompts, err := file.NewPromptStore("", services.DefaultPrompts())
	if err != nil {
		logger.Warn("prompt templates unavailable: %v", err)
	}

	prom := metrics.NewPrometheus()

	svcs := cli.Services{
		Settings:       settingsService,
		ResultAction:   services.NewResultActionService(),
		MetricsHandler: prom.Handler(),
	}
	if prompts != nil {
		svcs.Prompts = prompts
	}

	ctx := context.Background()
	rag, closeFn, err := buildRAGService(ctx, settings, prom)
	if err != nil {
		// Settings commands must still work so the configuration can be fixed.
		logger.Warn("%v", err)
	} else {
		defer closeFn()
		svcs.RAG = rag
	}

	cli.SetVersion(version)
	cli.SetServices(svcs)
	return cli.Execute()
}

// openConfigStore opens ~/.ragcore/config.toml. Without a writable home
// directory settings live in memory for this run only.
func openConfigStore() driven.ConfigStore {
	store, err := file.NewConfigStore("")
	if err != nil {
		logger.Warn("config directory unavailable, settings will not be saved: %v", err)
		return memory.NewConfigStore()
	}
	return store
}

// applyEnv fills settings that may come from the environment.
func applyEnv(settings *domain.AppSettings) {
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// buildRAGService wires the embedder and store selected by settings into a
// RAG service. The returned func releases both.
func buildRAGService(
	ctx context.Context, settings *domain.AppSettings, m driven.Metrics,
) (*services.RAGService, func(), error) {
	embedder, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, nil, err
	}

	store, err := openStore(ctx, settings.Store)
	if err != nil {
		embedder.Close()
		return nil, nil, err
	}

	rag := services.NewRAGService(
		normalisers.NewDefaultRegistry(),
		postprocessors.NewDefaultBuilder(),
		embedder,
		store,
		services.WithMetrics(m),
		services.WithMaxFileBytes(settings.RAG.MaxFileBytes),
		services.WithDefaultChunkOptions(settings.RAG.ChunkOptions()),
	)

	closeFn := func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing store: %v", err)
		}
		embedder.Close()
	}
	return rag, closeFn, nil
}

// openStore opens the configured backend. A durable backend that cannot be
// opened is an error. An empty sqlite path gives a temporary store that is
// removed on close.
func openStore(ctx context.Context, cfg domain.StoreSettings) (driven.VectorStore, error) {
	switch cfg.Backend {
	case domain.StoreBackendMemory:
		return memory.NewVectorStore(cfg.Collection), nil
	case domain.StoreBackendSQLite, "":
		if cfg.Path == "" {
			store, err := sqlite.NewTempStore(cfg.Collection)
			if err != nil {
				return nil, err
			}
			logger.Info("no store path configured, using ephemeral store at %s", store.Path())
			return store, nil
		}
		store, err := sqlite.NewStore(cfg.Path, cfg.Collection)
		if err != nil {
			return nil, err
		}
		return store, nil
	case domain.StoreBackendQdrant:
		store, err := qdrant.NewStore(ctx, qdrant.Config{
			Host:       cfg.Qdrant.Host,
			Port:       cfg.Qdrant.Port,
			APIKey:     cfg.Qdrant.APIKey,
			Collection: cfg.Collection,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", domain.ErrInvalidConfig, cfg.Backend)
	}
}
