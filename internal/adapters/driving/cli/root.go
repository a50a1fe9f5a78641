// Package cli provides the cobra command tree for ragcore.
// It is a driving adapter: commands call core services through driving ports.
package cli

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
	"github.com/custodia-labs/ragcore/internal/core/ports/driving"
	"github.com/custodia-labs/ragcore/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var verbose bool

// Services wired by main.
var (
	ragService          driving.RAGService
	settingsService     driving.SettingsService
	resultActionService driving.ResultActionService
	promptStore         driven.PromptStore
	metricsHandler      http.Handler
)

// Services bundles the dependencies the commands need.
type Services struct {
	RAG            driving.RAGService
	Settings       driving.SettingsService
	ResultAction   driving.ResultActionService
	Prompts        driven.PromptStore
	MetricsHandler http.Handler
}

var rootCmd = &cobra.Command{
	Use:   "ragcore",
	Short: "Local document retrieval for grounded LLM answers",
	Long: `ragcore ingests pdf, docx and txt documents into a local vector store
and retrieves bounded, cited context for questions about them.

Documents are split into overlapping chunks, deduplicated by content hash,
embedded and stored. Queries return the most relevant chunks assembled into
a context block that never exceeds the configured character budget.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices injects the services used by commands.
func SetServices(s Services) {
	ragService = s.RAG
	settingsService = s.Settings
	resultActionService = s.ResultAction
	promptStore = s.Prompts
	metricsHandler = s.MetricsHandler
}

// SetVersion sets the version reported by the version command and MCP server.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// currentRAGSettings returns stored RAG settings, or defaults when
// settings are unavailable.
func currentRAGSettings() domain.RAGSettings {
	if settingsService != nil {
		if s, err := settingsService.Get(); err == nil && s != nil {
			return s.RAG
		}
	}
	return domain.DefaultAppSettings().RAG
}
