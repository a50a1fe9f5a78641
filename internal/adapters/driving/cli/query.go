package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/services"
)

var (
	queryTopK     int
	queryMaxChars int
	querySource   string
	queryFileType string
	queryJSON     bool
	queryPrompt   bool
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Retrieve context for a question",
	Long: `Embeds the question, ranks stored chunks by relevance and assembles
them into a context block with citations.

The context never exceeds --max-chars characters. Chunks that do not fit are
skipped whole rather than truncated.

Use --prompt to print a ready-to-send prompt for a generative model instead
of the raw context.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks to consider (default from settings)")
	queryCmd.Flags().IntVar(&queryMaxChars, "max-chars", 0, "context character budget (default from settings)")
	queryCmd.Flags().StringVar(&querySource, "source", "", "only consider chunks from this document")
	queryCmd.Flags().StringVar(&queryFileType, "type", "", "only consider chunks from this file type (pdf, docx, txt)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output result as JSON")
	queryCmd.Flags().BoolVar(&queryPrompt, "prompt", false, "print a grounded prompt instead of the context")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	settings := currentRAGSettings()
	req := domain.RetrieveRequest{
		Query:           strings.Join(args, " "),
		TopK:            settings.TopK,
		MaxContextChars: settings.MaxContextChars,
		Filter:          domain.MetadataFilter{Source: querySource},
	}
	if queryTopK > 0 {
		req.TopK = queryTopK
	}
	if queryMaxChars > 0 {
		req.MaxContextChars = queryMaxChars
	}
	if queryFileType != "" {
		ft, err := domain.ParseFileType(queryFileType)
		if err != nil {
			return err
		}
		req.Filter.FileType = ft
	}

	result, err := ragService.Retrieve(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	switch {
	case queryJSON:
		return outputQueryJSON(cmd, result)
	case queryPrompt:
		cmd.Println(services.NewPromptBuilder(promptStore).Build(req.Query, result.Context))
		return nil
	default:
		outputQueryText(cmd, result)
		return nil
	}
}

func outputQueryJSON(cmd *cobra.Command, result *domain.RetrievalResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryText(cmd *cobra.Command, result *domain.RetrievalResult) {
	if len(result.Sources) == 0 {
		cmd.Println("No relevant context found.")
		return
	}

	cmd.Println(result.Context)
	cmd.Println()
	cmd.Println("Sources:")
	for i, s := range result.Sources {
		cmd.Printf("  [%d] %s, chunk %d (%.3f)\n", i+1, s.SourceName, s.ChunkIndex, s.Relevance)
	}
	cmd.Printf("\n~%d tokens\n", services.EstimateTokens(result.Context))
}
