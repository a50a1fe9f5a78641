package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	clearYes bool
	infoJSON bool
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show collection details",
	Long:  `Shows the collection name, backend, location, record count and embedding model.`,
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every record in the collection",
	Long: `Irreversibly deletes all stored chunks and the deduplication index.
Previously ingested documents can be ingested again afterwards.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "output as JSON")
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip confirmation")
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(clearCmd)
}

func runInfo(cmd *cobra.Command, _ []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	info, err := ragService.CollectionInfo(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read collection: %w", err)
	}

	if infoJSON {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal info: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Collection: %s\n", info.Name)
	cmd.Printf("Backend:    %s\n", info.Backend)
	if info.Location != "" {
		cmd.Printf("Location:   %s\n", info.Location)
	}
	cmd.Printf("Records:    %d\n", info.Count)
	if info.EmbeddingModel.Name != "" {
		cmd.Printf("Model:      %s\n", info.EmbeddingModel)
	}
	return nil
}

func runClear(cmd *cobra.Command, _ []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	if !clearYes {
		count, err := ragService.CollectionSize(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to read collection: %w", err)
		}
		cmd.Printf("Delete all %d records? This cannot be undone. [y/N]: ", count)
		answer := readLine(bufio.NewReader(cmd.InOrStdin()))
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := ragService.ClearAll(cmd.Context()); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}
	cmd.Println("Collection cleared.")
	return nil
}
