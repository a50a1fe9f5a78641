package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragcore/internal/connectors/filesystem"
	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/logger"
)

var watchInitial bool

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Ingest documents as they change in a directory",
	Long: `Watches a directory tree and ingests supported documents when they are
created or modified. Unchanged chunks are skipped by the deduplicator, so an
edited document only adds its new chunks.

Deleting a file does not remove its chunks; use 'ragcore clear' and
re-ingest to drop them. Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "ingest existing documents before watching")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn := filesystem.New(filesystem.ResolvePath(args[0]))
	defer conn.Close()

	settings := currentRAGSettings()

	if watchInitial {
		reqs, err := conn.Walk(ctx)
		if err != nil {
			return err
		}
		for _, req := range reqs {
			ingestChange(ctx, cmd, req, settings)
		}
	}

	changes, err := conn.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch %s: %w", conn.Root(), err)
	}
	cmd.Printf("Watching %s\n", conn.Root())

	return consumeChanges(ctx, cmd, changes, settings)
}

// consumeChanges ingests created and updated documents until the channel
// closes or ctx is cancelled.
func consumeChanges(ctx context.Context, cmd *cobra.Command, changes <-chan filesystem.Change, settings domain.RAGSettings) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ch, ok := <-changes:
			if !ok {
				return nil
			}
			if ch.Type == filesystem.ChangeDeleted || ch.Request == nil {
				logger.Info("%s removed; its chunks stay in the collection", ch.Path)
				continue
			}
			ingestChange(ctx, cmd, *ch.Request, settings)
		}
	}
}

func ingestChange(ctx context.Context, cmd *cobra.Command, req domain.IngestRequest, settings domain.RAGSettings) {
	req.ChunkSize, req.Overlap = settings.ChunkSize, settings.Overlap

	report, err := ragService.Ingest(ctx, req)
	if err != nil {
		cmd.PrintErrf("%s: %v\n", req.FileName, err)
		return
	}
	cmd.Printf("%s: %d added, %d duplicates skipped\n", report.Source, report.Accepted, report.SkippedDuplicates)
	for _, e := range report.Errors {
		cmd.PrintErrf("  %v\n", e)
	}
}
