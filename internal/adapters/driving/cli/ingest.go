package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ragcore/internal/connectors/filesystem"
	"github.com/custodia-labs/ragcore/internal/core/domain"
)

var (
	ingestChunkSize int
	ingestOverlap   int
	ingestJSON      bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Ingest documents into the collection",
	Long: `Extracts, chunks, deduplicates, embeds and stores documents.

Each path may be a file or a directory. Directories are walked recursively;
hidden entries and unsupported extensions are skipped. Explicit files with an
unsupported extension are reported as failed.

Chunks whose exact text is already stored are skipped, so re-ingesting a
document adds nothing.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", 0, "target chunk length in characters (default from settings)")
	ingestCmd.Flags().IntVar(&ingestOverlap, "overlap", -1, "characters shared by consecutive chunks (default from settings)")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output reports as JSON")
	rootCmd.AddCommand(ingestCmd)
}

// ingestSummary is the JSON form of one document's report.
type ingestSummary struct {
	*domain.IngestReport
	Errors []string `json:"errors,omitempty"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	reqs, err := collectRequests(cmd.Context(), args)
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		cmd.Println("No supported documents found.")
		return nil
	}

	settings := currentRAGSettings()
	size, overlap := settings.ChunkSize, settings.Overlap
	if ingestChunkSize > 0 {
		size = ingestChunkSize
	}
	if ingestOverlap >= 0 {
		overlap = ingestOverlap
	}
	for i := range reqs {
		reqs[i].ChunkSize, reqs[i].Overlap = size, overlap
	}

	out := cmd.OutOrStdout()
	progress := newIngestProgress(out, !ingestJSON && isTerminal(out))

	reports, err := ragService.IngestFiles(cmd.Context(), reqs, progress.update)
	progress.done()
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if ingestJSON {
		return outputIngestJSON(cmd, reports)
	}
	outputIngestTable(cmd, reports)
	return nil
}

// collectRequests expands paths into ingest requests. Directories are walked;
// files are read as-is so the service can reject unsupported formats.
func collectRequests(ctx context.Context, paths []string) ([]domain.IngestRequest, error) {
	var reqs []domain.IngestRequest
	for _, arg := range paths {
		path := filesystem.ResolvePath(arg)
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}

		if info.IsDir() {
			walked, err := filesystem.New(path).Walk(ctx)
			if err != nil {
				return nil, err
			}
			reqs = append(reqs, walked...)
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}
		reqs = append(reqs, domain.IngestRequest{Content: content, FileName: filesystem.SourceName(path)})
	}
	return reqs, nil
}

// ingestProgress prints one line per document, rewriting it in place on a TTY.
type ingestProgress struct {
	w       io.Writer
	tty     bool
	printed bool
}

func newIngestProgress(w io.Writer, tty bool) *ingestProgress {
	return &ingestProgress{w: w, tty: tty}
}

func (p *ingestProgress) update(ev domain.IngestProgress) {
	if !p.tty {
		return
	}
	fmt.Fprintf(p.w, "\r\033[K[%d/%d] %s", ev.Index+1, ev.Total, ev.Report.Source)
	p.printed = true
}

// done ends the in-place progress line.
func (p *ingestProgress) done() {
	if p.printed {
		fmt.Fprintln(p.w)
	}
}

func outputIngestJSON(cmd *cobra.Command, reports []*domain.IngestReport) error {
	summaries := make([]ingestSummary, 0, len(reports))
	for _, r := range reports {
		s := ingestSummary{IngestReport: r}
		for _, e := range r.Errors {
			s.Errors = append(s.Errors, e.Error())
		}
		summaries = append(summaries, s)
	}
	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal reports: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputIngestTable(cmd *cobra.Command, reports []*domain.IngestReport) {
	var accepted, skipped, failed int
	for _, r := range reports {
		status := "ok"
		if r.HasErrors() {
			status = "errors"
		}
		cmd.Printf("  %-40s chunks=%d accepted=%d duplicates=%d %s\n",
			r.Source, r.TotalChunks, r.Accepted, r.SkippedDuplicates, status)
		for _, e := range r.Errors {
			cmd.Printf("      %v\n", e)
		}
		accepted += r.Accepted
		skipped += r.SkippedDuplicates
		if r.HasErrors() {
			failed++
		}
	}
	cmd.Println()
	cmd.Printf("%d documents: %d chunks added, %d duplicates skipped, %d with errors\n",
		len(reports), accepted, skipped, failed)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
