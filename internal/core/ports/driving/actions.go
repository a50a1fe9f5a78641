package driving

import "context"

// ResultActionService provides actions on retrieved text for interactive adapters.
type ResultActionService interface {
	// CopyToClipboard copies text, usually a chunk or assembled context,
	// to the system clipboard.
	CopyToClipboard(ctx context.Context, text string) error
}
