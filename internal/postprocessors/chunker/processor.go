// Package chunker provides a boundary-aware overlapping text chunking processor.
package chunker

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// DefaultSeparators are boundary kinds in descending priority:
// paragraph, line, sentence, word.
var DefaultSeparators = [][]string{
	{"\n\n"},
	{"\n"},
	{". ", "! ", "? ", "; "},
	{" "},
}

// Processor splits document text into overlapping chunks.
// It implements the PostProcessor interface.
//
// Window starts advance by chunkSize-overlap characters. Each chunk ends at the
// latest boundary of the highest-priority kind found in the last overlap
// characters of its window, or at a hard cut when none is found, so consecutive
// chunks always touch or overlap.
type Processor struct {
	opts       domain.ChunkOptions
	separators [][]string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.opts.Size = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.opts.Overlap = overlap
	}
}

// WithSeparators replaces the boundary priority list.
func WithSeparators(separators [][]string) Option {
	return func(p *Processor) {
		p.separators = separators
	}
}

// New creates a new chunker processor with the given options.
// Returns domain.ErrInvalidConfig unless 0 <= overlap < chunk size.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		opts:       domain.ChunkOptions{Size: DefaultChunkSize, Overlap: DefaultChunkOverlap},
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := p.opts.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the source text into chunks carrying the source metadata.
// Input chunks are ignored; this processor creates new chunks from the text.
func (p *Processor) Process(ctx context.Context, src *driven.ChunkSource, _ []domain.Chunk) ([]domain.Chunk, error) {
	if src == nil || strings.TrimSpace(src.Text) == "" {
		// Empty content produces no chunks
		return nil, nil
	}

	runes := []rune(src.Text)
	spans := p.spans(runes)
	chunks := make([]domain.Chunk, 0, len(spans))

	for _, s := range spans {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text := strings.TrimSpace(string(runes[s.start:s.end]))
		if text == "" {
			continue
		}

		chunks = append(chunks, domain.Chunk{
			Text: text,
			Metadata: domain.ChunkMetadata{
				Source:     src.Source,
				FileType:   src.FileType,
				FileSize:   src.FileSize,
				ChunkIndex: len(chunks),
				ChunkSize:  utf8.RuneCountInString(text),
			},
		})
	}

	return chunks, nil
}

// span is a half-open rune range of the source text.
type span struct {
	start int
	end   int
}

// spans computes the chunk windows over runes.
func (p *Processor) spans(runes []rune) []span {
	n := len(runes)
	stride := p.opts.Stride()

	// Estimate number of chunks
	spans := make([]span, 0, n/stride+1)

	for start := 0; start < n; start += stride {
		end := start + p.opts.Size
		if end >= n {
			spans = append(spans, span{start: start, end: n})
			break
		}

		spans = append(spans, span{start: start, end: p.boundary(runes, start, end, start+stride)})
	}

	return spans
}

// boundary returns the cut position for the window [start, end).
// Only cuts at or after minEnd are considered so the next window, which
// begins at minEnd, leaves no gap.
func (p *Processor) boundary(runes []rune, start, end, minEnd int) int {
	for _, level := range p.separators {
		best := -1
		for _, sep := range level {
			if pos := lastCut(runes, sep, start, minEnd, end); pos > best {
				best = pos
			}
		}
		if best >= 0 {
			return best
		}
	}

	// No boundary: hard cut at chunk size
	return end
}

// lastCut finds the greatest pos in [minEnd, end] such that runes[pos-len(sep):pos]
// equals sep and lies within the window. Returns -1 if there is none.
func lastCut(runes []rune, sep string, start, minEnd, end int) int {
	sepRunes := []rune(sep)
	width := len(sepRunes)

	for pos := end; pos >= minEnd; pos-- {
		from := pos - width
		if from < start {
			break
		}
		if equalRunes(runes[from:pos], sepRunes) {
			return pos
		}
	}
	return -1
}

func equalRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
