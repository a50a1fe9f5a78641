package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
	"github.com/custodia-labs/ragcore/internal/logger"
)

// ContextSeparator joins entries in assembled context.
const ContextSeparator = "\n\n---\n\n"

// FormatEntry renders one result as a context entry with its citation header.
func FormatEntry(r domain.QueryResult) string {
	return fmt.Sprintf("[Document: %s, Chunk %d]\n%s", r.Metadata.Source, r.Metadata.ChunkIndex, r.Text)
}

// Assemble concatenates results, in order, into a context of at most maxChars
// characters. A result whose entry would exceed the remaining budget is skipped
// and later, smaller results may still be included. Chunks are never truncated.
func Assemble(results []domain.QueryResult, maxChars int) (string, []domain.Source) {
	var b strings.Builder
	sources := make([]domain.Source, 0, len(results))
	used := 0
	sepLen := utf8.RuneCountInString(ContextSeparator)

	for _, r := range results {
		entry := FormatEntry(r)
		cost := utf8.RuneCountInString(entry)
		if len(sources) > 0 {
			cost += sepLen
		}
		if used+cost > maxChars {
			continue
		}

		if len(sources) > 0 {
			b.WriteString(ContextSeparator)
		}
		b.WriteString(entry)
		used += cost

		sources = append(sources, domain.Source{
			SourceName: r.Metadata.Source,
			ChunkIndex: r.Metadata.ChunkIndex,
			Relevance:  r.Relevance(),
		})
	}

	return b.String(), sources
}

const groundedPromptTemplate = `You are a helpful AI assistant. Use the following context from uploaded documents to answer the user's question. If the context doesn't contain relevant information, you can still provide a general response, but mention that you don't have specific information from the uploaded documents.

Context from uploaded documents:
%s

User question: %s

Please provide a helpful and accurate response based on the context above. If you use information from the context, mention which document it came from.`

const generalPromptTemplate = `You are a helpful AI assistant. Please answer the following question:

%s`

// DefaultPrompts returns the built-in prompt templates keyed by prompt name.
func DefaultPrompts() map[string]string {
	return map[string]string{
		driven.PromptGrounded: groundedPromptTemplate,
		driven.PromptGeneral:  generalPromptTemplate,
	}
}

// PromptBuilder renders prompts from a PromptStore, falling back to the
// built-in templates when the store is nil or a template cannot be loaded.
type PromptBuilder struct {
	store driven.PromptStore
}

// NewPromptBuilder creates a prompt builder. store may be nil.
func NewPromptBuilder(store driven.PromptStore) *PromptBuilder {
	return &PromptBuilder{store: store}
}

// Build renders the grounded template for non-empty context and the general
// template otherwise.
func (p *PromptBuilder) Build(question, context string) string {
	if strings.TrimSpace(context) == "" {
		return fmt.Sprintf(p.template(driven.PromptGeneral), question)
	}
	return fmt.Sprintf(p.template(driven.PromptGrounded), context, question)
}

// promptArgs is the number of %s verbs each template is rendered with.
var promptArgs = map[string]int{
	driven.PromptGrounded: 2,
	driven.PromptGeneral:  1,
}

func (p *PromptBuilder) template(name string) string {
	if p.store == nil {
		return DefaultPrompts()[name]
	}

	tmpl, err := p.store.Load(name)
	switch {
	case err != nil || tmpl == "":
		logger.Warn("prompt %q unavailable, using built-in template: %v", name, err)
	case countStringVerbs(tmpl) != promptArgs[name]:
		logger.Warn("prompt %q must contain exactly %d %%s verbs and no other verbs, using built-in template",
			name, promptArgs[name])
	default:
		return tmpl
	}
	return DefaultPrompts()[name]
}

// countStringVerbs counts %s verbs in a format string. "%%" is a literal
// percent sign. Any other verb, or a trailing %, returns -1.
func countStringVerbs(format string) int {
	n := 0
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		if i+1 == len(format) {
			return -1
		}
		i++
		switch format[i] {
		case '%':
		case 's':
			n++
		default:
			return -1
		}
	}
	return n
}

// EstimateTokens approximates the token count of text as one token per four
// characters, rounded up.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}
