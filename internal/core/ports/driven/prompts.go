package driven

// PromptStore provides access to prompt templates handed to generative models.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptGrounded wraps retrieved context and a question.
	// The template expects two %s placeholders: context, then question.
	PromptGrounded = "grounded"

	// PromptGeneral is used when retrieval produced no context.
	// The template expects one %s placeholder for the question.
	PromptGeneral = "general"
)
