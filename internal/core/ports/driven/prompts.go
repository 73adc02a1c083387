package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptPersona infers core themes with sources from browsing titles.
	// The template expects a %s placeholder for the item list.
	PromptPersona = "persona"

	// PromptTitles derives themes directly from deduplicated titles.
	// The template expects a %s placeholder for the title list.
	PromptTitles = "titles"

	// PromptSubthemes groups items relevant to a theme into subthemes.
	// The template expects %s (theme label) and %s (item list) placeholders.
	PromptSubthemes = "subthemes"
)

// PromptClusterLabel names one cluster of browsing items in 1-3 words.
// The template expects a %s placeholder for the item list.
const PromptClusterLabel = "cluster_label"
