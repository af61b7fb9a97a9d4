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
	// Runs call it on start so edits apply to the next run of a watch session.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptExtractSystem instructs the model to return only schema-shaped JSON.
	// The template expects %s placeholders for the record name, the collection name
	// and the field list, in that order.
	PromptExtractSystem = "extract_system"

	// PromptExtractUser carries one chunk of the document.
	// The template expects a %s placeholder for the chunk text.
	PromptExtractUser = "extract_user"
)
