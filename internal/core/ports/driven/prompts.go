package driven

// PromptStore provides access to answer templates.
// Implementations may load prompts from files or fall back to built-in
// defaults. Templates use text/template syntax.
type PromptStore interface {
	// Load returns the template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptProduct answers a question about one resolved product.
	// Fields: .Company .Context .History .Question .Product
	PromptProduct = "product"

	// PromptGeneral answers from informational page context.
	// Fields: .Company .Context .History .Question
	PromptGeneral = "general"

	// PromptFollowUp answers a follow-up about the remembered product.
	// Fields: .Company .Context .History .Question .Product
	PromptFollowUp = "followup"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	SetPromptStore(store PromptStore)
}
