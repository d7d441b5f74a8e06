package domain

// Classifier suggests a spending category for an expense from its free-text
// description. Suggestions are advisory: they never overwrite a category the
// user chose explicitly. Implementations must be safe for concurrent use.
type Classifier interface {
	// Suggest returns the suggested category and true, or false when the
	// description matches nothing (callers default to OUTROS).
	Suggest(description string) (Category, bool)
}
