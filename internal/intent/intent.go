// File path: internal/intent/intent.go
package intent

import "strings"

// ContextType labels the kind of retrieval context a message calls for.
type ContextType string

const (
	IdeaValidation ContextType = "idea_validation"
	Progress       ContextType = "progress"
	Documentation  ContextType = "documentation"
	General        ContextType = "general"
	// Inspiration is only ever supplied explicitly by a caller; Classify
	// never produces it.
	Inspiration ContextType = "inspiration"
)

// Keyword sets are checked in fixed priority order: idea validation first,
// then progress, then documentation. The first matching category wins, so a
// message containing both "idea" and "commit" classifies as idea_validation.
// This ordering is a contract relied on by the context aggregator.
var (
	ideaKeywords = []string{
		"idea", "project", "validate", "original", "similar", "unique", "concept",
	}
	progressKeywords = []string{
		"progress", "status", "commit", "github", "development", "team", "accomplished",
	}
	documentationKeywords = []string{
		"how to", "documentation", "rules", "guidelines", "google cloud", "elastic", "vertex",
	}
)

// Classify routes a message to a context type via keyword matching. It is
// deterministic and never errors; messages matching nothing are general.
func Classify(message string) ContextType {
	lower := strings.ToLower(message)
	if containsAny(lower, ideaKeywords) {
		return IdeaValidation
	}
	if containsAny(lower, progressKeywords) {
		return Progress
	}
	if containsAny(lower, documentationKeywords) {
		return Documentation
	}
	return General
}

// Valid reports whether the value names a known context type.
func Valid(value string) bool {
	switch ContextType(value) {
	case IdeaValidation, Progress, Documentation, General, Inspiration:
		return true
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
