// File path: internal/chat/suggestions.go
package chat

import "github.com/mtorres-dev/hackmate/internal/intent"

var baseSuggestions = []string{
	"Can you help me validate my project idea?",
	"What's our current development progress?",
	"How do I use Google Cloud with Elastic?",
	"What are the hackathon submission requirements?",
}

var suggestionsByIntent = map[intent.ContextType][]string{
	intent.IdeaValidation: {
		"How can I make my idea more unique?",
		"What technical challenges should I expect?",
		"What technologies would work best?",
		"How do I validate this with users?",
	},
	intent.Progress: {
		"What should we focus on next?",
		"Are we on track for the deadline?",
		"How can we improve our velocity?",
		"What blockers should we address?",
	},
	intent.Documentation: {
		"Show me examples of this implementation",
		"What are the best practices?",
		"Are there any limitations I should know?",
		"How do I troubleshoot common issues?",
	},
}

// ideaValidationSuggestions follow a dedicated idea validation run, which
// already has similar projects in hand.
var ideaValidationSuggestions = []string{
	"How can I differentiate my idea from these similar projects?",
	"What technical challenges should I expect?",
	"What technologies would work best for this idea?",
	"How can I validate this idea with potential users?",
}

// progressReportSuggestions follow a dedicated progress report run.
var progressReportSuggestions = []string{
	"What should we focus on next?",
	"Are we on track for the deadline?",
	"What potential blockers should we address?",
	"How can we improve our development velocity?",
}

// FollowUpSuggestions returns the canned follow-up prompts for a resolved
// intent. Intents without a dedicated set fall back to the base prompts.
func FollowUpSuggestions(contextType intent.ContextType) []string {
	if suggestions, ok := suggestionsByIntent[contextType]; ok {
		return suggestions
	}
	return baseSuggestions
}
