// File path: internal/context/types.go
package context

import "github.com/mtorres-dev/hackmate/internal/intent"

// Source is a provenance record for one piece of retrieved context. The
// populated fields depend on Type: documentation entries carry Content,
// project entries carry Description, Technologies, and Year.
type Source struct {
	Type           string   `json:"type"`
	Title          string   `json:"title,omitempty"`
	Content        string   `json:"content,omitempty"`
	Description    string   `json:"description,omitempty"`
	URL            string   `json:"url,omitempty"`
	Source         string   `json:"source,omitempty"`
	Technologies   []string `json:"technologies,omitempty"`
	Year           string   `json:"year,omitempty"`
	RelevanceScore float64  `json:"relevance_score"`
}

// Bundle is the assembled context for one chat turn: a formatted block for
// the prompt, the provenance records behind it, and the resolved intent.
type Bundle struct {
	FormattedContext string
	Sources          []Source
	ContextType      intent.ContextType
}
