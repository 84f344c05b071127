// File path: internal/search/types.go
package search

// Options controls a single hybrid search against one index.
type Options struct {
	Query  string
	Vector []float32
	Fields []string
	Size   int
}

// Hit is one scored document returned by the search backend. Source never
// contains the embedding field; it is excluded at query time.
type Hit struct {
	ID     string
	Index  string
	Score  float64
	Source map[string]interface{}
}

// Result is the outcome of one index search. A degraded search yields an
// empty result rather than an error.
type Result struct {
	Hits     []Hit
	Total    int
	MaxScore float64
}

// Project is a document from the projects index.
type Project struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	URL          string   `json:"url"`
	Technologies []string `json:"technologies"`
	Category     string   `json:"category"`
	Year         string   `json:"year"`
	Score        float64  `json:"score"`
}

// DocPage is a document from the documentation index.
type DocPage struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	URL     string  `json:"url"`
	Section string  `json:"section"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
}

// ResultItem is one entry of a merged multi-index search response.
type ResultItem struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	URL         string                 `json:"url,omitempty"`
	Score       float64                `json:"score"`
	Source      string                 `json:"source"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// Response is the shape of a merged multi-index search. Total counts merged
// hits before truncation to the requested size.
type Response struct {
	Results    []ResultItem `json:"results"`
	Total      int          `json:"total"`
	Query      string       `json:"query"`
	SearchType string       `json:"search_type"`
}

func sourceString(source map[string]interface{}, key string) string {
	if source == nil {
		return ""
	}
	if value, ok := source[key].(string); ok {
		return value
	}
	return ""
}

func sourceStrings(source map[string]interface{}, key string) []string {
	if source == nil {
		return nil
	}
	raw, ok := source[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if value, ok := item.(string); ok {
			out = append(out, value)
		}
	}
	return out
}
