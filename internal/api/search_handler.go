// File path: internal/api/search_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/mtorres-dev/hackmate/internal/common"
	"github.com/mtorres-dev/hackmate/internal/search"
)

type searchRequest struct {
	Query      string `json:"query"`
	SearchType string `json:"search_type,omitempty"`
	Index      string `json:"index,omitempty"`
	Size       int    `json:"size,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("api: search decode failed", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("query required"))
		return
	}
	vector := s.queryVector(r, query, req.SearchType)
	resp := s.search.Search(r.Context(), query, vector, req.SearchType, req.Index, req.Size)
	logger.Info("api: search completed", "query", query, "results", len(resp.Results), "total", resp.Total)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearchProjects(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("q required"))
		return
	}
	size := queryInt(r, "size", 10)
	searchType := searchTypeParam(r)

	vector := s.queryVector(r, query, searchType)
	projects := s.search.SearchProjects(r.Context(), query, vector, size)

	results := make([]search.ResultItem, 0, len(projects))
	for _, project := range projects {
		results = append(results, search.ResultItem{
			Title:       project.Title,
			Description: project.Description,
			URL:         project.URL,
			Score:       project.Score,
			Source:      "devpost",
			Metadata: map[string]interface{}{
				"technologies": project.Technologies,
				"category":     project.Category,
				"year":         project.Year,
			},
		})
	}
	writeJSON(w, http.StatusOK, search.Response{
		Results:    results,
		Total:      len(results),
		Query:      query,
		SearchType: searchType,
	})
}

func (s *Server) handleSearchDocumentation(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("q required"))
		return
	}
	size := queryInt(r, "size", 5)
	searchType := searchTypeParam(r)

	vector := s.queryVector(r, query, searchType)
	docs := s.search.SearchDocumentation(r.Context(), query, vector, size)

	results := make([]search.ResultItem, 0, len(docs))
	for _, doc := range docs {
		excerpt := doc.Content
		if runes := []rune(excerpt); len(runes) > 300 {
			excerpt = string(runes[:300])
		}
		results = append(results, search.ResultItem{
			Title:       doc.Title,
			Description: excerpt + "...",
			URL:         doc.URL,
			Score:       doc.Score,
			Source:      "documentation",
			Metadata: map[string]interface{}{
				"section":    doc.Section,
				"doc_source": doc.Source,
			},
		})
	}
	writeJSON(w, http.StatusOK, search.Response{
		Results:    results,
		Total:      len(results),
		Query:      query,
		SearchType: searchType,
	})
}

// commonSuggestions seed the suggestion endpoint; a completion suggester
// over the indices would replace this once the corpus is large enough to
// make it worthwhile.
var commonSuggestions = []string{
	"How to use Google Cloud Vertex AI",
	"Elastic hybrid search implementation",
	"Hackathon submission requirements",
	"Best practices for team collaboration",
	"GitHub integration for progress tracking",
	"AI-powered search applications",
	"Real-time data processing",
	"Machine learning model deployment",
	"API development with Go",
	"Frontend development with React",
}

func (s *Server) handleSearchSuggestions(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("q required"))
		return
	}
	limit := queryInt(r, "limit", 5)

	words := strings.Fields(strings.ToLower(query))
	suggestions := make([]string, 0, limit)
	for _, candidate := range commonSuggestions {
		lower := strings.ToLower(candidate)
		for _, word := range words {
			if strings.Contains(lower, word) {
				suggestions = append(suggestions, candidate)
				break
			}
		}
	}
	if len(suggestions) < limit {
		suggestions = append(suggestions,
			fmt.Sprintf("How to implement %s", query),
			fmt.Sprintf("Best practices for %s", query),
			fmt.Sprintf("Examples of %s", query),
			fmt.Sprintf("Troubleshooting %s", query),
			fmt.Sprintf("Advanced %s techniques", query),
		)
	}
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
		"query":       query,
	})
}

// queryVector embeds the query for semantic and hybrid searches. Keyword
// searches skip embedding entirely.
func (s *Server) queryVector(r *http.Request, query, searchType string) []float32 {
	if searchType == search.TypeKeyword {
		return nil
	}
	vectors, err := s.provider.Embed(r.Context(), []string{query})
	if err != nil || len(vectors) == 0 {
		common.Logger().Warn("api: query embedding failed", "error", err)
		return nil
	}
	return vectors[0]
}

func searchTypeParam(r *http.Request) string {
	searchType := strings.TrimSpace(r.URL.Query().Get("search_type"))
	if searchType == "" {
		return search.TypeHybrid
	}
	return searchType
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
