// File path: internal/search/service.go
package search

import (
	"context"
	"sort"
	"strings"

	"github.com/mtorres-dev/hackmate/internal/common"
)

// Field lists per index. Vector queries always run against the shared
// embedding field, so only the lexical fields differ.
var (
	projectFields       = []string{"title", "description", "technologies", "category"}
	documentationFields = []string{"title", "content", "section", "tags"}
)

// Search type labels accepted on the generic search surface.
const (
	TypeHybrid   = "hybrid"
	TypeSemantic = "semantic"
	TypeKeyword  = "keyword"
)

// Service exposes typed retrieval over the named indices plus a merged
// multi-index search. All methods degrade to empty results on backend
// failure; they never return errors to callers.
type Service struct {
	backend       Backend
	projectsIndex string
	docsIndex     string
	activityIndex string
}

// NewService wires a backend with its index names.
func NewService(backend Backend, projectsIndex, docsIndex, activityIndex string) *Service {
	return &Service{
		backend:       backend,
		projectsIndex: projectsIndex,
		docsIndex:     docsIndex,
		activityIndex: activityIndex,
	}
}

// SearchProjects runs a hybrid query against the projects index.
func (s *Service) SearchProjects(ctx context.Context, query string, vector []float32, size int) []Project {
	if size <= 0 {
		size = 5
	}
	result := s.backend.HybridSearch(ctx, s.projectsIndex, Options{
		Query:  query,
		Vector: vector,
		Fields: projectFields,
		Size:   size,
	})
	projects := make([]Project, 0, len(result.Hits))
	for _, hit := range result.Hits {
		projects = append(projects, Project{
			Title:        sourceString(hit.Source, "title"),
			Description:  sourceString(hit.Source, "description"),
			URL:          sourceString(hit.Source, "url"),
			Technologies: sourceStrings(hit.Source, "technologies"),
			Category:     sourceString(hit.Source, "category"),
			Year:         sourceString(hit.Source, "year"),
			Score:        hit.Score,
		})
	}
	return projects
}

// SearchDocumentation runs a hybrid query against the documentation index.
func (s *Service) SearchDocumentation(ctx context.Context, query string, vector []float32, size int) []DocPage {
	if size <= 0 {
		size = 3
	}
	result := s.backend.HybridSearch(ctx, s.docsIndex, Options{
		Query:  query,
		Vector: vector,
		Fields: documentationFields,
		Size:   size,
	})
	docs := make([]DocPage, 0, len(result.Hits))
	for _, hit := range result.Hits {
		docs = append(docs, DocPage{
			Title:   sourceString(hit.Source, "title"),
			Content: sourceString(hit.Source, "content"),
			URL:     sourceString(hit.Source, "url"),
			Section: sourceString(hit.Source, "section"),
			Source:  sourceString(hit.Source, "source"),
			Score:   hit.Score,
		})
	}
	return docs
}

// Search queries one or all indices and merges results into a single
// score-ordered sequence. Each item keeps its originating index as its
// source label; the reported total is the merged count before truncation.
func (s *Service) Search(ctx context.Context, query string, vector []float32, searchType, index string, size int) Response {
	logger := common.Logger()
	if size <= 0 {
		size = 10
	}
	if searchType == "" {
		searchType = TypeHybrid
	}
	if searchType == TypeKeyword {
		vector = nil
	}
	indices := []string{s.projectsIndex, s.docsIndex}
	if trimmed := strings.TrimSpace(index); trimmed != "" {
		indices = []string{trimmed}
	}
	var merged []ResultItem
	for _, name := range indices {
		switch name {
		case s.projectsIndex:
			for _, project := range s.SearchProjects(ctx, query, vector, size) {
				merged = append(merged, ResultItem{
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
		case s.docsIndex:
			for _, doc := range s.SearchDocumentation(ctx, query, vector, size) {
				merged = append(merged, ResultItem{
					Title:       doc.Title,
					Description: excerpt(doc.Content, 300),
					URL:         doc.URL,
					Score:       doc.Score,
					Source:      "documentation",
					Metadata: map[string]interface{}{
						"section":    doc.Section,
						"doc_source": doc.Source,
					},
				})
			}
		default:
			logger.Warn("search: unknown index requested", "index", name)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	total := len(merged)
	if len(merged) > size {
		merged = merged[:size]
	}
	return Response{
		Results:    merged,
		Total:      total,
		Query:      query,
		SearchType: searchType,
	}
}

// IndexActivity upserts one activity document under a deterministic id.
func (s *Service) IndexActivity(ctx context.Context, id string, doc map[string]interface{}) error {
	return s.backend.IndexDoc(ctx, s.activityIndex, id, doc)
}

// Health reports backend reachability.
func (s *Service) Health(ctx context.Context) error {
	return s.backend.Health(ctx)
}

func excerpt(text string, limit int) string {
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if limit <= 0 || len(runes) <= limit {
		return trimmed
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
