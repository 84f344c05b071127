// File path: internal/context/builder.go
package context

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mtorres-dev/hackmate/internal/common"
	"github.com/mtorres-dev/hackmate/internal/github"
	"github.com/mtorres-dev/hackmate/internal/intent"
	"github.com/mtorres-dev/hackmate/internal/search"
)

const (
	docsLimit     = 3
	projectsLimit = 3

	// activityDays is the narrow lookback used for conversational context,
	// shorter than the analyzer's reporting window.
	activityDays  = 3
	activityLimit = 5

	contextExcerptLimit = 400
	sourceContentLimit  = 300
	sourceSummaryLimit  = 200
	activityLineLimit   = 100
)

// Request carries everything needed to assemble context for one message.
type Request struct {
	Message     string
	Vector      []float32
	ContextType intent.ContextType
	RepoURL     string
}

// Builder assembles retrieval context for chat turns from the search
// indices and the repository activity feed.
type Builder struct {
	search   *search.Service
	activity github.ActivitySource
}

// NewBuilder wires the retrieval backends into a context builder. The
// activity source may be nil when GitHub integration is not configured.
func NewBuilder(svc *search.Service, activity github.ActivitySource) *Builder {
	return &Builder{search: svc, activity: activity}
}

// Gather retrieves and formats context for a message. Documentation is
// always consulted; similar projects only for idea-oriented intents, and
// repository activity only for progress intents with a repository URL.
// Retrieval failures degrade to a thinner bundle, never an error: a chat
// turn with partial context beats no answer.
func (b *Builder) Gather(ctx context.Context, req Request) Bundle {
	contextType := req.ContextType
	if contextType == "" {
		contextType = intent.Classify(req.Message)
	}
	bundle := Bundle{ContextType: contextType}

	var (
		docs     []search.DocPage
		projects []search.Project
		activity []github.Activity
	)

	wantProjects := contextType == intent.IdeaValidation || contextType == intent.Inspiration
	wantActivity := contextType == intent.Progress && req.RepoURL != "" && b.activity != nil

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs = b.search.SearchDocumentation(gctx, req.Message, req.Vector, docsLimit)
		return nil
	})
	if wantProjects {
		g.Go(func() error {
			projects = b.search.SearchProjects(gctx, req.Message, req.Vector, projectsLimit)
			return nil
		})
	}
	if wantActivity {
		g.Go(func() error {
			feed, err := b.activity.RepositoryActivity(gctx, req.RepoURL, activityDays)
			if err != nil {
				common.Logger().Warn("context: activity retrieval failed", "repo", req.RepoURL, "error", err)
				return nil
			}
			activity = feed
			return nil
		})
	}
	_ = g.Wait()

	var formatted strings.Builder
	if len(docs) > 0 {
		formatted.WriteString("Relevant Documentation:\n")
		for i, doc := range docs {
			fmt.Fprintf(&formatted, "%d. %s (Source: %s)\n", i+1, doc.Title, orUnknown(doc.Source))
			fmt.Fprintf(&formatted, "   %s\n", truncate(doc.Content, contextExcerptLimit))
			fmt.Fprintf(&formatted, "   %s\n\n", orUnknown(doc.URL))
			bundle.Sources = append(bundle.Sources, Source{
				Type:           "documentation",
				Title:          doc.Title,
				Content:        truncate(doc.Content, sourceContentLimit),
				URL:            doc.URL,
				Source:         doc.Source,
				RelevanceScore: doc.Score,
			})
		}
	}

	if len(projects) > 0 {
		formatted.WriteString("\nSimilar Hackathon Projects:\n")
		for i, project := range projects {
			fmt.Fprintf(&formatted, "%d. %s (%s)\n", i+1, project.Title, orUnknown(project.Year))
			fmt.Fprintf(&formatted, "   %s\n", truncate(project.Description, sourceContentLimit))
			fmt.Fprintf(&formatted, "   Tech: %s\n", strings.Join(project.Technologies, ", "))
			fmt.Fprintf(&formatted, "   %s\n", orUnknown(project.URL))
			fmt.Fprintf(&formatted, "   Relevance: %.2f\n\n", project.Score)
			bundle.Sources = append(bundle.Sources, Source{
				Type:           "devpost_project",
				Title:          project.Title,
				Description:    truncate(project.Description, sourceSummaryLimit),
				URL:            project.URL,
				Technologies:   project.Technologies,
				Year:           project.Year,
				RelevanceScore: project.Score,
			})
		}
	}

	if len(activity) > 0 {
		formatted.WriteString("Recent GitHub Activity:\n")
		for i, item := range activity {
			if i >= activityLimit {
				break
			}
			fmt.Fprintf(&formatted, "- %s: %s\n", item.Type, truncate(item.Message, activityLineLimit))
		}
	}

	bundle.FormattedContext = formatted.String()
	return bundle
}

// truncate cuts text to limit runes and marks the cut. The marker is
// always appended so downstream consumers can tell an excerpt from a full
// document.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) > limit {
		runes = runes[:limit]
	}
	return string(runes) + "..."
}

func orUnknown(value string) string {
	if value == "" {
		return "Unknown"
	}
	return value
}
