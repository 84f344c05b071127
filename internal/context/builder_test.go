// File path: internal/context/builder_test.go
package context

import (
	stdcontext "context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/mtorres-dev/hackmate/internal/github"
	"github.com/mtorres-dev/hackmate/internal/intent"
	"github.com/mtorres-dev/hackmate/internal/search"
)

type routingBackend struct {
	mu      sync.Mutex
	byIndex map[string]search.Result
	queried map[string]int
}

func (r *routingBackend) HybridSearch(ctx stdcontext.Context, index string, opts search.Options) search.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.queried == nil {
		r.queried = make(map[string]int)
	}
	r.queried[index]++
	return r.byIndex[index]
}

func (r *routingBackend) IndexDoc(ctx stdcontext.Context, index, id string, doc map[string]interface{}) error {
	return nil
}

func (r *routingBackend) BulkIndex(ctx stdcontext.Context, index string, docs []map[string]interface{}) error {
	return nil
}

func (r *routingBackend) Health(ctx stdcontext.Context) error { return nil }

type stubActivity struct {
	activity []github.Activity
	err      error
	calls    int
}

func (s *stubActivity) RepositoryActivity(ctx stdcontext.Context, repoURL string, days int) ([]github.Activity, error) {
	s.calls++
	return s.activity, s.err
}

func (s *stubActivity) RepositoryStats(ctx stdcontext.Context, repoURL string) (*github.Stats, error) {
	return nil, errors.New("not implemented")
}

func docHit(title, content string, score float64) search.Hit {
	return search.Hit{
		Score:  score,
		Source: map[string]interface{}{"title": title, "content": content, "source": "elastic-docs", "url": "https://docs.example/" + title},
	}
}

func projectHit(title, description string, score float64) search.Hit {
	return search.Hit{
		Score: score,
		Source: map[string]interface{}{
			"title": title, "description": description, "url": "https://devpost.example/" + title,
			"technologies": []interface{}{"go", "elastic"}, "year": "2025",
		},
	}
}

func newTestBuilder(backend *routingBackend, activity github.ActivitySource) *Builder {
	svc := search.NewService(backend, "devpost_projects", "hackathon_docs", "github_activity")
	return NewBuilder(svc, activity)
}

func TestGatherIdeaValidationQueriesProjects(t *testing.T) {
	backend := &routingBackend{byIndex: map[string]search.Result{
		"hackathon_docs":   {Hits: []search.Hit{docHit("Hybrid Search", "How to combine knn and lexical queries", 1.2)}},
		"devpost_projects": {Hits: []search.Hit{projectHit("MealMatch", "A recipe sharing platform", 0.9)}},
	}}
	builder := newTestBuilder(backend, nil)

	bundle := builder.Gather(stdcontext.Background(), Request{Message: "validate my recipe app idea"})

	if bundle.ContextType != intent.IdeaValidation {
		t.Fatalf("context type = %q", bundle.ContextType)
	}
	if backend.queried["devpost_projects"] != 1 || backend.queried["hackathon_docs"] != 1 {
		t.Fatalf("queried = %v", backend.queried)
	}
	if len(bundle.Sources) != 2 {
		t.Fatalf("sources = %d, want 2", len(bundle.Sources))
	}
	if bundle.Sources[0].Type != "documentation" || bundle.Sources[1].Type != "devpost_project" {
		t.Fatalf("source order = %q, %q", bundle.Sources[0].Type, bundle.Sources[1].Type)
	}

	// Documentation renders before projects regardless of score.
	docsAt := strings.Index(bundle.FormattedContext, "Relevant Documentation:")
	projectsAt := strings.Index(bundle.FormattedContext, "Similar Hackathon Projects:")
	if docsAt < 0 || projectsAt < 0 || docsAt > projectsAt {
		t.Fatalf("section order wrong:\n%s", bundle.FormattedContext)
	}
}

func TestGatherGeneralSkipsProjects(t *testing.T) {
	backend := &routingBackend{byIndex: map[string]search.Result{
		"hackathon_docs": {Hits: []search.Hit{docHit("Rules", "Submission deadline is Sunday", 1.0)}},
	}}
	builder := newTestBuilder(backend, nil)

	bundle := builder.Gather(stdcontext.Background(), Request{Message: "hello there"})

	if bundle.ContextType != intent.General {
		t.Fatalf("context type = %q", bundle.ContextType)
	}
	if backend.queried["devpost_projects"] != 0 {
		t.Fatal("projects index queried for a general message")
	}
}

func TestGatherProgressIncludesActivity(t *testing.T) {
	backend := &routingBackend{byIndex: map[string]search.Result{}}
	activity := &stubActivity{activity: []github.Activity{
		{Type: "commit", Message: "feat: add webhook handler"},
		{Type: "issue", Message: "Issue: indexing lag"},
	}}
	builder := newTestBuilder(backend, activity)

	bundle := builder.Gather(stdcontext.Background(), Request{
		Message: "what progress did we make?",
		RepoURL: "https://github.com/team/hackmate",
	})

	if activity.calls != 1 {
		t.Fatalf("activity calls = %d, want 1", activity.calls)
	}
	if !strings.Contains(bundle.FormattedContext, "Recent GitHub Activity:") {
		t.Fatalf("missing activity section:\n%s", bundle.FormattedContext)
	}
	if !strings.Contains(bundle.FormattedContext, "- commit: feat: add webhook handler...") {
		t.Fatalf("missing commit line:\n%s", bundle.FormattedContext)
	}
}

func TestGatherProgressWithoutRepoSkipsActivity(t *testing.T) {
	backend := &routingBackend{byIndex: map[string]search.Result{}}
	activity := &stubActivity{}
	builder := newTestBuilder(backend, activity)

	builder.Gather(stdcontext.Background(), Request{Message: "status of our commits"})

	if activity.calls != 0 {
		t.Fatalf("activity queried without a repository url, calls = %d", activity.calls)
	}
}

func TestGatherActivityFailureStillReturnsBundle(t *testing.T) {
	backend := &routingBackend{byIndex: map[string]search.Result{
		"hackathon_docs": {Hits: []search.Hit{docHit("Rules", "Content", 1.0)}},
	}}
	activity := &stubActivity{err: errors.New("rate limited")}
	builder := newTestBuilder(backend, activity)

	bundle := builder.Gather(stdcontext.Background(), Request{
		Message: "progress update please",
		RepoURL: "https://github.com/team/hackmate",
	})

	if len(bundle.Sources) != 1 {
		t.Fatalf("sources = %d, want 1", len(bundle.Sources))
	}
	if strings.Contains(bundle.FormattedContext, "Recent GitHub Activity:") {
		t.Fatal("failed activity fetch must not render an activity section")
	}
}

func TestGatherExplicitContextTypeOverridesClassifier(t *testing.T) {
	backend := &routingBackend{byIndex: map[string]search.Result{
		"devpost_projects": {Hits: []search.Hit{projectHit("X", "Y", 1.0)}},
	}}
	builder := newTestBuilder(backend, nil)

	bundle := builder.Gather(stdcontext.Background(), Request{
		Message:     "hello",
		ContextType: intent.Inspiration,
	})

	if bundle.ContextType != intent.Inspiration {
		t.Fatalf("context type = %q", bundle.ContextType)
	}
	if backend.queried["devpost_projects"] != 1 {
		t.Fatal("inspiration intent should query projects")
	}
}
