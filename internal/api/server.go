// File path: internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/mtorres-dev/hackmate/internal/chat"
	"github.com/mtorres-dev/hackmate/internal/common"
	ctxbuilder "github.com/mtorres-dev/hackmate/internal/context"
	"github.com/mtorres-dev/hackmate/internal/github"
	"github.com/mtorres-dev/hackmate/internal/llm"
	"github.com/mtorres-dev/hackmate/internal/search"
)

// healthChecker is implemented by backends that can probe their upstream.
type healthChecker interface {
	HealthCheck(ctx context.Context) bool
}

type Server struct {
	router        chi.Router
	provider      *llm.Resilient
	search        *search.Service
	activity      github.ActivitySource
	analyzer      *github.Analyzer
	chat          *chat.Orchestrator
	webhookSecret string
}

// NewServer wires the retrieval, generation, and GitHub services into an
// HTTP surface. The activity source may be nil when GitHub integration is
// not configured; the GitHub routes then answer with errors while the rest
// of the API keeps working.
func NewServer(provider *llm.Resilient, svc *search.Service, activity github.ActivitySource, webhookSecret string) *Server {
	logger := common.Logger()
	builder := ctxbuilder.NewBuilder(svc, activity)
	analyzer := github.NewAnalyzer(activity)
	srv := &Server{
		router:        chi.NewRouter(),
		provider:      provider,
		search:        svc,
		activity:      activity,
		analyzer:      analyzer,
		chat:          chat.NewOrchestrator(provider, builder, svc, analyzer),
		webhookSecret: webhookSecret,
	}
	srv.routes()
	logger.Info("api: server ready", "provider", provider.Name(), "github_enabled", activity != nil)
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	logger.Info("api: configuring routes")
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/logs", s.handleLogs)

		r.Post("/chat", s.handleChat)
		r.Post("/chat/validate-idea", s.handleValidateIdea)
		r.Post("/chat/progress-report", s.handleProgressReport)

		r.Post("/search", s.handleSearch)
		r.Get("/search/projects", s.handleSearchProjects)
		r.Get("/search/documentation", s.handleSearchDocumentation)
		r.Get("/search/suggestions", s.handleSearchSuggestions)

		r.Post("/github/analyze", s.handleAnalyze)
		r.Get("/github/activity/{owner}/{repo}", s.handleActivity)
		r.Get("/github/stats/{owner}/{repo}", s.handleStats)

		r.Post("/webhook/github", s.handleWebhook)
		r.Get("/webhook/test", s.handleWebhookTest)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	services := map[string]string{}

	elastic := "up"
	if err := s.search.Health(ctx); err != nil {
		common.Logger().Warn("api: search backend unhealthy", "error", err)
		elastic = "down"
	}
	services["elasticsearch"] = elastic

	s.provider.HealthCheck(ctx)
	ai := "up"
	if s.provider.FallbackActive() {
		ai = "fallback"
	}
	services["ai"] = ai

	if checker, ok := s.activity.(healthChecker); ok {
		githubStatus := "up"
		if !checker.HealthCheck(ctx) {
			githubStatus = "down"
		}
		services["github"] = githubStatus
	} else {
		services["github"] = "disabled"
	}

	status := "healthy"
	if elastic == "down" {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   status,
		"services": services,
		"provider": s.provider.Name(),
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	entries := append([]common.LogEntry(nil), common.LogEntries()...)
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
