// File path: internal/api/github_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/mtorres-dev/hackmate/internal/common"
)

type analyzeRequest struct {
	RepoURL string `json:"repo_url"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	if s.activity == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("github integration not configured"))
		return
	}
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("api: analyze decode failed", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.RepoURL) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("repo_url required"))
		return
	}
	analysis, err := s.analyzer.AnalyzeProgress(r.Context(), req.RepoURL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	logger.Info("api: repository analyzed", "repository", analysis.Repository, "commits", analysis.CommitAnalysis.TotalCommits)
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	if s.activity == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("github integration not configured"))
		return
	}
	repoURL := repoURLFromPath(r)
	days := queryInt(r, "days", 7)
	activity, err := s.activity.RepositoryActivity(r.Context(), repoURL, days)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"repository": repoURL,
		"days":       days,
		"activity":   activity,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.activity == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("github integration not configured"))
		return
	}
	repoURL := repoURLFromPath(r)
	stats, err := s.activity.RepositoryStats(r.Context(), repoURL)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func repoURLFromPath(r *http.Request) string {
	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")
	return fmt.Sprintf("https://github.com/%s/%s", owner, repo)
}
