// File path: internal/api/server_test.go
package api

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mtorres-dev/hackmate/internal/github"
	"github.com/mtorres-dev/hackmate/internal/llm"
	"github.com/mtorres-dev/hackmate/internal/search"
)

type memoryBackend struct {
	mu      sync.Mutex
	byIndex map[string]search.Result
	indexed map[string]map[string]interface{}
	healthy bool
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{
		byIndex: make(map[string]search.Result),
		indexed: make(map[string]map[string]interface{}),
		healthy: true,
	}
}

func (m *memoryBackend) HybridSearch(ctx context.Context, index string, opts search.Options) search.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byIndex[index]
}

func (m *memoryBackend) IndexDoc(ctx context.Context, index, id string, doc map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexed[id] = doc
	return nil
}

func (m *memoryBackend) BulkIndex(ctx context.Context, index string, docs []map[string]interface{}) error {
	return nil
}

func (m *memoryBackend) Health(ctx context.Context) error {
	if !m.healthy {
		return context.DeadlineExceeded
	}
	return nil
}

type stubActivity struct {
	activity []github.Activity
	stats    *github.Stats
}

func (s *stubActivity) RepositoryActivity(ctx context.Context, repoURL string, days int) ([]github.Activity, error) {
	return s.activity, nil
}

func (s *stubActivity) RepositoryStats(ctx context.Context, repoURL string) (*github.Stats, error) {
	return s.stats, nil
}

func newTestServer(backend *memoryBackend, secret string) *Server {
	svc := search.NewService(backend, "devpost_projects", "hackathon_docs", "github_activity")
	activity := &stubActivity{
		activity: []github.Activity{
			{Type: "commit", Message: "feat: hybrid search", Author: "ada", Timestamp: time.Now()},
		},
		stats: &github.Stats{Name: "hackmate", Contributors: []github.Contributor{{Login: "ada"}}},
	}
	return NewServer(llm.NewResilient(nil), svc, activity, secret)
}

func doRequest(t *testing.T, srv *Server, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	return rr
}

func TestChatEndpointIdeaValidation(t *testing.T) {
	backend := newMemoryBackend()
	backend.byIndex["devpost_projects"] = search.Result{Hits: []search.Hit{{
		Score:  1.4,
		Source: map[string]interface{}{"title": "MealMatch", "description": "Recipe matching app", "url": "https://devpost.example/mealmatch"},
	}}}
	backend.byIndex["hackathon_docs"] = search.Result{Hits: []search.Hit{{
		Score:  0.8,
		Source: map[string]interface{}{"title": "Rules", "content": "Submissions close Sunday"},
	}}}
	srv := newTestServer(backend, "")

	body := []byte(`{"message": "Can you validate my project idea?"}`)
	rr := doRequest(t, srv, http.MethodPost, "/api/v1/chat", body, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Response       string           `json:"response"`
		Sources        []map[string]any `json:"sources"`
		Suggestions    []string         `json:"suggestions"`
		ConversationID string           `json:"conversation_id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Response == "" {
		t.Fatal("empty response")
	}
	if resp.ConversationID == "" {
		t.Fatal("missing conversation id")
	}
	if len(resp.Suggestions) != 4 || resp.Suggestions[0] != "How can I make my idea more unique?" {
		t.Fatalf("suggestions = %v", resp.Suggestions)
	}
	types := make(map[string]bool)
	for _, source := range resp.Sources {
		types[source["type"].(string)] = true
	}
	if !types["devpost_project"] || !types["documentation"] {
		t.Fatalf("source types = %v", types)
	}
}

func TestChatEndpointRequiresMessage(t *testing.T) {
	srv := newTestServer(newMemoryBackend(), "")
	rr := doRequest(t, srv, http.MethodPost, "/api/v1/chat", []byte(`{"message": ""}`), nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestProgressReportEndpointRequiresRepoURL(t *testing.T) {
	srv := newTestServer(newMemoryBackend(), "")
	rr := doRequest(t, srv, http.MethodPost, "/api/v1/chat/progress-report", []byte(`{"message": "how are we doing"}`), nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestProgressReportEndpointWithoutGitHubIntegration(t *testing.T) {
	svc := search.NewService(newMemoryBackend(), "devpost_projects", "hackathon_docs", "github_activity")
	srv := NewServer(llm.NewResilient(nil), svc, nil, "")

	rr := doRequest(t, srv, http.MethodPost, "/api/v1/chat/progress-report", []byte(`{"repo_url": "https://github.com/team/hackmate"}`), nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
}

func TestValidateIdeaEndpoint(t *testing.T) {
	backend := newMemoryBackend()
	backend.byIndex["devpost_projects"] = search.Result{Hits: []search.Hit{{
		Score:  2.0,
		Source: map[string]interface{}{"title": "PlateShare", "description": strings.Repeat("leftover sharing ", 20), "url": "https://devpost.example/plateshare"},
	}}}
	srv := newTestServer(backend, "")

	rr := doRequest(t, srv, http.MethodPost, "/api/v1/chat/validate-idea", []byte(`{"message": "an app matching leftovers to recipes"}`), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Sources     []map[string]any `json:"sources"`
		Suggestions []string         `json:"suggestions"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Sources) != 1 || resp.Sources[0]["type"] != "devpost_project" {
		t.Fatalf("sources = %v", resp.Sources)
	}
	if resp.Suggestions[0] != "How can I differentiate my idea from these similar projects?" {
		t.Fatalf("suggestions = %v", resp.Suggestions)
	}
}

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookIndexesSignedPush(t *testing.T) {
	backend := newMemoryBackend()
	secret := "hunter2"
	srv := newTestServer(backend, secret)

	body := []byte(`{
		"repository": {"full_name": "team/hackmate"},
		"pusher": {"name": "ada"},
		"commits": [{"id": "abc123", "message": "feat: webhooks", "timestamp": "2026-08-20T12:00:00Z", "author": {"name": "Ada"}}]
	}`)
	headers := map[string]string{
		"X-Hub-Signature-256": signBody(secret, body),
		"X-GitHub-Event":      "push",
	}

	rr := doRequest(t, srv, http.MethodPost, "/api/v1/webhook/github", body, headers)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if _, ok := backend.indexed["commit_abc123"]; !ok {
		t.Fatalf("commit not indexed, have %v", backend.indexed)
	}

	// Redelivery writes to the same document id.
	doRequest(t, srv, http.MethodPost, "/api/v1/webhook/github", body, headers)
	if len(backend.indexed) != 1 {
		t.Fatalf("redelivery duplicated documents: %v", backend.indexed)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	backend := newMemoryBackend()
	srv := newTestServer(backend, "hunter2")

	body := []byte(`{"commits": []}`)
	headers := map[string]string{
		"X-Hub-Signature-256": signBody("wrong-secret", body),
		"X-GitHub-Event":      "push",
	}
	rr := doRequest(t, srv, http.MethodPost, "/api/v1/webhook/github", body, headers)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rr.Code)
	}
	if len(backend.indexed) != 0 {
		t.Fatal("unauthenticated delivery was processed")
	}
}

func TestWebhookRejectsWhenSecretUnset(t *testing.T) {
	srv := newTestServer(newMemoryBackend(), "")
	body := []byte(`{"commits": []}`)
	headers := map[string]string{
		"X-Hub-Signature-256": signBody("anything", body),
		"X-GitHub-Event":      "push",
	}
	rr := doRequest(t, srv, http.MethodPost, "/api/v1/webhook/github", body, headers)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestWebhookTestEndpoint(t *testing.T) {
	srv := newTestServer(newMemoryBackend(), "secret")
	rr := doRequest(t, srv, http.MethodGet, "/api/v1/webhook/test", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "webhook endpoint active") {
		t.Fatalf("body = %s", rr.Body.String())
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := newTestServer(newMemoryBackend(), "")
	rr := doRequest(t, srv, http.MethodPost, "/api/v1/github/analyze", []byte(`{"repo_url": "https://github.com/team/hackmate"}`), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Repository     string `json:"repository"`
		AnalysisPeriod string `json:"analysis_period"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Repository != "hackmate" || resp.AnalysisPeriod != "Last 7 days" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestAnalyzeEndpointRequiresRepoURL(t *testing.T) {
	srv := newTestServer(newMemoryBackend(), "")
	rr := doRequest(t, srv, http.MethodPost, "/api/v1/github/analyze", []byte(`{}`), nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestSearchProjectsEndpoint(t *testing.T) {
	backend := newMemoryBackend()
	backend.byIndex["devpost_projects"] = search.Result{Hits: []search.Hit{{
		Score:  1.0,
		Source: map[string]interface{}{"title": "MealMatch", "description": "Recipes", "url": "u", "technologies": []interface{}{"go"}},
	}}}
	srv := newTestServer(backend, "")

	rr := doRequest(t, srv, http.MethodGet, "/api/v1/search/projects?q=recipes", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp search.Response
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Source != "devpost" {
		t.Fatalf("results = %+v", resp.Results)
	}
	if resp.SearchType != search.TypeHybrid {
		t.Fatalf("search type = %q", resp.SearchType)
	}
}

func TestSearchEndpointRequiresQuery(t *testing.T) {
	srv := newTestServer(newMemoryBackend(), "")
	rr := doRequest(t, srv, http.MethodPost, "/api/v1/search", []byte(`{"query": " "}`), nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestSearchSuggestions(t *testing.T) {
	srv := newTestServer(newMemoryBackend(), "")
	rr := doRequest(t, srv, http.MethodGet, "/api/v1/search/suggestions?q=elastic+search", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		Suggestions []string `json:"suggestions"`
		Query       string   `json:"query"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	found := false
	for _, suggestion := range resp.Suggestions {
		if suggestion == "Elastic hybrid search implementation" {
			found = true
		}
	}
	if !found {
		t.Fatalf("suggestions = %v", resp.Suggestions)
	}
	if len(resp.Suggestions) > 5 {
		t.Fatalf("suggestion count = %d", len(resp.Suggestions))
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(newMemoryBackend(), "")
	rr := doRequest(t, srv, http.MethodGet, "/api/v1/health", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		Status   string            `json:"status"`
		Services map[string]string `json:"services"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "healthy" {
		t.Fatalf("status = %q", resp.Status)
	}
	if resp.Services["elasticsearch"] != "up" {
		t.Fatalf("services = %v", resp.Services)
	}
	// No real model is configured, so generation runs on the fallback.
	if resp.Services["ai"] != "fallback" {
		t.Fatalf("ai service = %q", resp.Services["ai"])
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(newMemoryBackend(), "")
	rr := doRequest(t, srv, http.MethodGet, "/healthz", nil, nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("status = %d, body = %q", rr.Code, rr.Body.String())
	}
}
