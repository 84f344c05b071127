// File path: internal/github/events.go
package github

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// VerifySignature checks a webhook delivery's X-Hub-Signature-256 header
// against the raw request body. A missing secret or signature always fails:
// unauthenticated deliveries are never processed.
func VerifySignature(secret, signature string, body []byte) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// eventRepository is the repository block shared by all webhook payloads.
type eventRepository struct {
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
}

// PushEvent is the payload delivered for push events.
type PushEvent struct {
	Ref        string          `json:"ref"`
	Repository eventRepository `json:"repository"`
	Pusher     struct {
		Name string `json:"name"`
	} `json:"pusher"`
	Commits []PushCommit `json:"commits"`
}

// PushCommit is one commit inside a push payload.
type PushCommit struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	URL       string    `json:"url"`
	Author    struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"author"`
	Added    []string `json:"added"`
	Modified []string `json:"modified"`
	Removed  []string `json:"removed"`
}

// IssuesEvent is the payload delivered for issue events.
type IssuesEvent struct {
	Action     string          `json:"action"`
	Repository eventRepository `json:"repository"`
	Issue      struct {
		ID     int64  `json:"id"`
		Number int    `json:"number"`
		Title  string `json:"title"`
		Body   string `json:"body"`
		State  string `json:"state"`
		User   struct {
			Login string `json:"login"`
		} `json:"user"`
		Labels []struct {
			Name string `json:"name"`
		} `json:"labels"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
		HTMLURL   string    `json:"html_url"`
	} `json:"issue"`
}

// PullRequestEvent is the payload delivered for pull request events.
type PullRequestEvent struct {
	Action      string          `json:"action"`
	Repository  eventRepository `json:"repository"`
	PullRequest struct {
		ID     int64  `json:"id"`
		Number int    `json:"number"`
		Title  string `json:"title"`
		Body   string `json:"body"`
		State  string `json:"state"`
		User   struct {
			Login string `json:"login"`
		} `json:"user"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
		HTMLURL   string    `json:"html_url"`
	} `json:"pull_request"`
}

// ActivityDoc is one document destined for the activity index. The ID is
// derived from the underlying entity, so re-delivered webhooks overwrite
// the same document instead of duplicating it.
type ActivityDoc struct {
	ID  string
	Doc map[string]any
}

// NormalizeEvent converts a webhook delivery into activity documents.
// Event types without progress-tracking value yield no documents and no
// error.
func NormalizeEvent(eventType string, body []byte) ([]ActivityDoc, error) {
	switch eventType {
	case "push":
		return normalizePush(body)
	case "issues":
		return normalizeIssues(body)
	case "pull_request":
		return normalizePullRequest(body)
	default:
		return nil, nil
	}
}

func normalizePush(body []byte) ([]ActivityDoc, error) {
	var event PushEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decode push payload: %w", err)
	}

	repoName := event.Repository.FullName
	if repoName == "" {
		repoName = "unknown"
	}

	docs := make([]ActivityDoc, 0, len(event.Commits))
	for _, commit := range event.Commits {
		if commit.ID == "" {
			continue
		}
		docs = append(docs, ActivityDoc{
			ID: "commit_" + commit.ID,
			Doc: map[string]any{
				"type":           "commit",
				"repository":     repoName,
				"repository_url": event.Repository.HTMLURL,
				"commit_id":      commit.ID,
				"message":        commit.Message,
				"author":         commit.Author.Name,
				"author_email":   commit.Author.Email,
				"timestamp":      commit.Timestamp,
				"url":            commit.URL,
				"added_files":    commit.Added,
				"modified_files": commit.Modified,
				"removed_files":  commit.Removed,
				"total_changes":  len(commit.Added) + len(commit.Modified) + len(commit.Removed),
				"pusher":         event.Pusher.Name,
				"event_type":     "push",
				"processed_at":   time.Now().UTC(),
			},
		})
	}
	return docs, nil
}

func normalizeIssues(body []byte) ([]ActivityDoc, error) {
	var event IssuesEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decode issues payload: %w", err)
	}
	if event.Issue.ID == 0 {
		return nil, nil
	}

	labels := make([]string, 0, len(event.Issue.Labels))
	for _, label := range event.Issue.Labels {
		labels = append(labels, label.Name)
	}

	return []ActivityDoc{{
		ID: fmt.Sprintf("issue_%d", event.Issue.ID),
		Doc: map[string]any{
			"type":           "issue",
			"repository":     event.Repository.FullName,
			"repository_url": event.Repository.HTMLURL,
			"issue_number":   event.Issue.Number,
			"title":          event.Issue.Title,
			"body":           event.Issue.Body,
			"state":          event.Issue.State,
			"action":         event.Action,
			"author":         event.Issue.User.Login,
			"labels":         labels,
			"created_at":     event.Issue.CreatedAt,
			"updated_at":     event.Issue.UpdatedAt,
			"url":            event.Issue.HTMLURL,
			"event_type":     "issue",
			"processed_at":   time.Now().UTC(),
		},
	}}, nil
}

func normalizePullRequest(body []byte) ([]ActivityDoc, error) {
	var event PullRequestEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decode pull request payload: %w", err)
	}
	if event.PullRequest.ID == 0 {
		return nil, nil
	}

	return []ActivityDoc{{
		ID: fmt.Sprintf("pr_%d", event.PullRequest.ID),
		Doc: map[string]any{
			"type":           "pull_request",
			"repository":     event.Repository.FullName,
			"repository_url": event.Repository.HTMLURL,
			"pr_number":      event.PullRequest.Number,
			"title":          event.PullRequest.Title,
			"body":           event.PullRequest.Body,
			"state":          event.PullRequest.State,
			"action":         event.Action,
			"author":         event.PullRequest.User.Login,
			"created_at":     event.PullRequest.CreatedAt,
			"updated_at":     event.PullRequest.UpdatedAt,
			"url":            event.PullRequest.HTMLURL,
			"event_type":     "pull_request",
			"processed_at":   time.Now().UTC(),
		},
	}}, nil
}
