// File path: internal/github/types.go
package github

import (
	"context"
	"time"
)

// Activity is a single feed entry, either a commit or an issue, drawn from
// a repository's recent history.
type Activity struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
	URL       string    `json:"url"`
	SHA       string    `json:"sha,omitempty"`
	Files     []string  `json:"files,omitempty"`
	State     string    `json:"state,omitempty"`
	Labels    []string  `json:"labels,omitempty"`
}

// Contributor summarizes one contributor to a repository.
type Contributor struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
	AvatarURL     string `json:"avatar_url"`
}

// Release summarizes one published release.
type Release struct {
	Name        string     `json:"name"`
	Tag         string     `json:"tag"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	URL         string     `json:"url"`
}

// Stats is a snapshot of repository-level statistics.
type Stats struct {
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Stars          int            `json:"stars"`
	Forks          int            `json:"forks"`
	OpenIssues     int            `json:"open_issues"`
	Languages      map[string]int `json:"languages"`
	Contributors   []Contributor  `json:"contributors"`
	RecentReleases []Release      `json:"recent_releases"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DefaultBranch  string         `json:"default_branch"`
}

// ActivitySource supplies repository activity and statistics. The live
// implementation is Feed; tests substitute fakes.
type ActivitySource interface {
	RepositoryActivity(ctx context.Context, repoURL string, days int) ([]Activity, error)
	RepositoryStats(ctx context.Context, repoURL string) (*Stats, error)
}
