// File path: internal/github/feed.go
package github

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	gh "github.com/google/go-github/v68/github"

	"github.com/mtorres-dev/hackmate/internal/common"
)

const (
	// DefaultActivityDays is the lookback window for the activity feed.
	DefaultActivityDays = 7

	// maxActivityEntries caps the merged commit and issue feed.
	maxActivityEntries = 20

	// maxReleases caps the releases included in repository stats.
	maxReleases = 3
)

// Feed fetches repository activity from the GitHub REST API.
type Feed struct {
	client *gh.Client
}

// NewFeed builds a feed backed by go-github. An empty token yields an
// unauthenticated client with reduced rate limits.
func NewFeed(token string) *Feed {
	client := gh.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &Feed{client: client}
}

// ParseRepoURL extracts the owner and repository name from a GitHub URL
// such as https://github.com/owner/repo or git@github.com:owner/repo.git.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	if !strings.Contains(repoURL, "github.com") {
		return "", "", fmt.Errorf("not a github repository url: %q", repoURL)
	}
	trimmed := strings.TrimSuffix(strings.TrimRight(repoURL, "/"), ".git")
	trimmed = strings.ReplaceAll(trimmed, ":", "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("cannot parse repository url: %q", repoURL)
	}
	owner = parts[len(parts)-2]
	repo = parts[len(parts)-1]
	if owner == "" || repo == "" || strings.Contains(owner, "github.com") {
		return "", "", fmt.Errorf("cannot parse repository url: %q", repoURL)
	}
	return owner, repo, nil
}

// RepositoryActivity returns commits and issues from the last N days,
// newest first, capped at 20 entries.
func (f *Feed) RepositoryActivity(ctx context.Context, repoURL string, days int) ([]Activity, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = DefaultActivityDays
	}
	since := time.Now().AddDate(0, 0, -days)

	activity, err := f.listCommitActivity(ctx, owner, repo, since)
	if err != nil {
		return nil, fmt.Errorf("list commits for %s/%s: %w", owner, repo, err)
	}

	issues, err := f.listIssueActivity(ctx, owner, repo, since)
	if err != nil {
		// A repository without issues enabled still has a commit feed.
		common.Logger().Warn("github: listing issues failed", "owner", owner, "repo", repo, "error", err)
	} else {
		activity = append(activity, issues...)
	}

	sort.SliceStable(activity, func(i, j int) bool {
		return activity[i].Timestamp.After(activity[j].Timestamp)
	})
	if len(activity) > maxActivityEntries {
		activity = activity[:maxActivityEntries]
	}
	return activity, nil
}

func (f *Feed) listCommitActivity(ctx context.Context, owner, repo string, since time.Time) ([]Activity, error) {
	commits, _, err := f.client.Repositories.ListCommits(ctx, owner, repo, &gh.CommitsListOptions{
		Since:       since,
		ListOptions: gh.ListOptions{PerPage: maxActivityEntries},
	})
	if err != nil {
		return nil, err
	}

	activity := make([]Activity, 0, len(commits))
	for _, commit := range commits {
		entry := Activity{
			Type:      "commit",
			Message:   commit.GetCommit().GetMessage(),
			Author:    commit.GetCommit().GetAuthor().GetName(),
			Timestamp: commit.GetCommit().GetAuthor().GetDate().Time,
			SHA:       commit.GetSHA(),
			URL:       commit.GetHTMLURL(),
			Files:     f.commitFiles(ctx, owner, repo, commit.GetSHA()),
		}
		activity = append(activity, entry)
	}
	return activity, nil
}

// commitFiles fetches the file list for one commit. The list endpoint does
// not include files, so each commit needs its own detail request; a failed
// lookup degrades to an empty list rather than failing the feed.
func (f *Feed) commitFiles(ctx context.Context, owner, repo, sha string) []string {
	if sha == "" {
		return nil
	}
	detail, _, err := f.client.Repositories.GetCommit(ctx, owner, repo, sha, nil)
	if err != nil {
		common.Logger().Warn("github: fetching commit detail failed", "sha", sha, "error", err)
		return nil
	}
	files := make([]string, 0, len(detail.Files))
	for _, file := range detail.Files {
		files = append(files, file.GetFilename())
	}
	return files
}

func (f *Feed) listIssueActivity(ctx context.Context, owner, repo string, since time.Time) ([]Activity, error) {
	issues, _, err := f.client.Issues.ListByRepo(ctx, owner, repo, &gh.IssueListByRepoOptions{
		State:       "all",
		Since:       since,
		ListOptions: gh.ListOptions{PerPage: maxActivityEntries},
	})
	if err != nil {
		return nil, err
	}

	activity := make([]Activity, 0, len(issues))
	for _, issue := range issues {
		// Pull requests surface on the issues endpoint too.
		if issue.IsPullRequest() {
			continue
		}
		labels := make([]string, 0, len(issue.Labels))
		for _, label := range issue.Labels {
			labels = append(labels, label.GetName())
		}
		activity = append(activity, Activity{
			Type:      "issue",
			Message:   "Issue: " + issue.GetTitle(),
			Author:    issue.GetUser().GetLogin(),
			Timestamp: issue.GetCreatedAt().Time,
			State:     issue.GetState(),
			URL:       issue.GetHTMLURL(),
			Labels:    labels,
		})
	}
	return activity, nil
}

// RepositoryStats returns repository statistics, contributors, and the
// most recent releases.
func (f *Feed) RepositoryStats(ctx context.Context, repoURL string) (*Stats, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	repository, _, err := f.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("get repository %s/%s: %w", owner, repo, err)
	}

	stats := &Stats{
		Name:          repository.GetName(),
		Description:   repository.GetDescription(),
		Stars:         repository.GetStargazersCount(),
		Forks:         repository.GetForksCount(),
		OpenIssues:    repository.GetOpenIssuesCount(),
		CreatedAt:     repository.GetCreatedAt().Time,
		UpdatedAt:     repository.GetUpdatedAt().Time,
		DefaultBranch: repository.GetDefaultBranch(),
	}

	languages, _, err := f.client.Repositories.ListLanguages(ctx, owner, repo)
	if err != nil {
		common.Logger().Warn("github: listing languages failed", "owner", owner, "repo", repo, "error", err)
	} else {
		stats.Languages = languages
	}

	contributors, _, err := f.client.Repositories.ListContributors(ctx, owner, repo, nil)
	if err != nil {
		common.Logger().Warn("github: listing contributors failed", "owner", owner, "repo", repo, "error", err)
	}
	for _, contributor := range contributors {
		stats.Contributors = append(stats.Contributors, Contributor{
			Login:         contributor.GetLogin(),
			Contributions: contributor.GetContributions(),
			AvatarURL:     contributor.GetAvatarURL(),
		})
	}

	releases, _, err := f.client.Repositories.ListReleases(ctx, owner, repo, &gh.ListOptions{PerPage: maxReleases})
	if err != nil {
		common.Logger().Warn("github: listing releases failed", "owner", owner, "repo", repo, "error", err)
	}
	for i, release := range releases {
		if i >= maxReleases {
			break
		}
		name := release.GetName()
		if name == "" {
			name = release.GetTagName()
		}
		entry := Release{
			Name: name,
			Tag:  release.GetTagName(),
			URL:  release.GetHTMLURL(),
		}
		if published := release.GetPublishedAt(); !published.IsZero() {
			t := published.Time
			entry.PublishedAt = &t
		}
		stats.RecentReleases = append(stats.RecentReleases, entry)
	}

	return stats, nil
}

// HealthCheck reports whether the GitHub API answers for the configured
// credentials.
func (f *Feed) HealthCheck(ctx context.Context) bool {
	_, _, err := f.client.Users.Get(ctx, "")
	if err != nil {
		common.Logger().Warn("github: health check failed", "error", err)
		return false
	}
	return true
}

var _ ActivitySource = (*Feed)(nil)
