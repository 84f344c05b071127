// File path: internal/github/analyzer.go
package github

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mtorres-dev/hackmate/internal/common"
)

// CommitAnalysis summarizes commit patterns over the analysis window.
type CommitAnalysis struct {
	TotalCommits      int            `json:"total_commits"`
	CommitFrequency   map[string]int `json:"commit_frequency,omitempty"`
	AveragePerDay     float64        `json:"average_per_day"`
	MessageCategories map[string]int `json:"message_analysis,omitempty"`
	MostActiveAuthor  string         `json:"most_active_author,omitempty"`
}

// FileChangeCount pairs a file path with how many commits touched it.
type FileChangeCount struct {
	File    string `json:"file"`
	Changes int    `json:"changes"`
}

// FileAnalysis summarizes what parts of the codebase recent commits touched.
type FileAnalysis struct {
	TotalFilesChanged int               `json:"total_files_changed"`
	MostChangedFiles  []FileChangeCount `json:"most_changed_files,omitempty"`
	FileTypes         map[string]int    `json:"file_types,omitempty"`
	DevelopmentFocus  string            `json:"development_focus"`
}

// ProgressMetrics are the headline numbers for a progress report.
type ProgressMetrics struct {
	ActivityScore        int    `json:"activity_score"`
	CommitVelocity       int    `json:"commit_velocity"`
	IssueActivity        int    `json:"issue_activity"`
	ContributorCount     int    `json:"contributor_count"`
	ProjectMaturity      string `json:"project_maturity"`
	DevelopmentIntensity string `json:"development_intensity"`
}

// ProgressAnalysis is the full analyzer output for one repository.
type ProgressAnalysis struct {
	Repository      string          `json:"repository"`
	AnalysisPeriod  string          `json:"analysis_period"`
	CommitAnalysis  CommitAnalysis  `json:"commit_analysis"`
	FileAnalysis    FileAnalysis    `json:"file_analysis"`
	ProgressMetrics ProgressMetrics `json:"progress_metrics"`
	RecentActivity  []Activity      `json:"recent_activity"`
	Recommendations []string        `json:"recommendations"`
}

// commitCategories maps commit message keywords to categories. For each
// message the first matching category wins, in this order.
var commitCategories = []struct {
	name     string
	keywords []string
}{
	{"feature", []string{"feat", "feature", "add", "implement"}},
	{"fix", []string{"fix", "bug", "patch", "resolve"}},
	{"refactor", []string{"refactor", "clean", "improve", "optimize"}},
	{"docs", []string{"doc", "readme", "comment", "documentation"}},
	{"style", []string{"style", "format", "lint", "prettier"}},
	{"test", []string{"test", "spec", "coverage"}},
}

// focusByExtension maps the dominant changed file extension to a
// development focus label.
var focusByExtension = map[string]string{
	"py":   "Backend Development",
	"go":   "Backend Development",
	"js":   "Frontend Development",
	"ts":   "Frontend Development",
	"tsx":  "Frontend Development",
	"jsx":  "Frontend Development",
	"html": "Frontend Development",
	"css":  "Frontend Development",
	"scss": "Frontend Development",
	"md":   "Documentation",
	"yml":  "DevOps/Configuration",
	"yaml": "DevOps/Configuration",
	"json": "Configuration",
	"sql":  "Database Development",
}

// Analyzer derives progress reports from repository activity and stats.
type Analyzer struct {
	source ActivitySource
}

func NewAnalyzer(source ActivitySource) *Analyzer {
	return &Analyzer{source: source}
}

// AnalyzeProgress builds a progress report for one repository. Either the
// activity feed or the stats fetch may fail on its own; the report is only
// an error when both are unavailable.
func (a *Analyzer) AnalyzeProgress(ctx context.Context, repoURL string) (*ProgressAnalysis, error) {
	if a.source == nil {
		return nil, fmt.Errorf("no activity source configured")
	}
	if _, _, err := ParseRepoURL(repoURL); err != nil {
		return nil, err
	}

	activity, actErr := a.source.RepositoryActivity(ctx, repoURL, DefaultActivityDays)
	if actErr != nil {
		common.Logger().Warn("github: activity fetch failed during analysis", "repo", repoURL, "error", actErr)
	}
	stats, statsErr := a.source.RepositoryStats(ctx, repoURL)
	if statsErr != nil {
		common.Logger().Warn("github: stats fetch failed during analysis", "repo", repoURL, "error", statsErr)
	}
	if (actErr != nil || len(activity) == 0) && (statsErr != nil || stats == nil) {
		return nil, fmt.Errorf("unable to analyze repository %s", repoURL)
	}

	recent := activity
	if len(recent) > 5 {
		recent = recent[:5]
	}

	repoName := "Unknown"
	if stats != nil && stats.Name != "" {
		repoName = stats.Name
	}

	return &ProgressAnalysis{
		Repository:      repoName,
		AnalysisPeriod:  "Last 7 days",
		CommitAnalysis:  analyzeCommits(activity),
		FileAnalysis:    analyzeFileChanges(activity),
		ProgressMetrics: calculateMetrics(activity, stats),
		RecentActivity:  recent,
		Recommendations: recommendations(activity, stats),
	}, nil
}

func commitsOnly(activity []Activity) []Activity {
	commits := make([]Activity, 0, len(activity))
	for _, entry := range activity {
		if entry.Type == "commit" {
			commits = append(commits, entry)
		}
	}
	return commits
}

func analyzeCommits(activity []Activity) CommitAnalysis {
	commits := commitsOnly(activity)
	if len(commits) == 0 {
		return CommitAnalysis{TotalCommits: 0}
	}

	frequency := make(map[string]int)
	for _, commit := range commits {
		day := commit.Timestamp.Format("2006-01-02")
		frequency[day]++
	}

	categories := make(map[string]int, len(commitCategories))
	for _, category := range commitCategories {
		categories[category.name] = 0
	}
	for _, commit := range commits {
		lower := strings.ToLower(commit.Message)
		for _, category := range commitCategories {
			if containsAny(lower, category.keywords) {
				categories[category.name]++
				break
			}
		}
	}

	return CommitAnalysis{
		TotalCommits:      len(commits),
		CommitFrequency:   frequency,
		AveragePerDay:     float64(len(commits)) / float64(max(len(frequency), 1)),
		MessageCategories: categories,
		MostActiveAuthor:  mostActiveAuthor(commits),
	}
}

// mostActiveAuthor picks the author with the most commits; ties go to the
// author seen first in the feed.
func mostActiveAuthor(commits []Activity) string {
	if len(commits) == 0 {
		return "Unknown"
	}
	counts := make(map[string]int)
	var order []string
	for _, commit := range commits {
		author := commit.Author
		if author == "" {
			author = "Unknown"
		}
		if _, seen := counts[author]; !seen {
			order = append(order, author)
		}
		counts[author]++
	}
	best := order[0]
	for _, author := range order {
		if counts[author] > counts[best] {
			best = author
		}
	}
	return best
}

func analyzeFileChanges(activity []Activity) FileAnalysis {
	commits := commitsOnly(activity)
	if len(commits) == 0 {
		return FileAnalysis{DevelopmentFocus: "Unknown"}
	}

	fileChanges := make(map[string]int)
	fileTypes := make(map[string]int)
	var typeOrder []string
	for _, commit := range commits {
		for _, file := range commit.Files {
			fileChanges[file]++
			if idx := strings.LastIndex(file, "."); idx >= 0 && idx < len(file)-1 {
				ext := strings.ToLower(file[idx+1:])
				if _, seen := fileTypes[ext]; !seen {
					typeOrder = append(typeOrder, ext)
				}
				fileTypes[ext]++
			}
		}
	}

	mostChanged := make([]FileChangeCount, 0, len(fileChanges))
	for file, changes := range fileChanges {
		mostChanged = append(mostChanged, FileChangeCount{File: file, Changes: changes})
	}
	sort.SliceStable(mostChanged, func(i, j int) bool {
		if mostChanged[i].Changes != mostChanged[j].Changes {
			return mostChanged[i].Changes > mostChanged[j].Changes
		}
		return mostChanged[i].File < mostChanged[j].File
	})
	if len(mostChanged) > 5 {
		mostChanged = mostChanged[:5]
	}

	return FileAnalysis{
		TotalFilesChanged: len(fileChanges),
		MostChangedFiles:  mostChanged,
		FileTypes:         fileTypes,
		DevelopmentFocus:  developmentFocus(fileTypes, typeOrder),
	}
}

// developmentFocus labels the dominant extension; ties go to the extension
// encountered first.
func developmentFocus(fileTypes map[string]int, order []string) string {
	if len(fileTypes) == 0 {
		return "Unknown"
	}
	best := order[0]
	for _, ext := range order {
		if fileTypes[ext] > fileTypes[best] {
			best = ext
		}
	}
	if focus, ok := focusByExtension[best]; ok {
		return focus
	}
	return "General Development"
}

func calculateMetrics(activity []Activity, stats *Stats) ProgressMetrics {
	commits := 0
	issues := 0
	for _, entry := range activity {
		switch entry.Type {
		case "commit":
			commits++
		case "issue":
			issues++
		}
	}

	metrics := ProgressMetrics{
		ActivityScore:        len(activity),
		CommitVelocity:       commits,
		IssueActivity:        issues,
		ProjectMaturity:      assessMaturity(stats),
		DevelopmentIntensity: "Low",
	}
	if stats != nil {
		metrics.ContributorCount = len(stats.Contributors)
	}
	switch {
	case commits > 10:
		metrics.DevelopmentIntensity = "High"
	case commits > 5:
		metrics.DevelopmentIntensity = "Medium"
	}
	return metrics
}

func assessMaturity(stats *Stats) string {
	if stats == nil {
		return "Unknown"
	}
	contributors := len(stats.Contributors)
	releases := len(stats.RecentReleases)
	switch {
	case contributors >= 3 && releases >= 1:
		return "Mature"
	case contributors >= 2 || releases >= 1:
		return "Developing"
	default:
		return "Early Stage"
	}
}

func recommendations(activity []Activity, stats *Stats) []string {
	recs := make([]string, 0, 4)
	commits := len(commitsOnly(activity))

	if commits < 5 {
		recs = append(recs, "Consider increasing commit frequency for better progress tracking")
	}
	if stats == nil || len(stats.RecentReleases) == 0 {
		recs = append(recs, "Consider creating releases to mark project milestones")
	}
	if stats != nil && len(stats.Contributors) == 1 {
		recs = append(recs, "Encourage team collaboration with more contributors")
	}
	if stats != nil && stats.OpenIssues > 10 {
		recs = append(recs, "Focus on resolving open issues to maintain project health")
	}
	return recs
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
