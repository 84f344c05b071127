// File path: internal/chat/orchestrator.go
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mtorres-dev/hackmate/internal/common"
	ctxbuilder "github.com/mtorres-dev/hackmate/internal/context"
	"github.com/mtorres-dev/hackmate/internal/github"
	"github.com/mtorres-dev/hackmate/internal/intent"
	"github.com/mtorres-dev/hackmate/internal/llm"
	"github.com/mtorres-dev/hackmate/internal/search"
)

const historyWindow = 5

const systemPrompt = `You are an expert AI-powered Hackathon Agent designed to help teams excel in hackathons. You are knowledgeable about hackathon best practices and winning strategies, Google Cloud services, Elastic hybrid search, software development, and presentation techniques.

Your role is to provide helpful, accurate, and actionable advice based on retrieved information, help validate project ideas by analyzing similar past projects, answer questions about hackathon rules and partner technologies using official documentation, and assist with progress tracking using real-time GitHub data.

When provided with relevant information from documentation, projects, or GitHub activity, use it to inform your responses and reference it directly. If similar projects exist, help differentiate the user's idea. Always be encouraging while being honest about challenges, and provide actionable next steps.`

// ValidationError marks a request the client could fix. The HTTP layer
// maps it to a 400 response.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Message is one turn of a conversation as supplied by the client.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Request is a chat turn with optional history and retrieval hints.
type Request struct {
	Message             string    `json:"message"`
	ConversationHistory []Message `json:"conversation_history,omitempty"`
	RepoURL             string    `json:"repo_url,omitempty"`
	ContextType         string    `json:"context_type,omitempty"`
	ConversationID      string    `json:"conversation_id,omitempty"`
}

// Response is a generated reply together with its provenance, follow-up
// suggestions, and conversation identity.
type Response struct {
	Response       string   `json:"response"`
	Sources        []any    `json:"sources"`
	Suggestions    []string `json:"suggestions"`
	ConversationID string   `json:"conversation_id,omitempty"`
}

// AnalysisSource is the provenance record attached to progress reports.
type AnalysisSource struct {
	Type            string                 `json:"type"`
	Repository      string                 `json:"repository"`
	AnalysisPeriod  string                 `json:"analysis_period"`
	CommitCount     int                    `json:"commit_count"`
	ProgressMetrics github.ProgressMetrics `json:"progress_metrics"`
}

// Orchestrator runs the chat pipeline: embed the message, gather context,
// generate a reply, and attach provenance and suggestions.
type Orchestrator struct {
	provider llm.Provider
	builder  *ctxbuilder.Builder
	search   *search.Service
	analyzer *github.Analyzer
}

func NewOrchestrator(provider llm.Provider, builder *ctxbuilder.Builder, svc *search.Service, analyzer *github.Analyzer) *Orchestrator {
	return &Orchestrator{provider: provider, builder: builder, search: svc, analyzer: analyzer}
}

// Respond handles a general chat turn.
func (o *Orchestrator) Respond(ctx context.Context, req Request) (*Response, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, &ValidationError{Reason: "message is required"}
	}

	vector := o.embedMessage(ctx, message)

	contextType := intent.ContextType(req.ContextType)
	if req.ContextType != "" && !intent.Valid(req.ContextType) {
		common.Logger().Warn("chat: unknown context type, classifying instead", "context_type", req.ContextType)
		contextType = ""
	}

	bundle := o.builder.Gather(ctx, ctxbuilder.Request{
		Message:     message,
		Vector:      vector,
		ContextType: contextType,
		RepoURL:     req.RepoURL,
	})

	messages := o.buildMessages(req.ConversationHistory, bundle.FormattedContext, message)
	reply, err := o.provider.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generate response: %w", err)
	}

	return &Response{
		Response:       reply,
		Sources:        wrapSources(bundle.Sources),
		Suggestions:    FollowUpSuggestions(bundle.ContextType),
		ConversationID: conversationID(req.ConversationID),
	}, nil
}

// ValidateIdea runs the dedicated idea validation flow: the message is the
// idea, and the five most similar past projects frame the critique.
func (o *Orchestrator) ValidateIdea(ctx context.Context, req Request) (*Response, error) {
	idea := strings.TrimSpace(req.Message)
	if idea == "" {
		return nil, &ValidationError{Reason: "message is required"}
	}

	vector := o.embedMessage(ctx, idea)
	projects := o.search.SearchProjects(ctx, idea, vector, 5)

	prompt := fmt.Sprintf(`Please analyze this hackathon project idea and provide validation feedback:

Project Idea: %s

Based on the similar projects found, please provide an originality assessment, potential challenges and pitfalls to avoid, suggestions for differentiation, a technical feasibility assessment, and recommendations for improvement. Be constructive and encouraging while being honest about potential issues.`, idea)

	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "system", Content: formatSimilarProjects(projects)},
		{Role: "user", Content: prompt},
	}
	reply, err := o.provider.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generate validation: %w", err)
	}

	sources := make([]any, 0, len(projects))
	for _, project := range projects {
		sources = append(sources, ctxbuilder.Source{
			Type:           "devpost_project",
			Title:          project.Title,
			Description:    truncate(project.Description, 200),
			URL:            project.URL,
			RelevanceScore: project.Score,
		})
	}

	return &Response{
		Response:       reply,
		Sources:        sources,
		Suggestions:    ideaValidationSuggestions,
		ConversationID: conversationID(req.ConversationID),
	}, nil
}

// ProgressReport analyzes a repository and narrates the findings.
func (o *Orchestrator) ProgressReport(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.RepoURL) == "" {
		return nil, &ValidationError{Reason: "repository URL is required"}
	}

	analysis, err := o.analyzer.AnalyzeProgress(ctx, req.RepoURL)
	if err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	prompt := `Based on the recent GitHub activity, please provide a comprehensive progress summary including key accomplishments and milestones reached, current development focus areas, potential blockers or challenges, recommendations for next steps, and an overall project health assessment. Be specific about the technical progress and provide actionable insights.`

	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "system", Content: formatActivity(analysis.RecentActivity)},
		{Role: "user", Content: prompt},
	}
	reply, err := o.provider.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generate progress summary: %w", err)
	}

	return &Response{
		Response: reply,
		Sources: []any{AnalysisSource{
			Type:            "github_analysis",
			Repository:      analysis.Repository,
			AnalysisPeriod:  analysis.AnalysisPeriod,
			CommitCount:     analysis.CommitAnalysis.TotalCommits,
			ProgressMetrics: analysis.ProgressMetrics,
		}},
		Suggestions:    progressReportSuggestions,
		ConversationID: conversationID(req.ConversationID),
	}, nil
}

// embedMessage returns the message embedding, or nil when embedding fails.
// A missing vector degrades retrieval to lexical-only rather than failing
// the turn.
func (o *Orchestrator) embedMessage(ctx context.Context, message string) []float32 {
	vectors, err := o.provider.Embed(ctx, []string{message})
	if err != nil || len(vectors) == 0 {
		common.Logger().Warn("chat: message embedding failed", "error", err)
		return nil
	}
	return vectors[0]
}

// buildMessages assembles the model conversation: persona, the most recent
// history turns in chronological order, retrieved context, and the current
// message last.
func (o *Orchestrator) buildMessages(history []Message, formattedContext, message string) []llm.Message {
	messages := make([]llm.Message, 0, historyWindow+3)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompt})

	start := 0
	if len(history) > historyWindow {
		start = len(history) - historyWindow
	}
	for _, turn := range history[start:] {
		role := strings.ToLower(turn.Role)
		if role != "user" && role != "assistant" {
			continue
		}
		messages = append(messages, llm.Message{Role: role, Content: turn.Content})
	}

	if formattedContext != "" {
		messages = append(messages, llm.Message{Role: "system", Content: "Relevant information:\n" + formattedContext})
	}
	return append(messages, llm.Message{Role: "user", Content: message})
}

func formatSimilarProjects(projects []search.Project) string {
	if len(projects) == 0 {
		return "No similar projects found in the database."
	}
	var b strings.Builder
	b.WriteString("Similar Projects Found:\n")
	for i, project := range projects {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, project.Title)
		fmt.Fprintf(&b, "   Description: %s\n", truncate(project.Description, 200))
		fmt.Fprintf(&b, "   Technologies: %s\n", strings.Join(project.Technologies, ", "))
		fmt.Fprintf(&b, "   Category: %s\n", project.Category)
		fmt.Fprintf(&b, "   Year: %s\n", project.Year)
		fmt.Fprintf(&b, "   Relevance Score: %.2f\n", project.Score)
	}
	return b.String()
}

func formatActivity(activity []github.Activity) string {
	if len(activity) == 0 {
		return "No recent GitHub activity found."
	}
	var b strings.Builder
	b.WriteString("Recent GitHub Activity:\n")
	for i, item := range activity {
		if i >= 10 {
			break
		}
		fmt.Fprintf(&b, "- %s: %s\n", item.Type, item.Message)
		fmt.Fprintf(&b, "  Author: %s\n", item.Author)
		fmt.Fprintf(&b, "  Time: %s\n", item.Timestamp.Format("2006-01-02 15:04"))
		if len(item.Files) > 0 {
			files := item.Files
			if len(files) > 3 {
				files = files[:3]
			}
			fmt.Fprintf(&b, "  Files: %s\n", strings.Join(files, ", "))
		}
	}
	return b.String()
}

func wrapSources(sources []ctxbuilder.Source) []any {
	wrapped := make([]any, 0, len(sources))
	for _, source := range sources {
		wrapped = append(wrapped, source)
	}
	return wrapped
}

func conversationID(current string) string {
	if current != "" {
		return current
	}
	return uuid.NewString()
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) > limit {
		runes = runes[:limit]
	}
	return string(runes) + "..."
}
