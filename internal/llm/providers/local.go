// File path: internal/llm/providers/local.go
package providers

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
)

type Message struct {
	Role    string
	Content string
}

type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	Embed(ctx context.Context, input []string) ([][]float32, error)
	Name() string
}

// EmbeddingDim is the fixed embedding dimension shared by every provider.
const EmbeddingDim = 768

// LocalProvider is the deterministic offline substitute for the real
// generation backend. Its embeddings are derived from a stable hash of the
// input text: the same text always yields a bit-identical vector, which
// keeps similarity self-consistent for demos and tests, but the vectors are
// NOT semantically meaningful. Its chat replies are keyword-routed canned
// responses that always carry a reduced-capability note.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (l *LocalProvider) Embed(ctx context.Context, input []string) ([][]float32, error) {
	vectors := make([][]float32, len(input))
	for i, text := range input {
		vectors[i] = deterministicVector(text)
	}
	return vectors, nil
}

func deterministicVector(text string) []float32 {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(hasher.Sum64())))
	vector := make([]float32, EmbeddingDim)
	for i := range vector {
		vector[i] = rng.Float32()*2 - 1
	}
	return vector
}

func (l *LocalProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}
	prompt := lastUserContent(messages)
	contextBlock := systemContext(messages)
	lower := strings.ToLower(prompt)
	switch {
	case containsAny(lower, "idea", "validate", "project", "build", "original"):
		return ideaValidationReply(prompt, contextBlock), nil
	case containsAny(lower, "how", "what", "elastic", "search", "implement", "embedding"):
		return documentationReply(prompt), nil
	case containsAny(lower, "progress", "commit", "github", "repository"):
		return progressReply(contextBlock), nil
	case containsAny(lower, "pitch", "presentation", "demo", "slide"):
		return presentationReply(), nil
	default:
		return generalReply(prompt), nil
	}
}

func (l *LocalProvider) Name() string {
	return "local"
}

func lastUserContent(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if strings.EqualFold(messages[i].Role, "user") {
			return messages[i].Content
		}
	}
	return messages[len(messages)-1].Content
}

func systemContext(messages []Message) string {
	var parts []string
	for _, msg := range messages {
		if strings.EqualFold(msg.Role, "system") {
			parts = append(parts, msg.Content)
		}
	}
	return strings.Join(parts, "\n")
}

func containsAny(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// contextItemCount counts numbered entries in an assembled context block,
// which is how retrieved documents and projects are rendered.
func contextItemCount(contextBlock string) int {
	count := 0
	for _, line := range strings.Split(contextBlock, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) > 2 && trimmed[0] >= '1' && trimmed[0] <= '9' && trimmed[1] == '.' {
			count++
		}
	}
	return count
}

func truncatePrompt(prompt string, limit int) string {
	runes := []rune(strings.TrimSpace(prompt))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "..."
}

const reducedCapabilityNote = "Note: this is a reduced-capability offline response. Configure the AI backend for context-aware answers."

func ideaValidationReply(prompt, contextBlock string) string {
	var b strings.Builder
	b.WriteString("Idea Validation Analysis\n\n")
	fmt.Fprintf(&b, "Your concept: %s\n\n", truncatePrompt(prompt, 100))
	if similar := contextItemCount(contextBlock); similar > 0 {
		fmt.Fprintf(&b, "Found %d similar projects in the corpus - the problem space is validated and shows market demand.\n\n", similar)
	} else {
		b.WriteString("No closely matching projects found - your concept may be novel, or the corpus is sparse in this area.\n\n")
	}
	b.WriteString("Recommendations:\n")
	b.WriteString("1. Emphasize what differentiates your solution\n")
	b.WriteString("2. Build a compelling demo around the core feature\n")
	b.WriteString("3. Prepare comparisons with existing solutions\n")
	b.WriteString("4. Show a clear path to users\n\n")
	b.WriteString(reducedCapabilityNote)
	return b.String()
}

func documentationReply(prompt string) string {
	var b strings.Builder
	b.WriteString("Technical Documentation Response\n\n")
	fmt.Fprintf(&b, "Your question: %s\n\n", truncatePrompt(prompt, 100))
	b.WriteString("Hybrid search combines keyword (BM25) relevance with vector similarity over the same document set. ")
	b.WriteString("Index documents with a dense_vector field, query with multi_match plus knn, and let the backend fuse scores.\n\n")
	b.WriteString("Recommended approach:\n")
	b.WriteString("1. Start from the official documentation for your stack\n")
	b.WriteString("2. Build and verify each component incrementally\n")
	b.WriteString("3. Add error handling and logging on every boundary\n\n")
	b.WriteString(reducedCapabilityNote)
	return b.String()
}

func progressReply(contextBlock string) string {
	var b strings.Builder
	b.WriteString("Development Progress Summary\n\n")
	if items := contextItemCount(contextBlock); items > 0 {
		fmt.Fprintf(&b, "Recent activity shows %d tracked items.\n\n", items)
	} else {
		b.WriteString("Activity data is limited for this window.\n\n")
	}
	b.WriteString("Suggested priorities:\n")
	b.WriteString("1. Complete remaining core features\n")
	b.WriteString("2. Test integrations before the demo\n")
	b.WriteString("3. Update the README and record a demo\n\n")
	b.WriteString(reducedCapabilityNote)
	return b.String()
}

func presentationReply() string {
	var b strings.Builder
	b.WriteString("Pitch Structure\n\n")
	b.WriteString("1. Problem - the pain point and who has it\n")
	b.WriteString("2. Solution - your approach and key innovation\n")
	b.WriteString("3. Live demo - show the product working\n")
	b.WriteString("4. Technology - why the stack choices matter\n")
	b.WriteString("5. What's next - roadmap and vision\n\n")
	b.WriteString("Keep the demo under three minutes and lead with the strongest feature.\n\n")
	b.WriteString(reducedCapabilityNote)
	return b.String()
}

func generalReply(prompt string) string {
	var b strings.Builder
	b.WriteString("Hackathon Assistant\n\n")
	fmt.Fprintf(&b, "Your question: %s\n\n", truncatePrompt(prompt, 150))
	b.WriteString("I can help with idea validation, technical questions, progress tracking, and presentation prep. ")
	b.WriteString("Try \"Validate my idea: ...\", \"How do I implement ...\", or \"Check my project progress\".\n\n")
	b.WriteString(reducedCapabilityNote)
	return b.String()
}
