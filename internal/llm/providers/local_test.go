// File path: internal/llm/providers/local_test.go
package providers

import (
	"context"
	"strings"
	"testing"
)

func TestEmbedDeterministic(t *testing.T) {
	provider := NewLocalProvider()
	first, err := provider.Embed(context.Background(), []string{"recipe sharing app"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	second, err := provider.Embed(context.Background(), []string{"recipe sharing app"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected one vector per input, got %d and %d", len(first), len(second))
	}
	for i := range first[0] {
		if first[0][i] != second[0][i] {
			t.Fatalf("vectors differ at position %d: %v vs %v", i, first[0][i], second[0][i])
		}
	}
}

func TestEmbedDimensionAndOrder(t *testing.T) {
	provider := NewLocalProvider()
	vectors, err := provider.Embed(context.Background(), []string{"x", "y"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	for i, vector := range vectors {
		if len(vector) != EmbeddingDim {
			t.Fatalf("vector %d has dimension %d, want %d", i, len(vector), EmbeddingDim)
		}
	}
	// Distinct texts should not collide.
	same := true
	for i := range vectors[0] {
		if vectors[0][i] != vectors[1][i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("distinct inputs produced identical vectors")
	}
}

func TestChatRouting(t *testing.T) {
	provider := NewLocalProvider()
	cases := []struct {
		prompt string
		want   string
	}{
		{"Can you validate my idea for an app?", "Idea Validation"},
		{"how do I set up hybrid search?", "Technical Documentation"},
		{"summarize our commit progress", "Development Progress"},
		{"help me with my pitch deck", "Pitch Structure"},
		{"hello", "Hackathon Assistant"},
	}
	for _, tc := range cases {
		reply, err := provider.Chat(context.Background(), []Message{{Role: "user", Content: tc.prompt}})
		if err != nil {
			t.Fatalf("Chat(%q): %v", tc.prompt, err)
		}
		if !strings.Contains(reply, tc.want) {
			t.Fatalf("Chat(%q) missing %q in reply:\n%s", tc.prompt, tc.want, reply)
		}
		if !strings.Contains(reply, "reduced-capability") {
			t.Fatalf("Chat(%q) missing reduced-capability note", tc.prompt)
		}
	}
}

func TestChatCountsContextItems(t *testing.T) {
	provider := NewLocalProvider()
	contextBlock := "Similar hackathon projects:\n1. Alpha\n2. Beta\n3. Gamma\n"
	reply, err := provider.Chat(context.Background(), []Message{
		{Role: "system", Content: contextBlock},
		{Role: "user", Content: "validate my idea"},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !strings.Contains(reply, "Found 3 similar projects") {
		t.Fatalf("expected similar-project count in reply:\n%s", reply)
	}
}

func TestChatEmptyMessages(t *testing.T) {
	provider := NewLocalProvider()
	if _, err := provider.Chat(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty message list")
	}
}
