// File path: internal/llm/resilient_test.go
package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mtorres-dev/hackmate/internal/llm/providers"
)

type spyProvider struct {
	chatReply  string
	chatErr    error
	embedVecs  [][]float32
	embedErr   error
	chatCalls  int
	embedCalls int
}

func (s *spyProvider) Chat(ctx context.Context, messages []providers.Message) (string, error) {
	s.chatCalls++
	return s.chatReply, s.chatErr
}

func (s *spyProvider) Embed(ctx context.Context, input []string) ([][]float32, error) {
	s.embedCalls++
	if s.embedErr != nil {
		return nil, s.embedErr
	}
	if s.embedVecs != nil {
		return s.embedVecs, nil
	}
	vectors := make([][]float32, len(input))
	for i := range vectors {
		vectors[i] = []float32{0.5}
	}
	return vectors, nil
}

func (s *spyProvider) Name() string { return "spy" }

func userMessage(text string) []providers.Message {
	return []providers.Message{{Role: "user", Content: text}}
}

func TestChatUsesRealProvider(t *testing.T) {
	spy := &spyProvider{chatReply: "a complete answer from the real backend"}
	facade := NewResilient(spy)

	reply, err := facade.Chat(context.Background(), userMessage("hello"))
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != spy.chatReply {
		t.Fatalf("expected real reply, got %q", reply)
	}
	if facade.FallbackActive() {
		t.Fatal("fallback should not be active after a good response")
	}
}

func TestChatErrorTripsFallback(t *testing.T) {
	spy := &spyProvider{chatErr: errors.New("quota exceeded")}
	facade := NewResilient(spy)

	reply, err := facade.Chat(context.Background(), userMessage("validate my idea"))
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !strings.Contains(reply, "reduced-capability") {
		t.Fatalf("expected fallback reply, got %q", reply)
	}
	if !facade.FallbackActive() {
		t.Fatal("fallback should be active after a real provider error")
	}

	// Subsequent calls must not touch the real backend again.
	if _, err := facade.Chat(context.Background(), userMessage("hello again")); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if spy.chatCalls != 1 {
		t.Fatalf("real provider called %d times after fallback, want 1", spy.chatCalls)
	}
}

func TestShortChatReplyTreatedAsDegenerate(t *testing.T) {
	spy := &spyProvider{chatReply: "ok"}
	facade := NewResilient(spy)

	reply, err := facade.Chat(context.Background(), userMessage("hello"))
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply == "ok" {
		t.Fatal("degenerate reply should have been replaced by the fallback")
	}
	if !facade.FallbackActive() {
		t.Fatal("fallback should be active after a degenerate response")
	}
}

func TestEmbedWrongBatchLengthTripsFallback(t *testing.T) {
	spy := &spyProvider{embedVecs: [][]float32{{0.1}}}
	facade := NewResilient(spy)

	vectors, err := facade.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("fallback should return one vector per input, got %d", len(vectors))
	}
	if !facade.FallbackActive() {
		t.Fatal("fallback should be active after a truncated embedding batch")
	}
}

func TestHealthCheckRecoversRealProvider(t *testing.T) {
	spy := &spyProvider{chatErr: errors.New("transient outage")}
	facade := NewResilient(spy)

	if _, err := facade.Chat(context.Background(), userMessage("hello")); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !facade.FallbackActive() {
		t.Fatal("fallback should be active")
	}

	spy.chatErr = nil
	spy.chatReply = "the backend has recovered completely"
	if healthy := facade.HealthCheck(context.Background()); !healthy {
		t.Fatal("facade must always report healthy")
	}
	if facade.FallbackActive() {
		t.Fatal("successful health check should leave fallback mode")
	}

	reply, err := facade.Chat(context.Background(), userMessage("hello"))
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != spy.chatReply {
		t.Fatalf("expected real reply after recovery, got %q", reply)
	}
}

func TestHealthCheckFailureKeepsFallback(t *testing.T) {
	spy := &spyProvider{embedErr: errors.New("unreachable")}
	facade := NewResilient(spy)

	if healthy := facade.HealthCheck(context.Background()); !healthy {
		t.Fatal("facade must always report healthy")
	}
	if !facade.FallbackActive() {
		t.Fatal("failed probe should activate fallback")
	}
}

func TestNilRealProviderStartsInFallback(t *testing.T) {
	facade := NewResilient(nil)
	if !facade.FallbackActive() {
		t.Fatal("facade without a real provider must start in fallback mode")
	}
	reply, err := facade.Chat(context.Background(), userMessage("hello"))
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply == "" {
		t.Fatal("fallback reply should not be empty")
	}
	if facade.Name() != "local" {
		t.Fatalf("Name() = %q, want local", facade.Name())
	}
}
