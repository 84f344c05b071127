// File path: internal/llm/providers/openai_client.go
package providers

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mtorres-dev/hackmate/internal/common"
)

type OpenAIProvider struct {
	client      *openai.Client
	chatModel   string
	embedModel  string
	maxTokens   int
	temperature float32
}

func NewOpenAIProvider(client *openai.Client, chatModel, embedModel string, maxTokens int, temperature float32) *OpenAIProvider {
	if chatModel == "" {
		chatModel = "gpt-4o"
	}
	if embedModel == "" {
		embedModel = "text-embedding-3-small"
	}
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	logger := common.Logger()
	logger.Info("llm: OpenAI provider configured", "chat_model", chatModel, "embed_model", embedModel)
	return &OpenAIProvider{
		client:      client,
		chatModel:   chatModel,
		embedModel:  embedModel,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func (o *OpenAIProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if o.client == nil {
		return "", fmt.Errorf("nil openai client")
	}
	logger := common.Logger()
	logger.Debug("llm: sending chat completion request", "model", o.chatModel, "messages", len(messages))
	req := openai.ChatCompletionRequest{
		Model:       o.chatModel,
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	}
	for _, msg := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: msg.Role, Content: msg.Content})
	}
	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		logger.Error("llm: chat completion failed", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	logger.Debug("llm: chat completion succeeded")
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAIProvider) Embed(ctx context.Context, input []string) ([][]float32, error) {
	if o.client == nil {
		return nil, fmt.Errorf("nil openai client")
	}
	if len(input) == 0 {
		return nil, nil
	}
	logger := common.Logger()
	logger.Debug("llm: creating embeddings", "model", o.embedModel, "items", len(input))
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: input,
		Model: openai.EmbeddingModel(o.embedModel),
	})
	if err != nil {
		logger.Error("llm: embedding request failed", "error", err)
		return nil, err
	}
	vectors := make([][]float32, 0, len(resp.Data))
	for _, data := range resp.Data {
		vectors = append(vectors, data.Embedding)
	}
	logger.Debug("llm: embedding request succeeded", "returned", len(vectors))
	return vectors, nil
}

func (o *OpenAIProvider) Name() string {
	return "openai"
}
