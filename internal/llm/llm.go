// File path: internal/llm/llm.go
package llm

import (
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mtorres-dev/hackmate/internal/common"
	"github.com/mtorres-dev/hackmate/internal/config"
	"github.com/mtorres-dev/hackmate/internal/llm/providers"
)

type Message = providers.Message

type Provider = providers.Provider

// NewProvider builds the resilient facade for the configured backend. With
// no API key the facade starts in fallback mode and stays there.
func NewProvider(cfg config.OpenAI) *Resilient {
	logger := common.Logger()
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		logger.Warn("llm: OPENAI_API_KEY not set; using local fallback provider")
		return NewResilient(nil)
	}
	clientCfg := openai.DefaultConfig(apiKey)
	if endpoint := strings.TrimSpace(cfg.BaseURL); endpoint != "" {
		logger.Info("llm: configuring OpenAI client with custom endpoint", "endpoint", endpoint)
		clientCfg.BaseURL = endpoint
	}
	client := openai.NewClientWithConfig(clientCfg)
	logger.Info("llm: OpenAI provider selected")
	real := providers.NewOpenAIProvider(client, cfg.ChatModel, cfg.EmbedModel, cfg.MaxTokens, cfg.Temperature)
	return NewResilient(real)
}
