// File path: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Elastic holds the connection settings for the search backend.
type Elastic struct {
	Address       string        `env:"ELASTIC_ADDRESS" env-default:"http://localhost:9200"`
	APIKey        string        `env:"ELASTIC_API_KEY"`
	Timeout       time.Duration `env:"ELASTIC_TIMEOUT" env-default:"30s"`
	MaxRetries    int           `env:"ELASTIC_MAX_RETRIES" env-default:"3"`
	ProjectsIndex string        `env:"PROJECTS_INDEX" env-default:"devpost_projects"`
	DocsIndex     string        `env:"DOCUMENTATION_INDEX" env-default:"hackathon_docs"`
	ActivityIndex string        `env:"GITHUB_INDEX" env-default:"github_activity"`
}

// OpenAI holds settings for the generation/embedding backend.
type OpenAI struct {
	APIKey      string  `env:"OPENAI_API_KEY"`
	BaseURL     string  `env:"OPENAI_BASE_URL"`
	ChatModel   string  `env:"OPENAI_CHAT_MODEL" env-default:"gpt-4o"`
	EmbedModel  string  `env:"OPENAI_EMBED_MODEL" env-default:"text-embedding-3-small"`
	MaxTokens   int     `env:"OPENAI_MAX_TOKENS" env-default:"2048"`
	Temperature float32 `env:"OPENAI_TEMPERATURE" env-default:"0.7"`
}

// GitHub holds the activity feed credentials.
type GitHub struct {
	Token         string `env:"GITHUB_TOKEN"`
	WebhookSecret string `env:"GITHUB_WEBHOOK_SECRET"`
}

// Config is the process-wide configuration, loaded once at startup and
// passed down to components.
type Config struct {
	Addr    string `env:"HACKMATE_ADDR" env-default:":8080"`
	Elastic Elastic
	OpenAI  OpenAI
	GitHub  GitHub
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return &cfg, nil
}
