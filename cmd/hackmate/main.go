// File path: cmd/hackmate/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mtorres-dev/hackmate/internal/api"
	"github.com/mtorres-dev/hackmate/internal/common"
	"github.com/mtorres-dev/hackmate/internal/config"
	"github.com/mtorres-dev/hackmate/internal/github"
	"github.com/mtorres-dev/hackmate/internal/llm"
	"github.com/mtorres-dev/hackmate/internal/search"
)

func main() {
	logger := common.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logger.Warn("hackmate: .env file not loaded", "error", err)
	} else {
		logger.Info("hackmate: environment loaded from .env")
	}

	addr := flag.String("addr", "", "listen address (overrides HACKMATE_ADDR)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("hackmate: config load failed", "error", err)
		fmt.Println("config error:", err)
		os.Exit(1)
	}
	if trimmed := strings.TrimSpace(*addr); trimmed != "" {
		cfg.Addr = trimmed
	}

	logger.Info("hackmate: startup initiated", "addr", cfg.Addr, "elastic", cfg.Elastic.Address)

	backend := search.NewClient(search.Config{
		Address:    cfg.Elastic.Address,
		APIKey:     cfg.Elastic.APIKey,
		Timeout:    cfg.Elastic.Timeout,
		MaxRetries: cfg.Elastic.MaxRetries,
	})
	defer func() { _ = backend.Close() }()

	if err := backend.Health(ctx); err != nil {
		logger.Warn("hackmate: elasticsearch unreachable at startup", "error", err)
	} else {
		logger.Info("hackmate: elasticsearch available")
	}

	svc := search.NewService(backend, cfg.Elastic.ProjectsIndex, cfg.Elastic.DocsIndex, cfg.Elastic.ActivityIndex)

	provider := llm.NewProvider(cfg.OpenAI)
	logger.Info("hackmate: llm provider ready", "provider", provider.Name(), "fallback", provider.FallbackActive())

	var activity github.ActivitySource
	if strings.TrimSpace(cfg.GitHub.Token) != "" {
		feed := github.NewFeed(cfg.GitHub.Token)
		if feed.HealthCheck(ctx) {
			logger.Info("hackmate: github api available")
		} else {
			logger.Warn("hackmate: github api unreachable, feed will retry per request")
		}
		activity = feed
	} else {
		logger.Warn("hackmate: GITHUB_TOKEN not set, repository features disabled")
	}

	server := api.NewServer(provider, svc, activity, cfg.GitHub.WebhookSecret)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("hackmate: listening", "addr", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("hackmate: server terminated", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}
}
