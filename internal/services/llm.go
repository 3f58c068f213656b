package services

import (
	"context"
	"fmt"
	"log/slog"

	"alfredoptarigan/doc-grader/internal/config"
)

// LLMClient sends one prompt to a generative-language model and returns its raw text reply.
type LLMClient interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	Provider() string
	Model() string
}

// NewLLMClient builds the client for the provider selected in cfg.
func NewLLMClient(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (LLMClient, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiService(ctx, cfg, logger)
	case config.ProviderOpenAI:
		return NewOpenAIService(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
