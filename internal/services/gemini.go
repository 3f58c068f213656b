package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"alfredoptarigan/doc-grader/internal/config"
	applog "alfredoptarigan/doc-grader/internal/logger"
)

type geminiService struct {
	client          *genai.Client
	modelName       string
	temperature     float32
	maxOutputTokens int32
	logger          *slog.Logger
}

func NewGeminiService(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (LLMClient, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	if cfg.Gemini.APIKey == "" {
		return nil, errors.New("gemini api key is empty")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Gemini.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Gemini.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:          client,
		modelName:       cfg.Gemini.Model,
		temperature:     cfg.Temperature,
		maxOutputTokens: int32(cfg.MaxOutputTokens),
		logger:          logger,
	}, nil
}

func (g *geminiService) Provider() string { return config.ProviderGemini }

func (g *geminiService) Model() string { return g.modelName }

// GenerateText implements LLMClient.
func (g *geminiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	temperature := g.temperature
	genConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: g.maxOutputTokens,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), genConfig)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			g.logger.Error("gemini api error", "code", apiErr.Code, "status", apiErr.Status, "message", apiErr.Message)
		} else {
			g.logger.Error("gemini request failed", "error", err)
		}
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", errors.New("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		if reason := blockReason(resp); reason != "" {
			return "", fmt.Errorf("response blocked by safety filters: %s", reason)
		}
		return "", errors.New("no text content in response")
	}

	g.logger.Debug("gemini response received", "chars", len(text))
	return text, nil
}

// blockReason explains why Gemini returned no text, if it said so.
func blockReason(resp *genai.GenerateContentResponse) string {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return string(resp.PromptFeedback.BlockReason)
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil {
			continue
		}
		switch candidate.FinishReason {
		case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent, genai.FinishReasonBlocklist, genai.FinishReasonSPII:
			return string(candidate.FinishReason)
		}
	}
	return ""
}
