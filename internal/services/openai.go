package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"alfredoptarigan/doc-grader/internal/config"
	applog "alfredoptarigan/doc-grader/internal/logger"
)

type openAIService struct {
	client          openai.Client
	modelName       string
	temperature     float64
	maxOutputTokens int64
	logger          *slog.Logger
}

func NewOpenAIService(cfg config.LLMConfig, logger *slog.Logger) LLMClient {
	if logger == nil {
		logger = applog.Discard()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.OpenAI.APIKey),
		// One model call per request; failures surface to the client as-is.
		option.WithMaxRetries(0),
	}
	if cfg.OpenAI.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAI.BaseURL))
	}

	return &openAIService{
		client:          openai.NewClient(opts...),
		modelName:       cfg.OpenAI.Model,
		temperature:     float64(cfg.Temperature),
		maxOutputTokens: int64(cfg.MaxOutputTokens),
		logger:          logger,
	}
}

func (o *openAIService) Provider() string { return config.ProviderOpenAI }

func (o *openAIService) Model() string { return o.modelName }

// GenerateText implements LLMClient.
func (o *openAIService) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature:         openai.Float(o.temperature),
		MaxCompletionTokens: openai.Int(o.maxOutputTokens),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			o.logger.Error("openai api error", "status", apiErr.StatusCode, "code", apiErr.Code, "type", apiErr.Type, "message", apiErr.Message)
			// Error() on the SDK type includes the request URL and raw body; keep the parsed fields only.
			return "", fmt.Errorf("failed to generate text: status %d, code %s, type %s: %s", apiErr.StatusCode, apiErr.Code, apiErr.Type, apiErr.Message)
		}
		o.logger.Error("openai request failed", "error", err)
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}

	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return "", fmt.Errorf("response blocked by safety filters: %s", choice.Message.Refusal)
	}
	if choice.Message.Content == "" {
		if choice.FinishReason == "content_filter" {
			return "", errors.New("response blocked by content_filter")
		}
		return "", errors.New("no text content in response")
	}

	o.logger.Debug("openai response received", "chars", len(choice.Message.Content))
	return choice.Message.Content, nil
}
