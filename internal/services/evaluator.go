package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	applog "alfredoptarigan/doc-grader/internal/logger"
	"alfredoptarigan/doc-grader/internal/models"
)

const DefaultRubricName = "default"

type EvaluatorService interface {
	Evaluate(ctx context.Context, input models.AnalyzeInput) (*models.AnalyzeOutcome, error)
}

type evaluatorService struct {
	extractor     TextExtractor
	llm           LLMClient
	promptBuilder *PromptBuilder
	logger        *slog.Logger
	now           func() time.Time
}

func NewEvaluatorService(extractor TextExtractor, llm LLMClient, logger *slog.Logger) EvaluatorService {
	if logger == nil {
		logger = applog.Discard()
	}

	return &evaluatorService{
		extractor:     extractor,
		llm:           llm,
		promptBuilder: NewPromptBuilder(),
		logger:        logger,
		now:           time.Now,
	}
}

// Evaluate extracts both texts, calls the model once and normalizes its reply.
func (e *evaluatorService) Evaluate(ctx context.Context, input models.AnalyzeInput) (*models.AnalyzeOutcome, error) {
	if input.Document == nil {
		return nil, NewBadRequestError("No document file uploaded. Please provide 'pdfFile'.", ErrMissingDocument)
	}

	started := e.now()
	requestID := uuid.New().String()
	log := e.logger.With("request_id", requestID)

	log.Info("evaluation started",
		"document", input.Document.Filename,
		"document_bytes", input.Document.Size(),
		"has_rubric", input.Rubric != nil,
	)

	documentText, err := e.extractor.Extract(input.Document)
	if err != nil {
		log.Warn("document extraction failed", "filename", input.Document.Filename, "error", err)
		return nil, err
	}

	rubricName := DefaultRubricName
	rubricText := DefaultRubric
	if input.Rubric != nil {
		rubricName = input.Rubric.Filename
		rubricText, err = e.extractor.Extract(input.Rubric)
		if err != nil {
			log.Warn("rubric extraction failed", "filename", input.Rubric.Filename, "error", err)
			return nil, err
		}
	}

	prompt := e.promptBuilder.BuildEvaluationPrompt(models.EvaluationRequest{
		DocumentText:       documentText,
		RubricText:         rubricText,
		CustomInstructions: input.CustomInstructions,
	})
	log.Debug("prompt composed", "chars", len(prompt))

	response, err := e.llm.GenerateText(ctx, prompt)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("evaluation cancelled", "error", err)
		}
		appErr := MapLLMError(err)
		log.Error("model call failed", "provider", e.llm.Provider(), "status", appErr.Status, "error", err)
		return nil, appErr
	}

	result, method := NormalizeResponse(response)
	if method != models.ParseMethodJSON {
		log.Warn("model reply needed repair", "parse_method", method, "reply_chars", len(response))
	}

	finished := e.now()
	outcome := &models.AnalyzeOutcome{
		Result: result,
		Metadata: models.AnalyzeMetadata{
			RequestID:             requestID,
			DocumentName:          input.Document.Filename,
			RubricName:            rubricName,
			DocumentChars:         len([]rune(documentText)),
			RubricChars:           len([]rune(rubricText)),
			HasCustomInstructions: strings.TrimSpace(input.CustomInstructions) != "",
			Provider:              e.llm.Provider(),
			Model:                 e.llm.Model(),
			ParseMethod:           method,
			ProcessedAt:           finished.UTC(),
			DurationMs:            finished.Sub(started).Milliseconds(),
		},
	}

	log.Info("evaluation completed", "score", result.Score, "parse_method", method, "duration_ms", outcome.Metadata.DurationMs)
	return outcome, nil
}
