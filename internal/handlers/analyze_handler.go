package handlers

import (
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "alfredoptarigan/doc-grader/internal/logger"
	"alfredoptarigan/doc-grader/internal/models"
	"alfredoptarigan/doc-grader/internal/services"
)

const (
	FieldDocument     = "pdfFile"
	FieldRubric       = "rubricFile"
	FieldInstructions = "customInstructions"

	defaultDocumentName = "document.pdf"
	defaultRubricName   = "rubric.txt"
)

type AnalyzeHandler struct {
	intake    services.IntakeService
	evaluator services.EvaluatorService
	logger    *slog.Logger
}

func NewAnalyzeHandler(
	intake services.IntakeService,
	evaluator services.EvaluatorService,
	logger *slog.Logger,
) *AnalyzeHandler {
	if logger == nil {
		logger = applog.Discard()
	}

	return &AnalyzeHandler{
		intake:    intake,
		evaluator: evaluator,
		logger:    logger,
	}
}

// HandleAnalyze handles POST /api/analyze (multipart)
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return h.respondError(c, services.NewBadRequestError("Failed to parse multipart form", err))
	}

	document := firstFile(form, FieldDocument)
	if document == nil {
		return h.respondError(c, services.NewBadRequestError(
			"No document file uploaded. Please provide 'pdfFile'.", services.ErrMissingDocument))
	}

	input := models.AnalyzeInput{}

	input.Document, err = h.intake.FromMultipart(document)
	if err != nil {
		return h.respondError(c, err)
	}

	if rubric := firstFile(form, FieldRubric); rubric != nil {
		input.Rubric, err = h.intake.FromMultipart(rubric)
		if err != nil {
			return h.respondError(c, err)
		}
	}

	if values := form.Value[FieldInstructions]; len(values) > 0 {
		input.CustomInstructions = strings.TrimSpace(values[0])
	}

	return h.evaluate(c, input)
}

// HandleAnalyzeJSON handles the base64 JSON contract used by the serverless function.
func (h *AnalyzeHandler) HandleAnalyzeJSON(c *fiber.Ctx) error {
	var req models.AnalyzeJSONRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return h.respondError(c, services.NewBadRequestError("Invalid JSON request body", services.ErrInvalidPayload))
	}

	if strings.TrimSpace(req.PDFFile) == "" {
		return h.respondError(c, services.NewBadRequestError(
			"No document file uploaded. Please provide 'pdfFile' as base64.", services.ErrMissingDocument))
	}

	input := models.AnalyzeInput{
		CustomInstructions: strings.TrimSpace(req.CustomInstructions),
	}

	var err error
	input.Document, err = h.intake.FromBase64(req.PDFFile, nameOrDefault(req.PDFFileName, defaultDocumentName))
	if err != nil {
		return h.respondError(c, err)
	}

	if strings.TrimSpace(req.RubricFile) != "" {
		input.Rubric, err = h.intake.FromBase64(req.RubricFile, nameOrDefault(req.RubricFileName, defaultRubricName))
		if err != nil {
			return h.respondError(c, err)
		}
	}

	return h.evaluate(c, input)
}

func (h *AnalyzeHandler) evaluate(c *fiber.Ctx, input models.AnalyzeInput) error {
	outcome, err := h.evaluator.Evaluate(c.UserContext(), input)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(models.AnalyzeResponse{
		Success:  true,
		Result:   outcome.Result,
		Metadata: outcome.Metadata,
	})
}

func (h *AnalyzeHandler) respondError(c *fiber.Ctx, err error) error {
	appErr := services.AsAppError(err)

	if appErr.Status >= fiber.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.Path(), "status", appErr.Status, "error", err)
	} else {
		h.logger.Warn("request rejected", "path", c.Path(), "status", appErr.Status, "error", err)
	}

	return c.Status(appErr.Status).JSON(models.ErrorResponse{
		Success: false,
		Error:   appErr.Message,
	})
}

func firstFile(form *multipart.Form, field string) *multipart.FileHeader {
	if files, exists := form.File[field]; exists && len(files) > 0 {
		return files[0]
	}
	return nil
}

func nameOrDefault(name, fallback string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return fallback
}
