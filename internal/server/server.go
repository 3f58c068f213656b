package server

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/doc-grader/internal/config"
	"alfredoptarigan/doc-grader/internal/handlers"
	applog "alfredoptarigan/doc-grader/internal/logger"
	"alfredoptarigan/doc-grader/internal/models"
	"alfredoptarigan/doc-grader/internal/services"
)

const (
	AppName    = "Document Grader API"
	AppVersion = "1.0.0"
)

// New builds the persistent server: analyze endpoints, health and banner.
func New(cfg *config.Config, evaluator services.EvaluatorService, log *slog.Logger) *fiber.App {
	app, analyzeHandler := newBase(cfg, evaluator, log)

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"provider": cfg.LLM.Provider,
			"model":    cfg.ModelName(),
			"time":     time.Now(),
		})
	})

	api.Post("/analyze", analyzeHandler.HandleAnalyze)
	api.Post("/analyze/json", analyzeHandler.HandleAnalyzeJSON)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": AppName,
			"version": AppVersion,
			"endpoints": []string{
				"POST /api/analyze",
				"POST /api/analyze/json",
				"GET /api/health",
			},
		})
	})

	return app
}

// NewServerless builds the app behind the serverless function. Every POST,
// whatever its path, is treated as a base64 JSON analyze request.
func NewServerless(cfg *config.Config, evaluator services.EvaluatorService, log *slog.Logger) *fiber.App {
	app, analyzeHandler := newBase(cfg, evaluator, log)

	app.Post("/*", analyzeHandler.HandleAnalyzeJSON)
	app.All("/*", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusMethodNotAllowed, "Method not allowed. Use POST.")
	})

	return app
}

func newBase(cfg *config.Config, evaluator services.EvaluatorService, log *slog.Logger) (*fiber.App, *handlers.AnalyzeHandler) {
	if log == nil {
		log = applog.Discard()
	}

	app := fiber.New(fiber.Config{
		AppName:               AppName,
		ReadTimeout:           60 * time.Second,
		WriteTimeout:          120 * time.Second,
		BodyLimit:             BodyLimit(cfg.Upload.MaxFileSize),
		ErrorHandler:          errorHandler(log),
		DisableStartupMessage: !cfg.IsDevelopment(),
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigin,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	intake := services.NewIntakeService(cfg.Upload.MaxFileSize)
	return app, handlers.NewAnalyzeHandler(intake, evaluator, log)
}

// BodyLimit fits two files at the per-file ceiling, base64 growth, and form overhead.
func BodyLimit(maxFileSize int64) int {
	return int(maxFileSize*2*4/3) + 1<<20
}

func errorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		} else {
			appErr := services.AsAppError(err)
			code = appErr.Status
			message = appErr.Message
		}

		if code == fiber.StatusRequestEntityTooLarge {
			message = "Upload too large. Each file must be under the configured size limit."
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("unhandled request error", "path", c.Path(), "status", code, "error", err)
		} else {
			log.Warn("request rejected", "path", c.Path(), "status", code, "error", err)
		}

		return c.Status(code).JSON(models.ErrorResponse{
			Success: false,
			Error:   message,
		})
	}
}
