// Package serverless adapts the grader to a net/http function runtime.
package serverless

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"alfredoptarigan/doc-grader/internal/config"
	applog "alfredoptarigan/doc-grader/internal/logger"
	"alfredoptarigan/doc-grader/internal/models"
	"alfredoptarigan/doc-grader/internal/server"
	"alfredoptarigan/doc-grader/internal/services"
)

var (
	once    sync.Once
	handler http.HandlerFunc
)

// Handler is the function entrypoint. Dependencies are built on the first
// invocation from the environment and reused by warm instances.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		handler = build()
	})
	handler(w, r)
}

func build() http.HandlerFunc {
	cfg := config.FromEnv()
	log := applog.New(cfg.Log.Level)

	if err := cfg.Validate(); err != nil {
		log.Error("serverless configuration invalid", "error", err)
		return configErrorHandler(err)
	}

	llm, err := services.NewLLMClient(context.Background(), cfg.LLM, log)
	if err != nil {
		log.Error("failed to initialize LLM client", "error", err)
		return configErrorHandler(err)
	}

	return NewHandler(cfg, llm, log)
}

// NewHandler wires the serverless fiber app around an existing LLM client.
func NewHandler(cfg *config.Config, llm services.LLMClient, log *slog.Logger) http.HandlerFunc {
	extractor := services.NewTextExtractor(services.NewPDFParserService(), log)
	evaluator := services.NewEvaluatorService(extractor, llm, log)
	return adaptor.FiberApp(server.NewServerless(cfg, evaluator, log))
}

func configErrorHandler(cause error) http.HandlerFunc {
	body, _ := json.Marshal(models.ErrorResponse{
		Success: false,
		Error:   fmt.Sprintf("Server configuration error: %v", cause),
	})

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(body)
	}
}
