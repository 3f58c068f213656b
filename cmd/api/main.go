package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"alfredoptarigan/doc-grader/internal/config"
	applog "alfredoptarigan/doc-grader/internal/logger"
	"alfredoptarigan/doc-grader/internal/server"
	"alfredoptarigan/doc-grader/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := applog.New(cfg.Log.Level)
	log.Info("✅ Config loaded successfully", "env", cfg.Server.Env, "provider", cfg.LLM.Provider)

	if err := cfg.Validate(); err != nil {
		log.Error("❌ Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize services
	pdfParser := services.NewPDFParserService()
	extractor := services.NewTextExtractor(pdfParser, log)

	llm, err := services.NewLLMClient(context.Background(), cfg.LLM, log)
	if err != nil {
		log.Error("❌ Failed to initialize LLM client", "error", err)
		os.Exit(1)
	}
	log.Info("✅ LLM client initialized", "provider", llm.Provider(), "model", llm.Model())

	evaluatorService := services.NewEvaluatorService(extractor, llm, log)

	app := server.New(cfg, evaluatorService, log)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Error("❌ Server forced to shutdown", "error", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("🚀 Server starting", "addr", addr, "max_file_size", cfg.Upload.MaxFileSize)

	if err := app.Listen(addr); err != nil {
		log.Error("❌ Failed to start server", "error", err)
		os.Exit(1)
	}
}
