// Command grade evaluates local documents against one rubric.
//
//	grade [-rubric rubric.pdf] [-instructions "..."] [-xlsx report.xlsx] [-concurrency 4] essay1.pdf essay2.docx
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"alfredoptarigan/doc-grader/internal/config"
	applog "alfredoptarigan/doc-grader/internal/logger"
	"alfredoptarigan/doc-grader/internal/models"
	"alfredoptarigan/doc-grader/internal/services"
)

type lineResult struct {
	File     string                   `json:"file"`
	Success  bool                     `json:"success"`
	Result   *models.EvaluationResult `json:"result,omitempty"`
	Metadata *models.AnalyzeMetadata  `json:"metadata,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

func main() {
	rubricPath := flag.String("rubric", "", "rubric file (pdf, docx or txt); built-in rubric when empty")
	instructions := flag.String("instructions", "", "extra grading instructions")
	xlsxPath := flag.String("xlsx", "", "write an XLSX grade report to this path")
	concurrency := flag.Int("concurrency", 1, "number of documents graded in parallel")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: grade [-rubric file] [-instructions text] [-xlsx report.xlsx] [-concurrency n] document...")
		os.Exit(2)
	}

	cfg := config.Load()
	log := applog.NewWithWriter(os.Stderr, cfg.Log.Level)

	if err := cfg.Validate(); err != nil {
		log.Error("❌ Invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx := context.Background()
	llm, err := services.NewLLMClient(ctx, cfg.LLM, log)
	if err != nil {
		log.Error("❌ Failed to initialize LLM client", "error", err)
		os.Exit(1)
	}

	intake := services.NewIntakeService(cfg.Upload.MaxFileSize)
	extractor := services.NewTextExtractor(services.NewPDFParserService(), log)
	evaluator := services.NewEvaluatorService(extractor, llm, log)

	var rubric *models.UploadedFile
	if *rubricPath != "" {
		rubric, err = intake.FromPath(*rubricPath)
		if err != nil {
			log.Error("❌ Failed to load rubric", "path", *rubricPath, "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	grader := services.NewBatchGrader(intake, evaluator, rubric, *instructions, *concurrency, log)
	records := gradeAll(ctx, grader, flag.Args(), os.Stdout, log)

	if *xlsxPath != "" {
		data, err := services.BuildGradeReport(records)
		if err != nil {
			log.Error("❌ Failed to build report", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsxPath, data, 0644); err != nil {
			log.Error("❌ Failed to write report", "path", *xlsxPath, "error", err)
			os.Exit(1)
		}
		log.Info("📊 Report written", "path", *xlsxPath, "rows", len(records))
	}

	for _, rec := range records {
		if rec.Err != "" {
			os.Exit(1)
		}
	}
}

// gradeAll grades paths with grader and prints one JSON line per document to out, in input order.
func gradeAll(ctx context.Context, grader services.BatchGrader, paths []string, out io.Writer, log *slog.Logger) []services.GradeRecord {
	records := grader.Run(ctx, paths)
	enc := json.NewEncoder(out)

	for _, rec := range records {
		line := lineResult{File: rec.File, Error: rec.Err}
		if rec.Outcome != nil {
			line.Success = true
			line.Result = &rec.Outcome.Result
			line.Metadata = &rec.Outcome.Metadata
		}

		if err := enc.Encode(line); err != nil {
			log.Error("failed to write result", "error", err)
		}
	}

	return records
}
