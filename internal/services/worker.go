package services

import (
	"context"
	"log/slog"
	"sync"

	applog "alfredoptarigan/doc-grader/internal/logger"
	"alfredoptarigan/doc-grader/internal/models"
)

// BatchGrader grades local files against one rubric with a fixed number of workers.
type BatchGrader interface {
	Run(ctx context.Context, paths []string) []GradeRecord
}

type batchGrader struct {
	intake       IntakeService
	evaluator    EvaluatorService
	rubric       *models.UploadedFile
	instructions string
	concurrency  int
	logger       *slog.Logger
}

func NewBatchGrader(
	intake IntakeService,
	evaluator EvaluatorService,
	rubric *models.UploadedFile,
	instructions string,
	concurrency int,
	logger *slog.Logger,
) BatchGrader {
	if logger == nil {
		logger = applog.Discard()
	}
	if concurrency < 1 {
		concurrency = 1
	}

	return &batchGrader{
		intake:       intake,
		evaluator:    evaluator,
		rubric:       rubric,
		instructions: instructions,
		concurrency:  concurrency,
		logger:       logger,
	}
}

// Run returns one record per path, in input order. Paths not started before
// ctx is cancelled are reported as failed.
func (g *batchGrader) Run(ctx context.Context, paths []string) []GradeRecord {
	records := make([]GradeRecord, len(paths))
	if len(paths) == 0 {
		return records
	}

	workers := min(g.concurrency, len(paths))
	g.logger.Info("🚀 Starting grading workers", "workers", workers, "documents", len(paths))

	jobs := make(chan int)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go g.processJobs(ctx, i+1, paths, records, jobs, &wg)
	}

	started := make([]bool, len(paths))
enqueue:
	for i := range paths {
		// select picks at random when both cases are ready
		if ctx.Err() != nil {
			break
		}
		select {
		case jobs <- i:
			started[i] = true
		case <-ctx.Done():
			break enqueue
		}
	}
	close(jobs)
	wg.Wait()

	for i, ok := range started {
		if !ok {
			records[i] = GradeRecord{File: paths[i], Err: "Grading cancelled"}
		}
	}

	g.logger.Info("✅ Grading workers finished", "documents", len(paths))
	return records
}

// processJobs writes only to records[i] for the indexes it receives.
func (g *batchGrader) processJobs(
	ctx context.Context,
	workerID int,
	paths []string,
	records []GradeRecord,
	jobs <-chan int,
	wg *sync.WaitGroup,
) {
	defer wg.Done()

	for i := range jobs {
		path := paths[i]
		g.logger.Info("👷 Grading document", "worker", workerID, "path", path)

		outcome, err := g.grade(ctx, path)
		if err != nil {
			g.logger.Warn("⚠️  Grading failed", "worker", workerID, "path", path, "error", err)
			records[i] = GradeRecord{File: path, Err: AsAppError(err).Message}
			continue
		}

		records[i] = GradeRecord{File: path, Outcome: outcome}
	}
}

func (g *batchGrader) grade(ctx context.Context, path string) (*models.AnalyzeOutcome, error) {
	document, err := g.intake.FromPath(path)
	if err != nil {
		return nil, err
	}

	return g.evaluator.Evaluate(ctx, models.AnalyzeInput{
		Document:           document,
		Rubric:             g.rubric,
		CustomInstructions: g.instructions,
	})
}
