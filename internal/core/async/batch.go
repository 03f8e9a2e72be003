// Package async runs the per-file processor over a batch with bounded
// parallelism.
package async

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/refund-checklist/internal/common"
	"github.com/joseph-ayodele/refund-checklist/internal/core/checklist"
	"github.com/joseph-ayodele/refund-checklist/internal/entity"
	"github.com/joseph-ayodele/refund-checklist/internal/ingest"
)

// FileProcessor evaluates one source file.
type FileProcessor interface {
	ProcessFile(ctx context.Context, src ingest.IngestionResult, req entity.RequestContext) (entity.FileReport, error)
}

type BatchRunner struct {
	proc    FileProcessor
	logger  *slog.Logger
	workers int
	timeout time.Duration
}

type Option func(*BatchRunner)

func WithWorkers(n int) Option {
	return func(b *BatchRunner) {
		if n > 0 {
			b.workers = n
		}
	}
}

func WithFileTimeout(d time.Duration) Option {
	return func(b *BatchRunner) {
		if d > 0 {
			b.timeout = d
		}
	}
}

func NewBatchRunner(proc FileProcessor, logger *slog.Logger, opts ...Option) *BatchRunner {
	if logger == nil {
		logger = slog.Default()
	}
	b := &BatchRunner{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 10 * time.Minute,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Run processes every source and returns one report per source, in input
// order. A failing file yields a report holding a single ERROR row and never
// stops the others. Once ctx is done no new file starts; those left get an
// ERROR row with the context error.
func (b *BatchRunner) Run(ctx context.Context, sources []ingest.IngestionResult, req entity.RequestContext) []entity.FileReport {
	reports := make([]entity.FileReport, len(sources))
	runID := common.RunIDFromContext(ctx)

	var g errgroup.Group
	g.SetLimit(b.workers)
	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			reports[i] = errorReport(req, src, err)
			continue
		}
		g.Go(func() error {
			reports[i] = b.runOne(ctx, src, req, runID)
			return nil
		})
	}
	_ = g.Wait()
	return reports
}

func (b *BatchRunner) runOne(ctx context.Context, src ingest.IngestionResult, req entity.RequestContext, runID string) entity.FileReport {
	if err := ctx.Err(); err != nil {
		return errorReport(req, src, err)
	}
	if !src.OK() {
		b.logger.Warn("skipping file that failed ingest", "run_id", runID, "file", src.Name, "error", src.Err)
		return errorReport(req, src, errors.New(src.Err))
	}

	fctx, cancel := common.WithTimeout(common.WithFilename(ctx, src.Name), b.timeout)
	defer cancel()

	report, err := b.proc.ProcessFile(fctx, src, req)
	if err != nil {
		b.logger.Error("file processing failed", "run_id", runID, "file", src.Name, "error", err)
		return errorReport(req, src, err)
	}
	return report
}

func errorReport(req entity.RequestContext, src ingest.IngestionResult, err error) entity.FileReport {
	return entity.FileReport{
		Filename: src.Name,
		Results:  []entity.ChecklistResult{checklist.ErrorResult(req, src.Name, err)},
		Summary:  entity.FileSummary{Filename: src.Name, ContentHash: src.HashHex},
	}
}

// Rows concatenates the result rows of reports in order.
func Rows(reports []entity.FileReport) []entity.ChecklistResult {
	var out []entity.ChecklistResult
	for _, r := range reports {
		out = append(out, r.Results...)
	}
	return out
}
