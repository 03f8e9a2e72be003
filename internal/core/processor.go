package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/refund-checklist/internal/common"
	"github.com/joseph-ayodele/refund-checklist/internal/core/checklist"
	"github.com/joseph-ayodele/refund-checklist/internal/core/ocr"
	"github.com/joseph-ayodele/refund-checklist/internal/core/pages"
	"github.com/joseph-ayodele/refund-checklist/internal/entity"
	"github.com/joseph-ayodele/refund-checklist/internal/ingest"
)

// PageScanner yields the scanned pages of one source file.
type PageScanner interface {
	Scan(ctx context.Context, path string) ([]entity.PageScan, error)
}

// Processor coordinates page scan, classification, aggregation and the
// checklist evaluation of a single file.
type Processor struct {
	logger   *slog.Logger
	scanner  PageScanner
	builder  *pages.Builder
	engine   *checklist.Engine
	catalogs *checklist.Catalogs
}

func NewProcessor(
	logger *slog.Logger,
	scanner PageScanner,
	builder *pages.Builder,
	engine *checklist.Engine,
	catalogs *checklist.Catalogs,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:   logger,
		scanner:  scanner,
		builder:  builder,
		engine:   engine,
		catalogs: catalogs,
	}
}

// ProcessFile scans src and evaluates the request's checklist against the
// documents found in it.
func (p *Processor) ProcessFile(ctx context.Context, src ingest.IngestionResult, req entity.RequestContext) (entity.FileReport, error) {
	start := time.Now()
	if src.HashHex != "" {
		ctx = ocr.WithContentHash(ctx, src.HashHex)
	}

	scans, err := p.scanner.Scan(ctx, src.SourcePath)
	if err != nil {
		p.logger.Error("page scan failed", "file", src.Name, "run_id", common.RunIDFromContext(ctx), "error", err)
		return entity.FileReport{}, common.WrapError(err, "scan "+src.Name)
	}
	report := p.Evaluate(src.Name, src.HashHex, scans, req)

	p.logger.Info("file evaluated",
		"file", src.Name,
		"run_id", common.RunIDFromContext(ctx),
		"pages", report.Summary.PageCount,
		"documents", report.Summary.DocumentCount,
		"inferred", len(report.InferredItemIDs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}

// Evaluate runs everything after the page scan: build pages, aggregate,
// infer items from the filename and evaluate the narrowed catalog.
func (p *Processor) Evaluate(filename, hashHex string, scans []entity.PageScan, req entity.RequestContext) entity.FileReport {
	pageList := p.builder.Build(filename, scans)
	docs := pages.Aggregate(pageList)

	catalog := p.catalogs.For(req.Category)
	inferred := checklist.InferItems(filename, catalog)
	active := catalog
	if len(inferred) > 0 {
		active = checklist.Filter(catalog, inferred)
		p.logger.Debug("checklist narrowed by filename", "file", filename, "items", inferred)
	}

	return entity.FileReport{
		Filename:        filename,
		Results:         p.engine.Evaluate(req, active, docs, inferred, filename),
		InferredItemIDs: inferred,
		Summary: entity.FileSummary{
			Filename:      filename,
			PageCount:     len(scans),
			DocumentCount: len(docs),
			ContentHash:   hashHex,
		},
	}
}
