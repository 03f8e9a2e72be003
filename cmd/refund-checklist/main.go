package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/refund-checklist/constants"
	"github.com/joseph-ayodele/refund-checklist/internal/common"
	"github.com/joseph-ayodele/refund-checklist/internal/core"
	"github.com/joseph-ayodele/refund-checklist/internal/core/async"
	"github.com/joseph-ayodele/refund-checklist/internal/core/calendar"
	"github.com/joseph-ayodele/refund-checklist/internal/core/checklist"
	"github.com/joseph-ayodele/refund-checklist/internal/core/classify"
	"github.com/joseph-ayodele/refund-checklist/internal/core/dates"
	"github.com/joseph-ayodele/refund-checklist/internal/core/ocr"
	"github.com/joseph-ayodele/refund-checklist/internal/core/pages"
	"github.com/joseph-ayodele/refund-checklist/internal/entity"
	"github.com/joseph-ayodele/refund-checklist/internal/export"
	"github.com/joseph-ayodele/refund-checklist/internal/ingest"
	repo "github.com/joseph-ayodele/refund-checklist/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		inmem       = flag.Bool("inmem", false, "use in-memory SQLite audit store")
		dir         = flag.String("dir", "", "directory holding the request bundle")
		out         = flag.String("out", "", "output XLSX file path (optional, defaults to the bundle's parent directory)")
		receiptStr  = flag.String("receipt-date", "", "receipt date of the request (YYYY-MM-DD or dd/mm/yyyy; defaults to today)")
		categoryStr = flag.String("category", string(constants.Misional), "request category: misional or no_misional")
		petitioner  = flag.String("petitioner", string(constants.PetitionerJuridical), "petitioner type: persona_natural, persona_juridica or consorcio")
		workers     = flag.Int("workers", 0, "parallel files (overrides WORKERS)")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()
	files := flag.Args()

	category, _ := constants.CanonicalizeCategory(*categoryStr)
	petitionerType, _ := constants.CanonicalizePetitioner(*petitioner)

	v := common.NewValidator().
		Field("category", string(category), common.Required, common.OneOf(constants.CategoriesAsStringSlice()...)).
		Field("petitioner", string(petitionerType), common.Required, common.OneOf(constants.PetitionersAsStringSlice()...))
	if *dir == "" && len(files) == 0 {
		v.Field("dir", "", common.Required)
	}
	if err := v.Error(); err != nil {
		printError("Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	// If output file not specified, write next to the bundle
	if *out == "" {
		base := *dir
		if base == "" {
			base = files[0]
		}
		*out = filepath.Join(filepath.Dir(filepath.Clean(base)), "checklist.xlsx")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := common.LoadConfig()
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}
	if *inmem {
		cfg.Database.DSN = repo.InMemoryDSN
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Immutable configuration: catalogs and the holiday calendar
	catalogs, err := checklist.LoadCatalogFile(cfg.Checklist.CatalogFile)
	if err != nil {
		logger.Error("failed to load checklist catalogs", "error", err)
		os.Exit(1)
	}
	cal, err := calendar.LoadFile(cfg.Checklist.HolidaysFile)
	if err != nil {
		logger.Error("failed to load holiday calendar", "error", err)
		os.Exit(1)
	}

	dateExtractor := dates.NewExtractor()
	req := entity.RequestContext{
		ReceiptDate: checklist.ParseReceiptDate(*receiptStr, dateExtractor, logger),
		Category:    category,
		Petitioner:  petitionerType,
	}

	// Setup page scanner
	scanner := ocr.NewExtractor(ocr.Config{
		Pdftoppm:         cfg.OCR.Pdftoppm,
		Tesseract:        cfg.OCR.Tesseract,
		TesseractLang:    cfg.OCR.TesseractLang,
		TessdataDir:      cfg.OCR.TessdataDir,
		DPI:              cfg.OCR.DPI,
		MaxPages:         cfg.OCR.MaxPages,
		PreferTextLayer:  cfg.OCR.PreferTextLayer,
		ArtifactCacheDir: cfg.OCR.ArtifactCacheDir,
	}, logger)

	builder := pages.NewBuilder(classify.NewDefault(), dateExtractor, logger)
	engine := checklist.NewEngine(cal, dateExtractor, logger,
		checklist.WithThresholds(cfg.Checklist.MinConfidence, cfg.Checklist.MinTextLength))
	processor := core.NewProcessor(logger, scanner, builder, engine, catalogs)
	runner := async.NewBatchRunner(processor, logger,
		async.WithWorkers(cfg.Batch.Workers),
		async.WithFileTimeout(cfg.Batch.FileTimeout))

	// Ingest bundle
	ingestor := ingest.NewFSIngestor(logger)
	sources, stats, err := ingestor.Collect(ctx, *dir, files)
	if err != nil {
		logger.Error("failed to collect bundle files", "error", err)
		os.Exit(1)
	}
	logger.Info("ingestion complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated)

	runID := uuid.NewString()
	ctx = common.WithRunID(ctx, runID)
	logger.Info("starting checklist run",
		"run_id", runID,
		"receipt_date", req.ReceiptDate.String(),
		"category", req.Category,
		"petitioner", req.Petitioner,
		"files", len(sources))

	reports := runner.Run(ctx, sources, req)

	// Export to XLSX
	logger.Info("exporting to XLSX", "output", *out)
	if err := export.NewService(logger).WriteFile(*out, reports); err != nil {
		logger.Error("failed to write workbook", "error", err)
		os.Exit(1)
	}

	// Audit store is optional
	if cfg.Database.DSN != "" {
		if err := persist(ctx, cfg, logger, req, reports); err != nil {
			logger.Error("failed to record run", "run_id", runID, "error", err)
		}
	}

	failures := 0
	for _, r := range reports {
		if r.Failed() {
			failures++
		}
	}
	logger.Info("batch processing complete",
		"run_id", runID,
		"files", len(reports),
		"failures", failures,
		"output_file", *out)

	fmt.Printf("Checklist complete!\n")
	fmt.Printf("- Run: %s\n", runID)
	fmt.Printf("- Files evaluated: %d\n", len(reports))
	fmt.Printf("- Failures: %d\n", failures)
	fmt.Printf("- Output: %s\n", *out)
}

func persist(ctx context.Context, cfg *common.Config, logger *slog.Logger, req entity.RequestContext, reports []entity.FileReport) error {
	db, err := repo.Open(ctx, repo.ConfigFrom(cfg.Database), logger)
	if err != nil {
		return err
	}
	defer db.Close()

	runs := repo.NewRunRepository(db, logger)
	if _, err := runs.CreateRun(ctx, req, len(reports)); err != nil {
		return err
	}
	return runs.SaveResults(ctx, common.RunIDFromContext(ctx), async.Rows(reports))
}
