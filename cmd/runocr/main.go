package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/refund-checklist/constants"
	"github.com/joseph-ayodele/refund-checklist/internal/common"
	"github.com/joseph-ayodele/refund-checklist/internal/core/checklist"
	"github.com/joseph-ayodele/refund-checklist/internal/core/classify"
	"github.com/joseph-ayodele/refund-checklist/internal/core/dates"
	"github.com/joseph-ayodele/refund-checklist/internal/core/ocr"
	"github.com/joseph-ayodele/refund-checklist/internal/core/pages"
	"github.com/joseph-ayodele/refund-checklist/internal/ingest"
)

type pageOut struct {
	Page       int               `json:"page"`
	Method     string            `json:"method"`
	Confidence float64           `json:"confidence"`
	Signature  bool              `json:"signature_detected"`
	Type       constants.DocType `json:"type"`
	Identity   string            `json:"identity,omitempty"`
	IssuedAt   string            `json:"issued_at,omitempty"`
	Candidates []string          `json:"date_candidates,omitempty"`
	TextChars  int               `json:"text_chars"`
	Text       string            `json:"text,omitempty"`
}

type documentOut struct {
	Type     constants.DocType `json:"type"`
	Evidence string            `json:"evidence"`
	IssuedAt string            `json:"issued_at,omitempty"`
}

type output struct {
	File          string        `json:"file"`
	SHA256        string        `json:"sha256"`
	DurationMS    int64         `json:"duration_ms"`
	Pages         []pageOut     `json:"pages"`
	Documents     []documentOut `json:"documents"`
	InferredItems []string      `json:"inferred_items,omitempty"`
}

func main() {
	var (
		category = flag.String("category", string(constants.Misional), "catalog used for filename inference")
		withText = flag.Bool("text", false, "include page text in the output")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "runocr [-category misional] [-text] <file>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg := common.LoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Batch.FileTimeout)
	defer cancel()

	src, err := ingest.NewFSIngestor(logger).IngestPath(ctx, path)
	if err != nil {
		logger.Error("ingest failed", "file", path, "error", err)
		os.Exit(1)
	}

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

	start := time.Now()
	scans, err := scanner.Scan(ocr.WithContentHash(ctx, src.HashHex), path)
	if err != nil {
		logger.Error("page scan failed", "file", path, "error", err)
		os.Exit(1)
	}

	extractor := dates.NewExtractor()
	built := pages.NewBuilder(classify.NewDefault(), extractor, logger).Build(src.Name, scans)

	out := output{
		File:       src.Name,
		SHA256:     src.HashHex,
		DurationMS: time.Since(start).Milliseconds(),
	}
	for i, p := range built {
		po := pageOut{
			Page:       p.Number,
			Method:     scans[i].Method,
			Confidence: p.Confidence,
			Signature:  p.SignatureDetected,
			Type:       p.Type,
			Identity:   p.IdentityNumber,
			TextChars:  len([]rune(p.Text)),
		}
		if !p.IssuedAt.IsZero() {
			po.IssuedAt = p.IssuedAt.String()
		}
		for _, c := range extractor.Candidates(p.Text, pages.HasBankContext(p.Text)) {
			po.Candidates = append(po.Candidates, c.String())
		}
		if *withText {
			po.Text = p.Text
		}
		out.Pages = append(out.Pages, po)
	}
	for _, d := range pages.Aggregate(built) {
		do := documentOut{Type: d.Type, Evidence: d.Evidence()}
		if !d.IssuedAt.IsZero() {
			do.IssuedAt = d.IssuedAt.String()
		}
		out.Documents = append(out.Documents, do)
	}

	if cat, ok := constants.CanonicalizeCategory(*category); ok {
		if catalogs, err := checklist.LoadCatalogFile(cfg.Checklist.CatalogFile); err == nil {
			out.InferredItems = checklist.InferItems(filepath.Base(path), catalogs.For(cat))
		} else {
			logger.Warn("catalogs unavailable, skipping inference", "error", err)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("encode output", "error", err)
		os.Exit(1)
	}
}
