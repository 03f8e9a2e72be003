// Package ocr turns PDFs and page images into per-page text, OCR confidence
// and a signature flag, using pdfcpu, pdftoppm and tesseract.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/joseph-ayodele/refund-checklist/constants"
	"github.com/joseph-ayodele/refund-checklist/internal/common"
	"github.com/joseph-ayodele/refund-checklist/internal/entity"
)

// Scan methods recorded on each page.
const (
	MethodOCR       = "ocr"
	MethodTextLayer = "pdf-text"
)

const defaultMinTextLayer = 40

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "spa"
	TessdataDir   string
	DPI           int // rasterization DPI, default 300
	MaxPages      int // 0 = no limit
	PSM           int

	// PreferTextLayer uses a PDF page's embedded text instead of OCR when it
	// holds at least MinTextLayer characters.
	PreferTextLayer bool
	MinTextLayer    int

	ArtifactCacheDir string // "" disables the page cache
}

type ctxKey string

const ctxKeyContentHash ctxKey = "ocr.content_hash_hex"

// WithContentHash stores the hex-encoded SHA-256 of the file being scanned.
// Scan uses it as the page cache key.
func WithContentHash(ctx context.Context, hex string) context.Context {
	return context.WithValue(ctx, ctxKeyContentHash, hex)
}

func contentHashFromCtx(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyContentHash).(string)
	return v
}

type Option func(*Extractor)

// WithRunner replaces the command runner.
func WithRunner(r Runner) Option {
	return func(e *Extractor) {
		if r != nil {
			e.runner = r
		}
	}
}

// Extractor is safe for concurrent use; every scan works in its own
// temporary directory.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
	cache  *pageCache

	countPages func(path string) (int, error)
	textLayer  func(path string) ([]string, error)
	signature  func(imagePath string) (bool, error)
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "spa"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinTextLayer <= 0 {
		cfg.MinTextLayer = defaultMinTextLayer
	}
	e := &Extractor{
		cfg:        cfg,
		runner:     ExecRunner{},
		logger:     logger,
		cache:      newPageCache(cfg.ArtifactCacheDir, logger),
		countPages: api.PageCountFile,
		textLayer:  readTextLayer,
		signature:  DetectSignature,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Scan returns one PageScan per page of the file at path, in page order.
func (e *Extractor) Scan(ctx context.Context, path string) ([]entity.PageScan, error) {
	start := time.Now()
	hash := contentHashFromCtx(ctx)
	if pages, ok := e.cache.load(hash); ok {
		e.logger.Debug("page cache hit", "file", common.FilenameFromContext(ctx), "pages", len(pages))
		return pages, nil
	}

	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("starting page scan", "file", path, "ext", ext)

	var (
		pages []entity.PageScan
		err   error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		pages, err = e.scanPDF(ctx, path)
	case constants.IMAGE:
		var p entity.PageScan
		p, err = e.scanImage(ctx, path, 1)
		pages = []entity.PageScan{p}
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), common.ErrNoPages)
	}

	if err := e.cache.store(hash, pages); err != nil {
		e.logger.Warn("page cache store failed", "file", path, "error", err)
	}
	e.logger.Info("page scan complete",
		"file", path,
		"pages", len(pages),
		"duration_ms", time.Since(start).Milliseconds())
	return pages, nil
}

func (e *Extractor) scanPDF(ctx context.Context, path string) ([]entity.PageScan, error) {
	count, err := e.countPages(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf structure: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), common.ErrNoPages)
	}
	if e.cfg.MaxPages > 0 && count > e.cfg.MaxPages {
		e.logger.Warn("pdf exceeds page limit, truncating", "file", path, "pages", count, "max_pages", e.cfg.MaxPages)
		count = e.cfg.MaxPages
	}

	var layer []string
	if e.cfg.PreferTextLayer {
		if layer, err = e.textLayer(path); err != nil {
			e.logger.Warn("pdf text layer unavailable", "file", path, "error", err)
		}
	}

	tmpDir, err := os.MkdirTemp("", "rc-pp-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -l N -png <in.pdf> <tmp/page>
	args := []string{"-r", strconv.Itoa(e.cfg.DPI), "-l", strconv.Itoa(count), "-png", path, prefix}
	if _, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, e.logger, args...); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 512))
	}

	images, err := renderedPages(prefix)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no images: %w", common.ErrNoPages)
	}

	pages := make([]entity.PageScan, 0, len(images))
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if text := layerText(layer, img.number); len([]rune(text)) >= e.cfg.MinTextLayer {
			sig, err := e.signature(img.path)
			if err != nil {
				e.logger.Warn("signature detection failed", "file", path, "page", img.number, "error", err)
			}
			pages = append(pages, entity.PageScan{
				Number:            img.number,
				Text:              text,
				Confidence:        100,
				SignatureDetected: sig,
				Method:            MethodTextLayer,
			})
			continue
		}
		p, err := e.scanImage(ctx, img.path, img.number)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", img.number, err)
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func (e *Extractor) scanImage(ctx context.Context, imagePath string, number int) (entity.PageScan, error) {
	text, conf, err := e.recognize(ctx, imagePath)
	if err != nil {
		return entity.PageScan{}, err
	}
	sig, err := e.signature(imagePath)
	if err != nil {
		e.logger.Warn("signature detection failed", "file", imagePath, "page", number, "error", err)
	}
	return entity.PageScan{
		Number:            number,
		Text:              text,
		Confidence:        conf,
		SignatureDetected: sig,
		Method:            MethodOCR,
	}, nil
}

type renderedPage struct {
	number int
	path   string
}

var rePageNumber = regexp.MustCompile(`-(\d+)\.png$`)

// renderedPages lists pdftoppm output ({prefix}-1.png, {prefix}-01.png...)
// ordered by page number.
func renderedPages(prefix string) ([]renderedPage, error) {
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	out := make([]renderedPage, 0, len(matches))
	for _, m := range matches {
		sm := rePageNumber.FindStringSubmatch(m)
		if sm == nil {
			continue
		}
		n, err := strconv.Atoi(sm[1])
		if err != nil {
			continue
		}
		out = append(out, renderedPage{number: n, path: m})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].number < out[j].number })
	return out, nil
}

func layerText(layer []string, number int) string {
	if number < 1 || number > len(layer) {
		return ""
	}
	return strings.TrimSpace(layer[number-1])
}
