package checklist

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/joseph-ayodele/refund-checklist/constants"
	"github.com/joseph-ayodele/refund-checklist/internal/core/calendar"
	"github.com/joseph-ayodele/refund-checklist/internal/core/dates"
	"github.com/joseph-ayodele/refund-checklist/internal/entity"
)

const (
	DefaultMinConfidence = 30.0
	DefaultMinTextLength = 40

	strictThreshold   = 2
	inferredThreshold = 1
)

// Observation notes recorded on results.
const (
	noteInferred    = "Documento asociado por inferencia de nombre de archivo"
	noteRedetected  = "Fecha redetectada con método mejorado"
	noteNoDate      = "Fecha no encontrada para validar vigencia"
	noteNoSignature = "Firma manuscrita no detectada; verificar firma digital o firma escaneada"
)

const (
	ErrorItemID      = "ERROR"
	errorTitlePrefix = "ERROR al procesar "
)

// Engine evaluates a checklist catalog against the documents of one file.
// It holds no per-request state and is safe for concurrent use, although
// Evaluate records resolved issuance dates on the documents it is given.
type Engine struct {
	calendar      *calendar.Calendar
	extractor     *dates.Extractor
	logger        *slog.Logger
	minConfidence float64
	minTextLength int
}

type Option func(*Engine)

// WithThresholds sets the OCR quality floor below which a Complete item is
// sent to review.
func WithThresholds(minConfidence float64, minTextLength int) Option {
	return func(e *Engine) {
		e.minConfidence = minConfidence
		e.minTextLength = minTextLength
	}
}

func NewEngine(cal *calendar.Calendar, extractor *dates.Extractor, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cal == nil {
		cal = calendar.Default()
	}
	if extractor == nil {
		extractor = dates.NewExtractor()
	}
	e := &Engine{
		calendar:      cal,
		extractor:     extractor,
		logger:        logger,
		minConfidence: DefaultMinConfidence,
		minTextLength: DefaultMinTextLength,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate returns one result per catalog item, in catalog order. Items in
// inferred need a single keyword hit to accept a document; the others need
// two.
func (e *Engine) Evaluate(
	req entity.RequestContext,
	catalog []entity.ChecklistItemDefinition,
	docs []*entity.Document,
	inferred []string,
	sourceFile string,
) []entity.ChecklistResult {
	lowered := make([]string, len(docs))
	for i, d := range docs {
		lowered[i] = strings.ToLower(d.Text)
	}

	out := make([]entity.ChecklistResult, 0, len(catalog))
	for _, item := range catalog {
		res := e.evaluateItem(req, item, docs, lowered, inferred)
		res.SourceFile = sourceFile
		res.InferredItemIDs = slices.Clone(inferred)
		e.logger.Debug("item evaluated",
			"file", sourceFile,
			"item_id", item.ID,
			"status", res.Status,
			"evidence", len(res.Evidence))
		out = append(out, res)
	}
	return out
}

func (e *Engine) evaluateItem(
	req entity.RequestContext,
	item entity.ChecklistItemDefinition,
	docs []*entity.Document,
	lowered []string,
	inferred []string,
) entity.ChecklistResult {
	res := entity.ChecklistResult{
		Category:   req.Category,
		Petitioner: req.Petitioner,
		ItemID:     item.ID,
		Title:      item.Title,
		Required:   item.Required,
	}

	if !item.AppliesToPetitioner(req.Petitioner) {
		res.Status = constants.StatusNotApplicable
		if item.NotApplicableNote != "" {
			res.Observations = []string{item.NotApplicableNote}
		}
		return res
	}

	isInferred := slices.Contains(inferred, item.ID)
	threshold := strictThreshold
	if isInferred {
		threshold = inferredThreshold
	}

	var matches []*entity.Document
	for i, d := range docs {
		if keywordHits(lowered[i], item.Keywords) >= threshold {
			matches = append(matches, d)
			res.Evidence = append(res.Evidence, d.Evidence())
		}
	}

	if len(matches) == 0 {
		if item.Required {
			res.Status = constants.StatusMissing
		} else {
			res.Status = constants.StatusNotApplicable
		}
		return res
	}

	var notes noteList
	if isInferred {
		notes.add(noteInferred)
	}
	best := constants.Status("")
	for _, d := range matches {
		status, obs := e.assess(req, item, d)
		notes.add(obs...)
		if best == "" || status.Rank() > best.Rank() {
			best = status
		}
	}
	res.Status = best
	res.Observations = notes.items
	return res
}

// assess runs the validity, OCR quality and signature stages for one
// matching document.
func (e *Engine) assess(req entity.RequestContext, item entity.ChecklistItemDefinition, d *entity.Document) (constants.Status, []string) {
	status := constants.StatusComplete
	var obs []string

	if item.HasValidity() {
		var note []string
		status, note = e.checkValidity(req, item, d)
		obs = append(obs, note...)
	}

	if d.Confidence < e.minConfidence || len([]rune(strings.TrimSpace(d.Text))) < e.minTextLength {
		obs = append(obs, fmt.Sprintf("OCR baja/confianza=%.1f", d.Confidence))
		status = downgrade(status)
	}

	if item.RequiresSignature && !d.SignatureDetected {
		obs = append(obs, noteNoSignature)
		status = downgrade(status)
	}
	return status, obs
}

func (e *Engine) checkValidity(req entity.RequestContext, item entity.ChecklistItemDefinition, d *entity.Document) (constants.Status, []string) {
	var obs []string
	issued := d.IssuedAt
	if issued.IsZero() {
		if found, ok := e.extractor.Extract(d.Text, item.BankContext); ok {
			d.IssuedAt = found
			issued = found
			obs = append(obs, noteRedetected)
		}
	}
	if issued.IsZero() {
		return constants.StatusNeedsReview, append(obs, noteNoDate)
	}
	if req.ReceiptDate.IsZero() {
		return constants.StatusNeedsReview, append(obs, "Error validando vigencia: fecha de recepción ausente")
	}

	expiry, err := e.calendar.AddBusinessDays(issued, item.ValidityDays)
	if err != nil {
		e.logger.Warn("validity check failed", "item_id", item.ID, "file", d.Filename, "error", err)
		return constants.StatusNeedsReview, append(obs, "Error validando vigencia: "+err.Error())
	}

	detail := fmt.Sprintf("Límite %s (Expedición %s + %dd hábiles)", expiry, issued, item.ValidityDays)
	if !req.ReceiptDate.After(expiry) {
		return constants.StatusComplete, append(obs, fmt.Sprintf("Vigente: Recepción %s ≤ %s", req.ReceiptDate, detail))
	}
	return constants.StatusMissing, append(obs, fmt.Sprintf("Vencido: Recepción %s > %s", req.ReceiptDate, detail))
}

// ErrorResult is the single row recorded for a file that could not be
// processed.
func ErrorResult(req entity.RequestContext, filename string, err error) entity.ChecklistResult {
	msg := "error desconocido"
	if err != nil {
		msg = err.Error()
	}
	return entity.ChecklistResult{
		Category:     req.Category,
		Petitioner:   req.Petitioner,
		ItemID:       ErrorItemID,
		Title:        errorTitlePrefix + filename,
		Required:     true,
		Status:       constants.StatusError,
		Evidence:     []string{filename},
		Observations: []string{msg},
		SourceFile:   filename,
	}
}

// keywordHits counts the keywords contained in text, which must already be
// lowercase.
func keywordHits(text string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if k != "" && strings.Contains(text, strings.ToLower(k)) {
			n++
		}
	}
	return n
}

func downgrade(s constants.Status) constants.Status {
	if s == constants.StatusComplete {
		return constants.StatusNeedsReview
	}
	return s
}

// noteList keeps observations in insertion order without repeats.
type noteList struct {
	items []string
}

func (n *noteList) add(notes ...string) {
	for _, s := range notes {
		if s != "" && !slices.Contains(n.items, s) {
			n.items = append(n.items, s)
		}
	}
}
