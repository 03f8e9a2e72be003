// Package pages turns raw page scans into classified pages and groups
// contiguous same-type pages into documents.
package pages

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/refund-checklist/internal/core/classify"
	"github.com/joseph-ayodele/refund-checklist/internal/core/dates"
	"github.com/joseph-ayodele/refund-checklist/internal/core/textnorm"
	"github.com/joseph-ayodele/refund-checklist/internal/entity"
)

// bankWords flag page text whose dates should be read in the contextual
// mode of the extractor. They are matched against normalized text.
var bankWords = []string{
	"certificacion bancaria",
	"certificado bancario",
	"banco",
	"cuenta",
	"bancaria",
	"entidad financiera",
}

// Builder classifies scanned pages and extracts their identity number and
// issuance date.
type Builder struct {
	classifier *classify.Classifier
	extractor  *dates.Extractor
	logger     *slog.Logger
}

func NewBuilder(classifier *classify.Classifier, extractor *dates.Extractor, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if classifier == nil {
		classifier = classify.NewDefault()
	}
	if extractor == nil {
		extractor = dates.NewExtractor()
	}
	return &Builder{classifier: classifier, extractor: extractor, logger: logger}
}

// Build returns one Page per scan, in scan order.
func (b *Builder) Build(filename string, scans []entity.PageScan) []entity.Page {
	out := make([]entity.Page, 0, len(scans))
	for _, s := range scans {
		p := entity.Page{
			Filename:          filename,
			Number:            s.Number,
			Text:              s.Text,
			Confidence:        s.Confidence,
			Type:              b.classifier.Classify(filename, s.Text),
			IdentityNumber:    ExtractIdentity(s.Text),
			SignatureDetected: s.SignatureDetected,
		}
		if d, ok := b.extractor.Extract(s.Text, HasBankContext(s.Text)); ok {
			p.IssuedAt = d
		}
		b.logger.Debug("page built",
			"file", filename,
			"page", p.Number,
			"type", p.Type,
			"issued_at", p.IssuedAt.String(),
			"signature", p.SignatureDetected)
		out = append(out, p)
	}
	return out
}

// HasBankContext reports whether text mentions a bank or account.
func HasBankContext(text string) bool {
	n := textnorm.Normalize(text)
	for _, w := range bankWords {
		if strings.Contains(n, w) {
			return true
		}
	}
	return false
}
