package pages

import (
	"strings"

	"github.com/joseph-ayodele/refund-checklist/internal/entity"
)

// Aggregate groups consecutive pages of the same type into documents, in
// page order. A type change always starts a new document.
func Aggregate(pages []entity.Page) []*entity.Document {
	var (
		docs  []*entity.Document
		cur   *entity.Document
		texts []string
		sum   float64
	)
	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = strings.Join(texts, "\n\n")
		cur.Confidence = sum / float64(len(cur.Pages))
		docs = append(docs, cur)
	}

	for _, p := range pages {
		if cur == nil || p.Type != cur.Type {
			flush()
			cur = &entity.Document{Filename: p.Filename, Type: p.Type}
			texts = texts[:0]
			sum = 0
		}
		cur.Pages = append(cur.Pages, p.Number)
		texts = append(texts, p.Text)
		sum += p.Confidence
		if cur.IdentityNumber == "" {
			cur.IdentityNumber = p.IdentityNumber
		}
		if cur.IssuedAt.IsZero() {
			cur.IssuedAt = p.IssuedAt
		}
		cur.SignatureDetected = cur.SignatureDetected || p.SignatureDetected
	}
	flush()
	return docs
}
