// Package classify assigns a document type to a page from its filename and
// OCR text using weighted keyword scores.
package classify

import (
	"strings"

	"github.com/joseph-ayodele/refund-checklist/constants"
	"github.com/joseph-ayodele/refund-checklist/internal/core/textnorm"
)

const (
	filenameWeight = 3
	textWeight     = 1
	allWordsBonus  = 2
)

type keyword struct {
	phrase string
	words  []string
}

type entry struct {
	docType  constants.DocType
	keywords []keyword
}

// Classifier is immutable and safe for concurrent use.
type Classifier struct {
	entries []entry
}

// Score is the accumulated weight of one document type.
type Score struct {
	Type  constants.DocType
	Score int
}

// New prepares a classifier over taxonomy. Keywords are normalized once.
func New(taxonomy []TypeKeywords) *Classifier {
	c := &Classifier{entries: make([]entry, 0, len(taxonomy))}
	for _, tk := range taxonomy {
		e := entry{docType: tk.Type}
		for _, kw := range tk.Keywords {
			n := textnorm.Normalize(kw)
			if n == "" {
				continue
			}
			e.keywords = append(e.keywords, keyword{phrase: n, words: strings.Fields(n)})
		}
		c.entries = append(c.entries, e)
	}
	return c
}

// NewDefault is New(DefaultTaxonomy()).
func NewDefault() *Classifier {
	return New(DefaultTaxonomy())
}

// Classify returns the highest scoring type, or DocOther when nothing scores.
func (c *Classifier) Classify(filename, text string) constants.DocType {
	best, bestScore := constants.DocOther, 0
	for _, s := range c.Scores(filename, text) {
		// strictly greater keeps the earlier type on ties
		if s.Score > bestScore {
			best, bestScore = s.Type, s.Score
		}
	}
	return best
}

// Scores returns the score of every type in taxonomy order.
func (c *Classifier) Scores(filename, text string) []Score {
	name := textnorm.Normalize(filename)
	combined := strings.TrimSpace(name + " " + textnorm.Normalize(text))

	out := make([]Score, 0, len(c.entries))
	for _, e := range c.entries {
		score := 0
		for _, kw := range e.keywords {
			if name != "" && strings.Contains(name, kw.phrase) {
				score += filenameWeight
			}
			if strings.Contains(combined, kw.phrase) {
				score += textWeight
			}
			if len(kw.words) > 1 && containsAll(combined, kw.words) {
				score += allWordsBonus
			}
		}
		out = append(out, Score{Type: e.docType, Score: score})
	}
	return out
}

func containsAll(s string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(s, w) {
			return false
		}
	}
	return true
}
