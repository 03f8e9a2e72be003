package checklist

import (
	"slices"
	"strings"

	"github.com/joseph-ayodele/refund-checklist/internal/core/textnorm"
	"github.com/joseph-ayodele/refund-checklist/internal/entity"
)

// catchAllMarkers name a bundle of everything; such filenames never narrow
// the checklist.
var catchAllMarkers = []string{
	"todo", "todos", "completo", "completa",
	"documento", "documentos", "anexo", "anexos",
	"adjunto", "adjuntos",
}

// InferItems returns, in catalog order, the ids of the items whose title or
// one of whose keywords appears literally in the normalized filename. An
// empty result means every item must be evaluated.
func InferItems(filename string, catalog []entity.ChecklistItemDefinition) []string {
	name := textnorm.Filename(filename)
	if name == "" {
		return nil
	}
	for _, m := range catchAllMarkers {
		if strings.Contains(name, m) {
			return nil
		}
	}

	var ids []string
	for _, item := range catalog {
		for _, phrase := range candidatePhrases(item) {
			if strings.Contains(name, phrase) {
				ids = append(ids, item.ID)
				break
			}
		}
	}
	return ids
}

// candidatePhrases returns the normalized title and keywords, deduplicated,
// longest first.
func candidatePhrases(item entity.ChecklistItemDefinition) []string {
	seen := make(map[string]struct{}, len(item.Keywords)+1)
	var out []string
	for _, raw := range append([]string{item.Title}, item.Keywords...) {
		p := textnorm.Normalize(raw)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	slices.SortStableFunc(out, func(a, b string) int {
		return len(b) - len(a)
	})
	return out
}
