// Package dates finds issuance dates in noisy OCR text.
//
// Extraction runs four independent passes (issuance-context, named month,
// numeric triplet, generic parser), pools their candidates and picks the
// most recent one inside a plausibility window around today. The recency
// rule is a heuristic: a document that mentions a later unrelated date
// (a due date, say) inside the window will report that date instead.
package dates

import (
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/araddon/dateparse"

	"github.com/joseph-ayodele/refund-checklist/internal/core/textnorm"
)

const (
	minYear = 1900
	maxYear = 2100
)

const (
	dateSep        = `[/\-.\s\\]+`
	numericToken   = `\d{1,4}` + dateSep + `\d{1,2}` + dateSep + `\d{1,4}`
	namedToken     = `\d{1,2}[\s\-/.]*(?:de\s+)?\p{L}{3,}[\s\-/.,]*(?:del?\s+)?\d{2,4}`
	issuanceMarker = `(?:fecha|expedici[oó]n|expide|emitid[ao]|generad[ao]|cread[ao]|realizad[ao]|elabor[oó]|elaboraci[oó]n)`
)

var (
	reNumeric    = regexp.MustCompile(`\b(\d{1,4})` + dateSep + `(\d{1,2})` + dateSep + `(\d{1,4})\b`)
	reNamed      = regexp.MustCompile(`(?i)\b(\d{1,2})[\s\-/.]*(?:de\s+)?(\p{L}{3,})[\s\-/.,]*(?:del?\s+)?(\d{2,4})\b`)
	reContextual = regexp.MustCompile(`(?i)` + issuanceMarker + `[\s:\-.,]*(` + numericToken + `|` + namedToken + `)`)
	reLooseShape = regexp.MustCompile(`\b\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}\b`)
)

// Extractor is safe for concurrent use.
type Extractor struct {
	now func() time.Time
}

type Option func(*Extractor)

// WithClock overrides the source of "today" used by the recency window.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Today is the extractor's notion of the current date.
func (e *Extractor) Today() PointInTime {
	return FromTime(e.now())
}

// Extract returns the selected issuance date in text. contextual enables the
// issuance-marker pass used for bank and financial documents.
func (e *Extractor) Extract(text string, contextual bool) (PointInTime, bool) {
	return e.Select(e.Candidates(text, contextual))
}

// Candidates returns every date found by any pass, deduplicated and sorted
// ascending.
func (e *Extractor) Candidates(text string, contextual bool) []PointInTime {
	if text == "" {
		return nil
	}
	text = textnorm.RepairOCR(text)

	var found []PointInTime
	if contextual {
		for _, m := range reContextual.FindAllStringSubmatch(text, -1) {
			if p, ok := e.ParseFlexible(m[1]); ok {
				found = append(found, p)
			}
		}
	}
	found = append(found, namedMonthPass(text)...)
	found = append(found, numericPass(text)...)
	found = append(found, fallbackPass(text)...)
	return dedupeSorted(found)
}

// Select applies the recency rule: the latest candidate within
// [today-5y, today+1y], or the latest candidate overall when none falls
// inside the window.
func (e *Extractor) Select(candidates []PointInTime) (PointInTime, bool) {
	switch len(candidates) {
	case 0:
		return PointInTime{}, false
	case 1:
		return candidates[0], true
	}
	today := e.Today()
	lo, hi := today.AddDate(-5, 0, 0), today.AddDate(1, 0, 0)

	var best PointInTime
	for _, c := range candidates {
		if c.Before(lo) || c.After(hi) {
			continue
		}
		if best.IsZero() || c.After(best) {
			best = c
		}
	}
	if !best.IsZero() {
		return best, true
	}
	latest := candidates[0]
	for _, c := range candidates[1:] {
		if c.After(latest) {
			latest = c
		}
	}
	return latest, true
}

// ParseFlexible parses a single date token: numeric triplet first, then
// named month, then the generic parser.
func (e *Extractor) ParseFlexible(token string) (PointInTime, bool) {
	token = textnorm.RepairOCR(token)
	if m := reNumeric.FindStringSubmatch(token); m != nil {
		if p, ok := parseTriplet(m[1], m[2], m[3]); ok {
			return p, true
		}
	}
	if m := reNamed.FindStringSubmatch(token); m != nil {
		if p, ok := parseNamed(m[1], m[2], m[3]); ok {
			return p, true
		}
	}
	return parseGeneric(token)
}

func namedMonthPass(text string) []PointInTime {
	var out []PointInTime
	for _, m := range reNamed.FindAllStringSubmatch(text, -1) {
		if p, ok := parseNamed(m[1], m[2], m[3]); ok {
			out = append(out, p)
		}
	}
	return out
}

func numericPass(text string) []PointInTime {
	var out []PointInTime
	for _, m := range reNumeric.FindAllStringSubmatch(text, -1) {
		if p, ok := parseTriplet(m[1], m[2], m[3]); ok {
			out = append(out, p)
		}
	}
	return out
}

func fallbackPass(text string) []PointInTime {
	var out []PointInTime
	// Every loose token is read on its own: the numeric pass misses dates
	// glued to a preceding number ("Folio 7 15/01/2025"). Duplicates are
	// dropped by dedupeSorted.
	for _, tok := range reLooseShape.FindAllString(text, -1) {
		if m := reNumeric.FindStringSubmatch(tok); m != nil {
			if p, ok := parseTriplet(m[1], m[2], m[3]); ok {
				out = append(out, p)
				continue
			}
		}
		if p, ok := parseGeneric(tok); ok {
			out = append(out, p)
		}
	}
	return out
}

func parseNamed(dayStr, monthWord, yearStr string) (PointInTime, bool) {
	month, ok := lookupMonth(monthWord)
	if !ok {
		return PointInTime{}, false
	}
	day, _ := strconv.Atoi(dayStr)
	year, ok := expandYear(yearStr)
	if !ok {
		return PointInTime{}, false
	}
	return fromText(year, month, day)
}

// parseTriplet reads a numeric triplet as D-M-Y first and Y-M-D second.
func parseTriplet(a, b, c string) (PointInTime, bool) {
	month, _ := strconv.Atoi(b)
	if len(a) <= 2 {
		day, _ := strconv.Atoi(a)
		if year, ok := expandYear(c); ok {
			if p, ok := fromText(year, time.Month(month), day); ok {
				return p, true
			}
		}
	}
	if len(a) >= 2 && len(c) <= 2 {
		day, _ := strconv.Atoi(c)
		if year, ok := expandYear(a); ok {
			if p, ok := fromText(year, time.Month(month), day); ok {
				return p, true
			}
		}
	}
	return PointInTime{}, false
}

func parseGeneric(token string) (PointInTime, bool) {
	t, err := dateparse.ParseAny(token, dateparse.PreferMonthFirst(false))
	if err != nil {
		return PointInTime{}, false
	}
	if t.Year() < minYear || t.Year() > maxYear {
		return PointInTime{}, false
	}
	return fromText(t.Year(), t.Month(), t.Day())
}

// expandYear maps two-digit years below 50 to the 2000s and the rest to
// the 1900s, and rejects anything outside [1900, 2100].
func expandYear(s string) (int, bool) {
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	if len(s) <= 2 {
		if y < 50 {
			y += 2000
		} else {
			y += 1900
		}
	}
	if y < minYear || y > maxYear {
		return 0, false
	}
	return y, true
}

func dedupeSorted(in []PointInTime) []PointInTime {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]PointInTime, 0, len(in))
	for _, p := range in {
		key := p.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
