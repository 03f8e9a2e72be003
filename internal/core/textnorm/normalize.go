// Package textnorm canonicalizes filenames and OCR text before matching.
//
// Every exported function is idempotent: applying it to its own output
// returns the output unchanged.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reNonAlnum   = regexp.MustCompile(`[^a-z0-9]+`)
	reSpaces     = regexp.MustCompile(`\s+`)
	reDotPDF     = regexp.MustCompile(`\.pdf\b`)
	reNoSuffix   = regexp.MustCompile(`(?s)\s*[-|–]\s*no\..*`)
	reBracketed  = regexp.MustCompile(`[(\[{][^)\]}]*[)\]}]`)
	reTicket     = regexp.MustCompile(`\bticketid ?\d+\b`)
	reLongNumber = regexp.MustCompile(`\b\d{5,}\b`)

	// Everything from these markers onward is routing noise added by the
	// document management system.
	filenameTruncations = []*regexp.Regexp{
		regexp.MustCompile(`(?s)\b\d{1,2} mail\b.*`),
		regexp.MustCompile(`(?s)\bnis\b.*`),
		regexp.MustCompile(`(?s)\bradicad[oa]?\b.*`),
		regexp.MustCompile(`(?s)\b(?:anexos|respuestas|internas)\b.*`),
	}

	reBracketChars = regexp.MustCompile(`[\[\]{}()]`)
	reIsolatedL    = regexp.MustCompile(`\bl\b`)
)

// StripAccents removes combining marks (á -> a, ñ -> n) and keeps everything else.
func StripAccents(s string) string {
	if s == "" {
		return s
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Normalize returns the canonical comparison form of s: lowercase, no
// diacritics, every run of non-alphanumerics collapsed into one space.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = StripAccents(strings.ToLower(s))
	s = reNonAlnum.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Filename normalizes a bundle filename and removes the noise the
// document management system adds to it (extension, bracketed notes,
// ticket markers, long numeric ids, radicado/anexos suffixes).
func Filename(s string) string {
	if s == "" {
		return s
	}
	s = StripAccents(strings.ToLower(s))
	s = reDotPDF.ReplaceAllString(s, " ")
	s = reNoSuffix.ReplaceAllString(s, "")
	s = reBracketed.ReplaceAllString(s, " ")
	s = reNonAlnum.ReplaceAllString(s, " ")
	s = reTicket.ReplaceAllString(s, " ")
	s = reLongNumber.ReplaceAllString(s, " ")
	for _, re := range filenameTruncations {
		s = re.ReplaceAllString(s, "")
	}
	return CollapseSpaces(s)
}

// RepairOCR fixes the digit/letter confusions tesseract makes in dates:
// "|" read for "/", an isolated "l" for "1", and "O" between digits for "0".
// Bracket characters are dropped.
func RepairOCR(s string) string {
	if s == "" {
		return s
	}
	s = reBracketChars.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "|", "/")
	s = reIsolatedL.ReplaceAllString(s, "1")
	return replaceOBetweenDigits(s)
}

func replaceOBetweenDigits(s string) string {
	rs := []rune(s)
	changed := false
	out := make([]rune, len(rs))
	copy(out, rs)
	for i := 1; i+1 < len(rs); i++ {
		if (rs[i] == 'O' || rs[i] == 'o') && unicode.IsDigit(rs[i-1]) && unicode.IsDigit(rs[i+1]) {
			out[i] = '0'
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(out)
}

// CollapseSpaces trims s and reduces every whitespace run to one space.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}
