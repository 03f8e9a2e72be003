package pages

import "regexp"

var (
	reTaxID     = regexp.MustCompile(`(?i)\b(?:NIT\.?[:\s\-]*)?(\d{6,12})\b`)
	reCitizenID = regexp.MustCompile(`(?i)\b(?:C[-\s]?C[:\s\-]*|Cédula de Ciudadanía|Cédula|Cedula)\s*[:#]?\s*(\d{6,12})\b`)
)

// ExtractIdentity returns the first tax id found in raw OCR text, or the
// first citizen id when there is no tax id. It returns "" when neither is
// present.
func ExtractIdentity(text string) string {
	if m := reTaxID.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := reCitizenID.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}
