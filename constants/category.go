package constants

import (
	"strings"
)

// RequestCategory selects which checklist catalog applies to a request.
type RequestCategory string

const (
	Misional   RequestCategory = "misional"
	NoMisional RequestCategory = "no_misional"
)

var allCategories = []RequestCategory{
	Misional,
	NoMisional,
}

// PetitionerType gates the applicability of some checklist items.
type PetitionerType string

const (
	PetitionerNatural    PetitionerType = "persona_natural"
	PetitionerJuridical  PetitionerType = "persona_juridica"
	PetitionerConsortium PetitionerType = "consorcio"
)

var allPetitioners = []PetitionerType{
	PetitionerNatural,
	PetitionerJuridical,
	PetitionerConsortium,
}

func CategoriesAsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

func PetitionersAsStringSlice() []string {
	result := make([]string, len(allPetitioners))
	for i, p := range allPetitioners {
		result[i] = string(p)
	}
	return result
}

func canonicalKey(input string) string {
	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.NewReplacer("-", "_", " ", "_", "á", "a", "ó", "o", "í", "i").Replace(normalized)
	return normalized
}

// CanonicalizeCategory maps user input such as "No Misional" or "no-misional"
// onto a RequestCategory.
func CanonicalizeCategory(input string) (RequestCategory, bool) {
	if strings.TrimSpace(input) == "" {
		return Misional, false
	}
	normalized := canonicalKey(input)

	synonyms := map[string]RequestCategory{
		"mision":      Misional,
		"nomisional":  NoMisional,
		"no_mision":   NoMisional,
		"nomision":    NoMisional,
		"non_mission": NoMisional,
	}
	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == string(cat) {
			return cat, true
		}
	}
	return Misional, false
}

// CanonicalizePetitioner maps user input onto a PetitionerType.
func CanonicalizePetitioner(input string) (PetitionerType, bool) {
	if strings.TrimSpace(input) == "" {
		return PetitionerJuridical, false
	}
	normalized := canonicalKey(input)

	synonyms := map[string]PetitionerType{
		"natural":           PetitionerNatural,
		"persona":           PetitionerNatural,
		"juridica":          PetitionerJuridical,
		"juridical":         PetitionerJuridical,
		"empresa":           PetitionerJuridical,
		"consortium":        PetitionerConsortium,
		"union_temporal":    PetitionerConsortium,
		"consorcio_o_union": PetitionerConsortium,
	}
	if p, ok := synonyms[normalized]; ok {
		return p, true
	}

	for _, p := range allPetitioners {
		if normalized == string(p) {
			return p, true
		}
	}
	return PetitionerJuridical, false
}
