package entity

import (
	"slices"
	"strings"

	"github.com/joseph-ayodele/refund-checklist/constants"
	"github.com/joseph-ayodele/refund-checklist/internal/core/dates"
)

// ChecklistItemDefinition is one required or optional document of a catalog.
type ChecklistItemDefinition struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Keywords []string `json:"keywords"`
	Required bool     `json:"required"`
	// ValidityDays is the validity window in business days; 0 means none.
	ValidityDays      int                        `json:"validity_days,omitempty"`
	AppliesTo         []constants.PetitionerType `json:"applies_to,omitempty"`
	NotApplicableNote string                     `json:"not_applicable_note,omitempty"`
	RequiresSignature bool                       `json:"requires_signature,omitempty"`
	BankContext       bool                       `json:"bank_context,omitempty"`
}

func (d ChecklistItemDefinition) HasValidity() bool {
	return d.ValidityDays > 0
}

// AppliesToPetitioner is true when the item has no petitioner scope or
// lists p in it.
func (d ChecklistItemDefinition) AppliesToPetitioner(p constants.PetitionerType) bool {
	return len(d.AppliesTo) == 0 || slices.Contains(d.AppliesTo, p)
}

// RequestContext carries the per-request inputs of an evaluation.
type RequestContext struct {
	ReceiptDate dates.PointInTime
	Category    constants.RequestCategory
	Petitioner  constants.PetitionerType
}

// ChecklistResult is the verdict for one item against one source file.
type ChecklistResult struct {
	Category        constants.RequestCategory
	Petitioner      constants.PetitionerType
	ItemID          string
	Title           string
	Required        bool
	Status          constants.Status
	Evidence        []string
	Observations    []string
	SourceFile      string
	InferredItemIDs []string
}

func (r ChecklistResult) EvidenceText() string {
	return strings.Join(r.Evidence, ", ")
}

func (r ChecklistResult) ObservationText() string {
	return strings.Join(r.Observations, "; ")
}
