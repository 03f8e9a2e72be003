package constants

// Status is the verdict for one checklist item.
type Status string

// Stable values (store these exact strings in DB).
const (
	StatusComplete      Status = "COMPLETE"
	StatusMissing       Status = "MISSING"
	StatusNeedsReview   Status = "NEEDS_REVIEW"
	StatusNotApplicable Status = "NOT_APPLICABLE"
	StatusError         Status = "ERROR"
)

// Label is the short form printed in the report workbook.
func (s Status) Label() string {
	switch s {
	case StatusComplete:
		return "C"
	case StatusMissing:
		return "Falta"
	case StatusNeedsReview:
		return "Revisión"
	case StatusNotApplicable:
		return "N/A"
	case StatusError:
		return "ERROR"
	default:
		return string(s)
	}
}

// Rank orders the statuses an evidence match can produce; higher is better.
func (s Status) Rank() int {
	switch s {
	case StatusComplete:
		return 3
	case StatusNeedsReview:
		return 2
	case StatusMissing:
		return 1
	default:
		return 0
	}
}
