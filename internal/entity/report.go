package entity

import "github.com/joseph-ayodele/refund-checklist/constants"

// FileSummary describes one processed source file.
type FileSummary struct {
	Filename      string
	PageCount     int
	DocumentCount int
	ContentHash   string
}

// FileReport is everything produced for one source file.
type FileReport struct {
	Filename        string
	Results         []ChecklistResult
	Summary         FileSummary
	InferredItemIDs []string
}

// Failed reports whether the file could not be processed, in which case its
// only result is the ERROR row.
func (r FileReport) Failed() bool {
	return len(r.Results) == 1 && r.Results[0].Status == constants.StatusError
}
