package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/refund-checklist/constants"
	"github.com/joseph-ayodele/refund-checklist/internal/core/dates"
)

// Document is a contiguous run of same-type pages from one source file.
type Document struct {
	Filename          string
	Pages             []int
	Text              string
	Confidence        float64
	Type              constants.DocType
	IdentityNumber    string
	IssuedAt          dates.PointInTime
	SignatureDetected bool
}

// PageList renders the page numbers as "1,2,3".
func (d *Document) PageList() string {
	parts := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}

// Evidence is the reference recorded on checklist results: "file.pdf (p1,2)".
func (d *Document) Evidence() string {
	return fmt.Sprintf("%s (p%s)", d.Filename, d.PageList())
}
