package entity

import (
	"github.com/joseph-ayodele/refund-checklist/constants"
	"github.com/joseph-ayodele/refund-checklist/internal/core/dates"
)

// PageScan is what the page scanner reports for one rendered page.
type PageScan struct {
	Number            int     `msgpack:"n" json:"page"`
	Text              string  `msgpack:"t" json:"text"`
	Confidence        float64 `msgpack:"c" json:"confidence"`
	SignatureDetected bool    `msgpack:"s" json:"signature_detected"`
	Method            string  `msgpack:"m" json:"method"`
}

// Page is a scanned page after classification and field extraction.
type Page struct {
	Filename          string
	Number            int
	Text              string
	Confidence        float64
	Type              constants.DocType
	IdentityNumber    string
	IssuedAt          dates.PointInTime
	SignatureDetected bool
}
