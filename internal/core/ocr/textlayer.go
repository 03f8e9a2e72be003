package ocr

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// readTextLayer returns the embedded text of every page of a PDF, indexed
// from page 1 at position 0. Pages without a text layer are "".
func readTextLayer(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf text layer: %w", err)
	}
	defer f.Close()

	n := r.NumPage()
	out := make([]string, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		out[i-1] = CleanText(text)
	}
	return out, nil
}
