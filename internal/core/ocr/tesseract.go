package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// tsv column positions of tesseract's "tsv" output config.
const (
	tsvBlock = 2
	tsvPar   = 3
	tsvLine  = 4
	tsvConf  = 10
	tsvText  = 11
	tsvCols  = 12
)

// recognize runs tesseract once in TSV mode and returns the page text and
// the mean word confidence (0..100).
func (e *Extractor) recognize(ctx context.Context, imagePath string) (string, float64, error) {
	args := []string{imagePath, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.logger, args...)
	if err != nil {
		return "", 0, fmt.Errorf("tesseract: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 512))
	}
	text, conf := parseTSV(string(out))
	return CleanText(text), conf, nil
}

// parseTSV rebuilds the text line by line from word rows and averages the
// confidence of every recognized word. Rows with conf -1 are layout rows.
func parseTSV(out string) (string, float64) {
	var (
		b        strings.Builder
		sum, n   float64
		lastLine string
	)
	for i, ln := range strings.Split(out, "\n") {
		if i == 0 || ln == "" {
			continue
		}
		cols := strings.Split(strings.TrimRight(ln, "\r"), "\t")
		if len(cols) < tsvCols {
			continue
		}
		conf, err := strconv.ParseFloat(cols[tsvConf], 64)
		if err != nil || conf < 0 {
			continue
		}
		word := strings.TrimSpace(cols[tsvText])
		if word == "" {
			continue
		}
		sum += conf
		n++

		key := cols[tsvBlock] + "." + cols[tsvPar] + "." + cols[tsvLine]
		switch {
		case b.Len() == 0:
		case key != lastLine:
			b.WriteByte('\n')
		default:
			b.WriteByte(' ')
		}
		b.WriteString(word)
		lastLine = key
	}
	if n == 0 {
		return b.String(), 0
	}
	return b.String(), sum / n
}
