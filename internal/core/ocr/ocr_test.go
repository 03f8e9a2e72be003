package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/refund-checklist/internal/common"
)

const tsvHeader = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext"

type word struct {
	line int
	text string
	conf float64
}

func tsv(words ...word) string {
	rows := []string{tsvHeader, "1\t1\t0\t0\t0\t0\t0\t0\t100\t100\t-1\t"}
	for i, w := range words {
		rows = append(rows, fmt.Sprintf("5\t1\t1\t1\t%d\t%d\t0\t0\t10\t10\t%.2f\t%s", w.line, i+1, w.conf, w.text))
	}
	return strings.Join(rows, "\n") + "\n"
}

// writePage writes a white page image; with ink it draws a dark stroke in
// the bottom third.
func writePage(t *testing.T, path string, ink bool) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	if ink {
		for y := 80; y < 86; y++ {
			for x := 20; x < 80; x++ {
				img.SetGray(x, y, color.Gray{Y: 30})
			}
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

type fakeRunner struct {
	t     *testing.T
	mu    sync.Mutex
	calls [][]string
	// pages rendered by pdftoppm; true draws a signature
	rendered []bool
	tsv      map[string]string
	fail     string
}

func (f *fakeRunner) Run(_ context.Context, name string, _ *slog.Logger, args ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()

	if name == f.fail {
		return nil, []byte("boom"), errors.New("exit status 1")
	}
	switch name {
	case "pdftoppm":
		prefix := args[len(args)-1]
		for i, ink := range f.rendered {
			writePage(f.t, fmt.Sprintf("%s-%d.png", prefix, i+1), ink)
		}
		return nil, nil, nil
	case "tesseract":
		return []byte(f.tsv[filepath.Base(args[0])]), nil, nil
	}
	return nil, nil, fmt.Errorf("unexpected command %s", name)
}

func (f *fakeRunner) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c[0] == name {
			n++
		}
	}
	return n
}

func newTestExtractor(cfg Config, r *fakeRunner, pageCount int) *Extractor {
	e := NewExtractor(cfg, nil, WithRunner(r))
	e.countPages = func(string) (int, error) { return pageCount, nil }
	e.textLayer = func(string) ([]string, error) { return nil, nil }
	return e
}

func TestParseTSV(t *testing.T) {
	text, conf := parseTSV(tsv(
		word{1, "Carta", 90},
		word{1, "de", 80},
		word{2, "solicitud", 70},
	))
	assert.Equal(t, "Carta de\nsolicitud", text)
	assert.InDelta(t, 80.0, conf, 0.001)

	text, conf = parseTSV(tsvHeader + "\n")
	assert.Empty(t, text)
	assert.Zero(t, conf)
}

func TestCleanText(t *testing.T) {
	in := "Linea  uno\t\tfin   \r\n-----\r\n\n\n\nLinea dos\f"
	assert.Equal(t, "Linea uno fin\n\nLinea dos", CleanText(in))
	assert.Equal(t, CleanText(in), CleanText(CleanText(in)))
}

func TestDetectSignature(t *testing.T) {
	dir := t.TempDir()
	signed := filepath.Join(dir, "signed.png")
	blank := filepath.Join(dir, "blank.png")
	writePage(t, signed, true)
	writePage(t, blank, false)

	ok, err := DetectSignature(signed)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = DetectSignature(blank)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = DetectSignature(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

func TestDarkRatioIgnoresTopOfPage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 10, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 10; x++ {
			v := uint8(255)
			if y < 50 {
				v = 0
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	assert.Zero(t, DarkRatio(img, signatureROI))
	assert.InDelta(t, 0.5, DarkRatio(img, 1), 0.001)
}

func TestScanPDF(t *testing.T) {
	r := &fakeRunner{
		t:        t,
		rendered: []bool{false, true},
		tsv: map[string]string{
			"page-1.png": tsv(word{1, "Certificación", 95}, word{1, "bancaria", 85}),
			"page-2.png": tsv(word{1, "Atentamente", 60}),
		},
	}
	e := newTestExtractor(Config{DPI: 200}, r, 2)

	pages, err := e.Scan(context.Background(), "/in/bundle.pdf")
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "Certificación bancaria", pages[0].Text)
	assert.InDelta(t, 90.0, pages[0].Confidence, 0.001)
	assert.False(t, pages[0].SignatureDetected)
	assert.Equal(t, MethodOCR, pages[0].Method)

	assert.Equal(t, 2, pages[1].Number)
	assert.True(t, pages[1].SignatureDetected)

	require.Equal(t, 1, r.count("pdftoppm"))
	assert.Equal(t, []string{"pdftoppm", "-r", "200", "-l", "2", "-png", "/in/bundle.pdf"}, r.calls[0][:7])
	assert.Equal(t, 2, r.count("tesseract"))
	assert.Contains(t, r.calls[1], "spa")
	assert.Equal(t, "tsv", r.calls[1][len(r.calls[1])-1])
}

func TestScanPDFPrefersTextLayer(t *testing.T) {
	r := &fakeRunner{
		t:        t,
		rendered: []bool{false, false},
		tsv:      map[string]string{"page-2.png": tsv(word{1, "escaneada", 70})},
	}
	e := newTestExtractor(Config{PreferTextLayer: true}, r, 2)
	layer := "Certificado de existencia y representación legal de la empresa"
	e.textLayer = func(string) ([]string, error) { return []string{layer, "corto"}, nil }

	pages, err := e.Scan(context.Background(), "doc.pdf")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, MethodTextLayer, pages[0].Method)
	assert.Equal(t, layer, pages[0].Text)
	assert.Equal(t, 100.0, pages[0].Confidence)
	assert.Equal(t, MethodOCR, pages[1].Method)
	assert.Equal(t, 1, r.count("tesseract"))
}

func TestScanPDFMaxPages(t *testing.T) {
	r := &fakeRunner{t: t, rendered: []bool{false, false}, tsv: map[string]string{}}
	e := newTestExtractor(Config{MaxPages: 2}, r, 9)

	pages, err := e.Scan(context.Background(), "big.pdf")
	require.NoError(t, err)
	assert.Len(t, pages, 2)
	assert.Equal(t, "2", r.calls[0][4])
}

func TestScanImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foto.JPG.png")
	writePage(t, path, true)
	r := &fakeRunner{t: t, tsv: map[string]string{"foto.JPG.png": tsv(word{1, "RUT", 50})}}
	e := newTestExtractor(Config{}, r, 0)

	pages, err := e.Scan(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "RUT", pages[0].Text)
	assert.True(t, pages[0].SignatureDetected)
	assert.Zero(t, r.count("pdftoppm"))
}

func TestScanErrors(t *testing.T) {
	r := &fakeRunner{t: t, rendered: []bool{false}, fail: "pdftoppm"}

	_, err := newTestExtractor(Config{}, r, 1).Scan(context.Background(), "notes.docx")
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)

	_, err = newTestExtractor(Config{}, r, 0).Scan(context.Background(), "empty.pdf")
	assert.ErrorIs(t, err, common.ErrNoPages)

	_, err = newTestExtractor(Config{}, r, 1).Scan(context.Background(), "broken.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftoppm")
	assert.Contains(t, err.Error(), "boom")
}

func TestScanUsesPageCache(t *testing.T) {
	cacheDir := t.TempDir()
	r := &fakeRunner{
		t:        t,
		rendered: []bool{true},
		tsv:      map[string]string{"page-1.png": tsv(word{1, "Carta", 88})},
	}
	ctx := WithContentHash(context.Background(), "0123abcd")

	first, err := newTestExtractor(Config{ArtifactCacheDir: cacheDir}, r, 1).Scan(ctx, "a.pdf")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(cacheDir, "0123abcd.pages"))

	r.fail = "pdftoppm"
	second, err := newTestExtractor(Config{ArtifactCacheDir: cacheDir}, r, 1).Scan(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, r.count("pdftoppm"))

	_, err = newTestExtractor(Config{ArtifactCacheDir: cacheDir}, r, 1).Scan(context.Background(), "a.pdf")
	assert.Error(t, err)
}
