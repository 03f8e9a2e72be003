package checklist

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/refund-checklist/constants"
	"github.com/joseph-ayodele/refund-checklist/internal/core/calendar"
	"github.com/joseph-ayodele/refund-checklist/internal/core/dates"
	"github.com/joseph-ayodele/refund-checklist/internal/entity"
)

const (
	bankText   = "CERTIFICACIÓN BANCARIA. El banco expide el presente certificado bancario a nombre de EMPRESA SAS."
	letterText = "Señores SENA. Presento carta de solicitud de devolución. Motivo de la solicitud: pago doble de la planilla."
)

var today = dates.DateOf(2025, time.February, 24)

func newTestEngine(t *testing.T) (*Engine, *calendar.Calendar) {
	t.Helper()
	clock := func() time.Time { return today.Time() }
	cal := calendar.Default()
	return NewEngine(cal, dates.NewExtractor(dates.WithClock(clock)), nil), cal
}

func item(t *testing.T, category constants.RequestCategory, id string) entity.ChecklistItemDefinition {
	t.Helper()
	c, err := LoadCatalogs()
	require.NoError(t, err)
	for _, it := range c.For(category) {
		if it.ID == id {
			return it
		}
	}
	t.Fatalf("item %s not found", id)
	return entity.ChecklistItemDefinition{}
}

func request(receipt dates.PointInTime) entity.RequestContext {
	return entity.RequestContext{
		ReceiptDate: receipt,
		Category:    constants.Misional,
		Petitioner:  constants.PetitionerJuridical,
	}
}

func bankDoc(issued dates.PointInTime) *entity.Document {
	return &entity.Document{
		Filename:   "f.pdf",
		Pages:      []int{3},
		Text:       bankText,
		Confidence: 90,
		Type:       constants.DocBankCertificate,
		IssuedAt:   issued,
	}
}

func evaluateOne(e *Engine, req entity.RequestContext, def entity.ChecklistItemDefinition, docs []*entity.Document, inferred []string) entity.ChecklistResult {
	return e.Evaluate(req, []entity.ChecklistItemDefinition{def}, docs, inferred, "f.pdf")[0]
}

func TestValidityBoundaryIsInclusive(t *testing.T) {
	e, cal := newTestEngine(t)
	bank := item(t, constants.Misional, "cert_bancaria")
	issued := dates.DateOf(2025, time.January, 10)
	expiry, err := cal.AddBusinessDays(issued, bank.ValidityDays)
	require.NoError(t, err)

	res := evaluateOne(e, request(expiry), bank, []*entity.Document{bankDoc(issued)}, nil)
	assert.Equal(t, constants.StatusComplete, res.Status)
	assert.Equal(t, []string{"f.pdf (p3)"}, res.Evidence)
	require.Len(t, res.Observations, 1)
	assert.Contains(t, res.Observations[0], "Vigente: Recepción "+expiry.String()+" ≤ Límite "+expiry.String())
	assert.Contains(t, res.Observations[0], "Expedición 2025-01-10 + 30d hábiles")

	res = evaluateOne(e, request(expiry.AddDays(1)), bank, []*entity.Document{bankDoc(issued)}, nil)
	assert.Equal(t, constants.StatusMissing, res.Status)
	assert.Contains(t, res.ObservationText(), "Vencido: Recepción")
}

func TestValidityExpiredAfterFortyBusinessDays(t *testing.T) {
	e, cal := newTestEngine(t)
	bank := item(t, constants.Misional, "cert_bancaria")
	issued := dates.DateOf(2025, time.January, 1)
	receipt, err := cal.AddBusinessDays(issued, 40)
	require.NoError(t, err)

	res := evaluateOne(e, request(receipt), bank, []*entity.Document{bankDoc(issued)}, nil)
	assert.Equal(t, constants.StatusMissing, res.Status)
}

func TestValidityRedetectsDate(t *testing.T) {
	e, _ := newTestEngine(t)
	bank := item(t, constants.Misional, "cert_bancaria")
	doc := bankDoc(dates.PointInTime{})
	doc.Text += " Fecha de expedición: 03/02/2025"

	res := evaluateOne(e, request(today), bank, []*entity.Document{doc}, nil)
	assert.Equal(t, constants.StatusComplete, res.Status)
	require.Len(t, res.Observations, 2)
	assert.Equal(t, noteRedetected, res.Observations[0])
	assert.Equal(t, "2025-02-03", doc.IssuedAt.String())
}

func TestValidityWithoutDateNeedsReview(t *testing.T) {
	e, _ := newTestEngine(t)
	bank := item(t, constants.Misional, "cert_bancaria")

	res := evaluateOne(e, request(today), bank, []*entity.Document{bankDoc(dates.PointInTime{})}, nil)
	assert.Equal(t, constants.StatusNeedsReview, res.Status)
	assert.Equal(t, []string{noteNoDate}, res.Observations)
}

func TestApplicabilityGate(t *testing.T) {
	e, _ := newTestEngine(t)
	cedula := item(t, constants.Misional, "cedula_persona_natural")
	doc := &entity.Document{Filename: "f.pdf", Pages: []int{1}, Text: "Cédula de ciudadanía número 1020304050 expedida en Bogotá", Confidence: 90}

	res := evaluateOne(e, request(today), cedula, []*entity.Document{doc}, nil)
	assert.Equal(t, constants.StatusNotApplicable, res.Status)
	assert.Equal(t, []string{"Aplica solo si peticionario es persona natural"}, res.Observations)
	assert.Empty(t, res.Evidence)

	req := request(today)
	req.Petitioner = constants.PetitionerNatural
	res = evaluateOne(e, req, cedula, []*entity.Document{doc}, nil)
	assert.Equal(t, constants.StatusComplete, res.Status)

	rutNM := item(t, constants.NoMisional, "rut_nm")
	res = evaluateOne(e, req, rutNM, nil, nil)
	assert.Equal(t, constants.StatusNotApplicable, res.Status)
	assert.Equal(t, []string{"No aplica para persona natural"}, res.Observations)
}

func TestNoEvidence(t *testing.T) {
	e, _ := newTestEngine(t)

	res := evaluateOne(e, request(today), item(t, constants.Misional, "rut"), nil, nil)
	assert.Equal(t, constants.StatusMissing, res.Status)
	assert.Empty(t, res.Observations)

	res = evaluateOne(e, request(today), item(t, constants.Misional, "contrato_salario_integral"), nil, nil)
	assert.Equal(t, constants.StatusNotApplicable, res.Status)
}

func TestInferenceLowersThreshold(t *testing.T) {
	e, _ := newTestEngine(t)
	rut := item(t, constants.Misional, "rut")
	doc := &entity.Document{Filename: "RUT.pdf", Pages: []int{1}, Text: "Documento RUT de la empresa ejemplo con domicilio en Bogotá", Confidence: 85}

	res := evaluateOne(e, request(today), rut, []*entity.Document{doc}, nil)
	assert.Equal(t, constants.StatusMissing, res.Status)

	res = evaluateOne(e, request(today), rut, []*entity.Document{doc}, []string{"rut"})
	assert.Equal(t, constants.StatusComplete, res.Status)
	assert.Equal(t, []string{"RUT.pdf (p1)"}, res.Evidence)
	assert.Equal(t, []string{noteInferred}, res.Observations)
	assert.Equal(t, []string{"rut"}, res.InferredItemIDs)
}

func TestOverrides(t *testing.T) {
	e, _ := newTestEngine(t)
	carta := item(t, constants.Misional, "carta_representante")

	tests := []struct {
		name       string
		doc        entity.Document
		wantStatus constants.Status
		wantObs    []string
	}{
		{
			name:       "signed letter",
			doc:        entity.Document{Text: letterText, Confidence: 80, SignatureDetected: true},
			wantStatus: constants.StatusComplete,
		},
		{
			name:       "unsigned letter",
			doc:        entity.Document{Text: letterText, Confidence: 80},
			wantStatus: constants.StatusNeedsReview,
			wantObs:    []string{noteNoSignature},
		},
		{
			name:       "low confidence",
			doc:        entity.Document{Text: letterText, Confidence: 20, SignatureDetected: true},
			wantStatus: constants.StatusNeedsReview,
			wantObs:    []string{"OCR baja/confianza=20.0"},
		},
		{
			name:       "short text",
			doc:        entity.Document{Text: "  carta solicitud  ", Confidence: 95, SignatureDetected: true},
			wantStatus: constants.StatusNeedsReview,
			wantObs:    []string{"OCR baja/confianza=95.0"},
		},
		{
			name:       "both overrides",
			doc:        entity.Document{Text: letterText, Confidence: 12.34},
			wantStatus: constants.StatusNeedsReview,
			wantObs:    []string{"OCR baja/confianza=12.3", noteNoSignature},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := tt.doc
			doc.Filename, doc.Pages = "f.pdf", []int{1, 2}
			res := evaluateOne(e, request(today), carta, []*entity.Document{&doc}, nil)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantObs, res.Observations)
			assert.Equal(t, []string{"f.pdf (p1,2)"}, res.Evidence)
		})
	}
}

func TestThresholdsOption(t *testing.T) {
	clock := func() time.Time { return today.Time() }
	e := NewEngine(nil, dates.NewExtractor(dates.WithClock(clock)), nil, WithThresholds(0, 0))
	rut := item(t, constants.Misional, "rut")
	doc := &entity.Document{Filename: "f.pdf", Pages: []int{1}, Text: "RUT registro único tributario", Confidence: 5}

	res := evaluateOne(e, request(today), rut, []*entity.Document{doc}, nil)
	assert.Equal(t, constants.StatusComplete, res.Status)
}

func TestBestStatusWinsAcrossMatches(t *testing.T) {
	e, _ := newTestEngine(t)
	bank := item(t, constants.Misional, "cert_bancaria")
	expired := bankDoc(dates.DateOf(2024, time.June, 3))
	expired.Pages = []int{1}
	valid := bankDoc(dates.DateOf(2025, time.February, 3))
	valid.Pages = []int{4}

	res := evaluateOne(e, request(today), bank, []*entity.Document{expired, valid}, nil)
	assert.Equal(t, constants.StatusComplete, res.Status)
	assert.Equal(t, []string{"f.pdf (p1)", "f.pdf (p4)"}, res.Evidence)
	require.Len(t, res.Observations, 2)
	assert.Contains(t, res.Observations[0], "Vencido")
	assert.Contains(t, res.Observations[1], "Vigente")
}

func TestEvaluateKeepsCatalogOrder(t *testing.T) {
	e, _ := newTestEngine(t)
	c, err := LoadCatalogs()
	require.NoError(t, err)
	catalog := c.For(constants.Misional)

	results := e.Evaluate(request(today), catalog, nil, nil, "vacio.pdf")
	require.Len(t, results, len(catalog))
	for i, r := range results {
		assert.Equal(t, catalog[i].ID, r.ItemID)
		assert.Equal(t, "vacio.pdf", r.SourceFile)
		assert.Equal(t, constants.Misional, r.Category)
		assert.Equal(t, constants.PetitionerJuridical, r.Petitioner)
	}
}

func TestErrorResult(t *testing.T) {
	res := ErrorResult(request(today), "roto.pdf", errors.New("pdftoppm: exit status 1"))
	assert.Equal(t, ErrorItemID, res.ItemID)
	assert.Equal(t, "ERROR al procesar roto.pdf", res.Title)
	assert.Equal(t, constants.StatusError, res.Status)
	assert.Equal(t, "pdftoppm: exit status 1", res.ObservationText())
	assert.Equal(t, "roto.pdf", res.SourceFile)
}

func TestParseReceiptDate(t *testing.T) {
	clock := func() time.Time { return time.Date(2025, 3, 10, 15, 4, 0, 0, time.UTC) }
	ex := dates.NewExtractor(dates.WithClock(clock))

	tests := []struct {
		in   string
		want string
	}{
		{"2025-02-24", "2025-02-24"},
		{"24/02/2025", "2025-02-24"},
		{"24 de febrero de 2025", "2025-02-24"},
		{"", "2025-03-10"},
		{"cuando llegue", "2025-03-10"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseReceiptDate(tt.in, ex, nil).String())
		})
	}
}
