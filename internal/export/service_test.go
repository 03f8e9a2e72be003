package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/refund-checklist/constants"
	"github.com/joseph-ayodele/refund-checklist/internal/entity"
)

func sampleReports() []entity.FileReport {
	ok := entity.FileReport{
		Filename:        "rut.pdf",
		InferredItemIDs: []string{"rut", "cert_bancaria"},
		Results: []entity.ChecklistResult{
			{
				Category:     constants.Misional,
				Petitioner:   constants.PetitionerJuridical,
				ItemID:       "rut",
				Title:        "Copia de Rut vigente.",
				Required:     true,
				Status:       constants.StatusComplete,
				Evidence:     []string{"rut.pdf (p1)", "rut.pdf (p3)"},
				Observations: []string{"Documento asociado por inferencia de nombre de archivo"},
			},
			{
				Category:   constants.Misional,
				Petitioner: constants.PetitionerJuridical,
				ItemID:     "cert_bancaria",
				Title:      "Certificación Bancaria",
				Required:   true,
				Status:     constants.StatusNeedsReview,
			},
		},
		Summary: entity.FileSummary{Filename: "rut.pdf", PageCount: 3, DocumentCount: 2, ContentHash: "abc123"},
	}
	failed := entity.FileReport{
		Filename: "roto.pdf",
		Results: []entity.ChecklistResult{{
			Category:     constants.Misional,
			Petitioner:   constants.PetitionerJuridical,
			ItemID:       "ERROR",
			Title:        "ERROR al procesar roto.pdf",
			Required:     true,
			Status:       constants.StatusError,
			Evidence:     []string{"roto.pdf"},
			Observations: []string{"pdftoppm: exit status 1"},
		}},
		Summary: entity.FileSummary{Filename: "roto.pdf"},
	}
	return []entity.FileReport{ok, failed}
}

func TestBuildWorkbook(t *testing.T) {
	b, err := NewService(nil).BuildWorkbook(sampleReports())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetChecklist, SheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(SheetChecklist)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, checklistHeaders, rows[0])
	assert.Equal(t, []string{
		"misional", "persona_juridica", "rut", "Copia de Rut vigente.", "TRUE", "C",
		"rut.pdf (p1), rut.pdf (p3)", "Documento asociado por inferencia de nombre de archivo",
		"rut.pdf", "rut.pdf", "rut,cert_bancaria",
	}, rows[1])
	assert.Equal(t, "Revisión", rows[2][5])
	assert.Equal(t, "ERROR", rows[3][2])
	assert.Equal(t, "ERROR", rows[3][5])
	assert.Equal(t, "pdftoppm: exit status 1", rows[3][7])

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, summaryHeaders, summary[0])
	assert.Equal(t, []string{"rut.pdf", "3", "2", "abc123"}, summary[1])
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "informe.xlsx")
	require.NoError(t, NewService(nil).WriteFile(path, sampleReports()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(SheetChecklist, "C2")
	require.NoError(t, err)
	assert.Equal(t, "rut", v)
}
