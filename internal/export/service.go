// Package export writes checklist results to an XLSX workbook.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/refund-checklist/internal/entity"
)

const (
	SheetChecklist = "Checklist"
	SheetSummary   = "ResumenArchivos"
)

var checklistHeaders = []string{
	"TipoDevolucion",
	"PeticionarioTipo",
	"ItemID",
	"Item",
	"Requerido",
	"Estado",
	"ArchivosFuente",
	"Observaciones",
	"SolicitudArchivo",
	"NombreArchivo",
	"InferredItemIDs",
}

var summaryHeaders = []string{
	"archivo",
	"paginas_detectadas",
	"documentos_detectados",
	"hash_sha256",
}

// Service produces XLSX bytes for a batch of file reports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// BuildWorkbook returns the workbook: every result row on the Checklist
// sheet in report order, and one ResumenArchivos row per file that was
// processed.
func (s *Service) BuildWorkbook(reports []entity.FileReport) ([]byte, error) {
	start := time.Now()
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("close workbook", "error", err)
		}
	}()

	// the default sheet becomes the checklist
	if err := f.SetSheetName("Sheet1", SheetChecklist); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if index, _ := f.GetSheetIndex(SheetSummary); index == -1 {
		if _, err := f.NewSheet(SheetSummary); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(SheetChecklist)
	f.SetActiveSheet(activeIndex)

	if err := writeRow(f, SheetChecklist, 1, toAny(checklistHeaders)); err != nil {
		return nil, err
	}
	if err := writeRow(f, SheetSummary, 1, toAny(summaryHeaders)); err != nil {
		return nil, err
	}

	row, summaryRow := 2, 2
	for _, rep := range reports {
		inferred := strings.Join(rep.InferredItemIDs, ",")
		for _, r := range rep.Results {
			values := []any{
				string(r.Category),
				string(r.Petitioner),
				r.ItemID,
				r.Title,
				r.Required,
				r.Status.Label(),
				r.EvidenceText(),
				r.ObservationText(),
				rep.Filename,
				rep.Filename,
				inferred,
			}
			if err := writeRow(f, SheetChecklist, row, values); err != nil {
				return nil, err
			}
			row++
		}
		if rep.Failed() {
			continue
		}
		sum := rep.Summary
		if err := writeRow(f, SheetSummary, summaryRow, []any{sum.Filename, sum.PageCount, sum.DocumentCount, sum.ContentHash}); err != nil {
			return nil, err
		}
		summaryRow++
	}

	// Widen a few columns
	_ = f.SetColWidth(SheetChecklist, "A", "C", 18)
	_ = f.SetColWidth(SheetChecklist, "D", "D", 60) // item title
	_ = f.SetColWidth(SheetChecklist, "E", "F", 11)
	_ = f.SetColWidth(SheetChecklist, "G", "H", 48) // evidence, notes
	_ = f.SetColWidth(SheetChecklist, "I", "K", 28)
	_ = f.SetColWidth(SheetSummary, "A", "A", 40)
	_ = f.SetColWidth(SheetSummary, "B", "C", 20)
	_ = f.SetColWidth(SheetSummary, "D", "D", 66)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("checklist workbook built",
		"files", len(reports),
		"rows", row-2,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteFile builds the workbook and writes it to path.
func (s *Service) WriteFile(path string, reports []entity.FileReport) error {
	b, err := s.BuildWorkbook(reports)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
