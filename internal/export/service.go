// Package export writes processed boleta records to an XLSX workbook for the
// administrative review spreadsheet.
package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vparedes/boletas-ocr/constants"
	"github.com/vparedes/boletas-ocr/internal/entity"
)

type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// RecordsXLSX returns an XLSX workbook (as bytes) with one row per record.
func (s *Service) RecordsXLSX(recs []entity.DocumentRecord) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Boletas"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if idx, _ := f.GetSheetIndex("Sheet1"); idx != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Archivo",
		"Folio",
		"RUT",
		"Fecha",
		"Monto",
		"Glosa",
		"Horas",
		"Decreto",
		"Confianza",
		"Campos faltantes",
		"Revisar",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for row, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.SourcePath)
		write(2, fieldNorm(r, constants.FieldFolio))
		write(3, fieldNorm(r, constants.FieldRUT))
		write(4, fieldNorm(r, constants.FieldDate))
		if amt, ok := r.Field(constants.FieldAmount); ok {
			write(5, amt.Int)
		}
		write(6, fieldNorm(r, constants.FieldGlosa))
		if hrs, ok := r.Field(constants.FieldHours); ok {
			write(7, hrs.Int)
		}
		write(8, fieldNorm(r, constants.FieldDecreto))
		write(9, fmt.Sprintf("%.2f", r.Confidence))
		write(10, joinFieldIDs(r.MissingFields))
		if r.NeedsReview {
			write(11, "SI")
		} else {
			write(11, "NO")
		}
	}

	out, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	s.logger.Info("export built",
		"records", len(recs),
		"bytes", out.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out.Bytes(), nil
}

func fieldNorm(r entity.DocumentRecord, id constants.FieldID) string {
	if f, ok := r.Field(id); ok {
		return f.Norm
	}
	return ""
}

func joinFieldIDs(ids []constants.FieldID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
