package services

import (
	"bytes"
	"fmt"

	"github.com/alimgiray/contribstats/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	dailySheet   = "Daily"
	monthlySheet = "Monthly"
)

type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// BuildWorkbook renders a report as an XLSX workbook with a per-day sheet and a
// per-month sheet.
func (s *ExportService) BuildWorkbook(report models.ContributionReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dailySheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(monthlySheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	dailyRows := make([][]interface{}, 0, len(report.Days))
	for _, day := range report.Days {
		dailyRows = append(dailyRows, []interface{}{day.Date, day.Count})
	}
	if err := writeSheet(f, dailySheet, []interface{}{"Date", "Count"}, dailyRows, headerStyle); err != nil {
		return nil, err
	}

	months := SortedMonthKeys(report.Summary)
	monthlyRows := make([][]interface{}, 0, len(months)+1)
	for _, month := range months {
		monthlyRows = append(monthlyRows, []interface{}{month, report.Summary[month]})
	}
	monthlyRows = append(monthlyRows, []interface{}{"Total", report.Total})
	if err := writeSheet(f, monthlySheet, []interface{}{"Month", "Count"}, monthlyRows, headerStyle); err != nil {
		return nil, err
	}

	if err := f.SetColWidth(dailySheet, "A", "A", 14); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
