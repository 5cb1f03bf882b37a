// Package export renders processed consumption tables as XLSX workbooks and PDF summaries.
package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"energy-consumption/internal/consumption/domain"
)

const (
	recordsSheet = "records"
	totalsSheet  = "annual_totals"
)

// BuildSeriesXLSX renders the processed table and its annual totals.
func BuildSeriesXLSX(period domain.Period, records []domain.EnrichedRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(totalsSheet); err != nil {
		return nil, err
	}

	header := make([]interface{}, 0, len(domain.EnrichedColumns))
	for _, col := range domain.EnrichedColumns {
		header = append(header, col)
	}
	if err := f.SetSheetRow(recordsSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, rec := range records {
		row := []interface{}{rec.Region, rec.Year, rec.Month, rec.Season, rec.Energy}
		if err := f.SetSheetRow(recordsSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}

	_ = f.SetCellValue(totalsSheet, "A1", "Period")
	_ = f.SetCellValue(totalsSheet, "B1", period.String())
	_ = f.SetCellValue(totalsSheet, "A3", domain.ColumnRegion)
	_ = f.SetCellValue(totalsSheet, "B3", domain.ColumnYear)
	_ = f.SetCellValue(totalsSheet, "C3", "Months")
	_ = f.SetCellValue(totalsSheet, "D3", domain.ColumnTotal)
	for i, total := range AnnualTotals(records) {
		row := i + 4
		_ = f.SetCellValue(totalsSheet, fmt.Sprintf("A%d", row), total.Region)
		_ = f.SetCellValue(totalsSheet, fmt.Sprintf("B%d", row), total.Year)
		_ = f.SetCellValue(totalsSheet, fmt.Sprintf("C%d", row), total.Months)
		_ = f.SetCellValue(totalsSheet, fmt.Sprintf("D%d", row), total.Energy)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildSeriesPDF renders a one-page summary with annual totals per region.
func BuildSeriesPDF(period domain.Period, records []domain.EnrichedRecord) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Electricity Consumption Summary")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s", period.String()))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Records: %d", len(records)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Region", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Year", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Months", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Energy", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, total := range AnnualTotals(records) {
		pdf.CellFormat(60, 6, total.Region, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", total.Year), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", total.Months), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, fmt.Sprintf("%.3f", total.Energy), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
