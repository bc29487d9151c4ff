package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/energy-bills/internal/billparse"
)

const (
	SummarySheet = "consumption"
	RatesSheet   = "hours"
)

// BuildWorkbook returns an XLSX workbook with one sheet per report.
// Quantities and amounts are typed as numbers; absent values stay empty.
func BuildWorkbook(summaries []billparse.SummaryRow, rates []billparse.RatePeriodRow) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(RatesSheet); err != nil {
		return nil, err
	}

	writeHeader(f, SummarySheet, SummaryHeaders)
	for i, r := range summaries {
		row := i + 2
		write(f, SummarySheet, 1, row, r.DocumentName)
		write(f, SummarySheet, 2, row, string(r.Status))
		write(f, SummarySheet, 3, row, formatDate(r.PeriodStart))
		write(f, SummarySheet, 4, row, formatDate(r.PeriodEnd))
		writeInt(f, SummarySheet, 5, row, r.ConsumptionKWh)
		writeInt(f, SummarySheet, 6, row, r.PeriodDays)
		writeDecimal(f, SummarySheet, 7, row, r.TotalAmount)
	}

	writeHeader(f, RatesSheet, RatesHeaders)
	for i, r := range rates {
		row := i + 2
		write(f, RatesSheet, 1, row, r.DocumentName)
		write(f, RatesSheet, 2, row, r.RateType.Label())
		writeDecimal(f, RatesSheet, 3, row, r.UnitPrice)
		writeInt(f, RatesSheet, 4, row, r.ConsumptionKWh)
		write(f, RatesSheet, 5, row, r.TaxesLine)
		writeDecimal(f, RatesSheet, 6, row, r.TaxAmount)
		writeDecimal(f, RatesSheet, 7, row, r.AmountExclTax)
		writeDecimal(f, RatesSheet, 8, row, r.SubscriptionFee)
	}

	// Widen a few columns
	_ = f.SetColWidth(SummarySheet, "A", "A", 28) // filename
	_ = f.SetColWidth(SummarySheet, "C", "D", 12) // dates
	_ = f.SetColWidth(RatesSheet, "A", "A", 28)   // name
	_ = f.SetColWidth(RatesSheet, "B", "B", 16)   // hours type
	_ = f.SetColWidth(RatesSheet, "E", "E", 60)   // raw taxes line

	if idx, err := f.GetSheetIndex(SummarySheet); err == nil {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

// WriteWorkbook builds the workbook and saves it at path.
func WriteWorkbook(path string, summaries []billparse.SummaryRow, rates []billparse.RatePeriodRow, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f, err := BuildWorkbook(summaries, rates)
	if err != nil {
		return fmt.Errorf("xlsx build: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("xlsx close failed", "error", err)
		}
	}()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("export.xlsx.ok",
		"path", path,
		"summary_rows", len(summaries),
		"rate_rows", len(rates),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		write(f, sheet, i+1, 1, h)
	}
}

func write(f *excelize.File, sheet string, col, row int, v any) {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	_ = f.SetCellValue(sheet, cell, v)
}

func writeInt(f *excelize.File, sheet string, col, row int, v *int) {
	if v != nil {
		write(f, sheet, col, row, *v)
	}
}

func writeDecimal(f *excelize.File, sheet string, col, row int, v *decimal.Decimal) {
	if v != nil {
		write(f, sheet, col, row, v.InexactFloat64())
	}
}
