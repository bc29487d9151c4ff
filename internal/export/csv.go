package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/energy-bills/internal/billparse"
)

// WriteSummaryCSV writes the header then one record per summary row.
func WriteSummaryCSV(w io.Writer, rows []billparse.SummaryRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, SummaryRecord(r))
	}
	return writeCSV(w, SummaryHeaders, records)
}

// WriteRatesCSV writes the header then one record per rate-period row.
func WriteRatesCSV(w io.Writer, rows []billparse.RatePeriodRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, RateRecord(r))
	}
	return writeCSV(w, RatesHeaders, records)
}

func writeCSV(w io.Writer, header []string, records [][]string) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("csv rows: %w", err)
	}
	return nil
}

// WriteSummaryFile creates (or truncates) path and writes the summary report into it.
func WriteSummaryFile(path string, rows []billparse.SummaryRow, logger *slog.Logger) error {
	return writeFile(path, len(rows), logger, func(w io.Writer) error { return WriteSummaryCSV(w, rows) })
}

// WriteRatesFile creates (or truncates) path and writes the rate-period report into it.
func WriteRatesFile(path string, rows []billparse.RatePeriodRow, logger *slog.Logger) error {
	return writeFile(path, len(rows), logger, func(w io.Writer) error { return WriteRatesCSV(w, rows) })
}

func writeFile(path string, n int, logger *slog.Logger, write func(io.Writer) error) (err error) {
	if logger == nil {
		logger = slog.Default()
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Info("export.csv.ok", "path", path, "rows", n)
	return nil
}
