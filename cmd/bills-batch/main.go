package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/energy-bills/internal/common"
	"github.com/joseph-ayodele/energy-bills/internal/export"
	"github.com/joseph-ayodele/energy-bills/internal/metrics"
	"github.com/joseph-ayodele/energy-bills/internal/report"
	repo "github.com/joseph-ayodele/energy-bills/internal/repository"
	"github.com/joseph-ayodele/energy-bills/internal/textextract"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	cfg, err := common.LoadConfig()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runID := uuid.New()
	ctx = common.WithRunID(ctx, runID)
	started := time.Now()

	extractor := textextract.NewExtractor(textextract.Config{
		Pdftotext:     cfg.TextExtract.Pdftotext,
		Pdftoppm:      cfg.TextExtract.Pdftoppm,
		Tesseract:     cfg.TextExtract.Tesseract,
		TesseractLang: cfg.TextExtract.TesseractLang,
		TessdataDir:   cfg.TextExtract.TessdataDir,
		DPI:           cfg.TextExtract.DPI,
		Layout:        cfg.TextExtract.Layout,
		OCRFallback:   cfg.TextExtract.OCRFallback,
		MinTextChars:  cfg.TextExtract.MinTextChars,

		CommandTimeout: cfg.TextExtract.CommandTimeout,
	}, logger)
	recorder := metrics.NewRecorder()

	assembler := report.NewAssembler(logger, report.Config{
		Extension: cfg.Input.Extension,
		Excluded:  cfg.Input.Excluded,
		HashFiles: cfg.Archive.DSN != "",
	}, extractor, recorder)

	logger.Info("batch.start", "run_id", runID, "folder", cfg.Input.Folder)
	rep, err := assembler.ProcessFolder(ctx, cfg.Input.Folder, cfg.Output.SummaryCSV, cfg.Output.RatesCSV)
	if err != nil {
		logger.Error("batch.failed", "run_id", runID, "code", common.ErrorCode(err), "error", err)
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Output.XLSX != "" {
		if err := export.WriteWorkbook(cfg.Output.XLSX, rep.Summaries, rep.Rates, logger); err != nil {
			logger.Error("batch.xlsx.failed", "path", cfg.Output.XLSX, "error", err)
		}
	}

	finished := time.Now()
	if cfg.Archive.DSN != "" {
		archiveRun(ctx, cfg, repo.NewRunRecord(runID, cfg.Input.Folder, started, finished, rep), rep, logger)
	}

	recorder.RunFinished(finished.Sub(started), finished)
	if cfg.Metrics.TextfilePath != "" {
		if err := recorder.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			logger.Error("batch.metrics.failed", "path", cfg.Metrics.TextfilePath, "error", err)
		}
	}

	logger.Info("batch.complete",
		"run_id", runID,
		"scanned", rep.Stats.Scanned,
		"processed", rep.Stats.Processed,
		"excluded", rep.Stats.Excluded,
		"failed", rep.Stats.Failed,
		"rate_rows", rep.Stats.RateRows,
		"elapsed_ms", finished.Sub(started).Milliseconds(),
	)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Documents processed: %d\n", rep.Stats.Processed)
	fmt.Printf("- Read failures: %d\n", rep.Stats.Failed)
	fmt.Printf("- Summary: %s\n", cfg.Output.SummaryCSV)
	fmt.Printf("- Rate periods: %s\n", cfg.Output.RatesCSV)
}

// archiveRun stores the run; failures are logged only.
func archiveRun(ctx context.Context, cfg *common.Config, run repo.RunRecord, rep report.Report, logger *slog.Logger) {
	db, err := repo.Open(ctx, repo.Config{
		DSN:             cfg.Archive.DSN,
		MaxConns:        cfg.Archive.MaxConns,
		MinConns:        cfg.Archive.MinConns,
		MaxConnLifetime: cfg.Archive.MaxConnLifetime,
		DialTimeout:     cfg.Archive.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("batch.archive.failed", "run_id", run.ID, "error", err)
		return
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Error("batch.archive.failed", "run_id", run.ID, "error", err)
		return
	}
	if err := repo.NewRunRepository(db).SaveRun(ctx, run, rep); err != nil {
		logger.Error("batch.archive.failed", "run_id", run.ID, "error", err)
	}
}
