package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/energy-bills/internal/billparse"
	"github.com/joseph-ayodele/energy-bills/internal/common"
	"github.com/joseph-ayodele/energy-bills/internal/export"
	"github.com/joseph-ayodele/energy-bills/internal/ingest"
	"github.com/joseph-ayodele/energy-bills/internal/metrics"
	"github.com/joseph-ayodele/energy-bills/internal/textextract"
)

// Config selects the documents of a folder.
type Config struct {
	Extension string
	Excluded  []string
	HashFiles bool // compute SHA-256 per document (archive key)
}

// Assembler coordinates text extraction then field extraction for every document of a folder.
type Assembler struct {
	logger    *slog.Logger
	cfg       Config
	extractor textextract.TextExtractor
	parser    *billparse.Parser
	recorder  *metrics.Recorder
}

func NewAssembler(
	logger *slog.Logger,
	cfg Config,
	extractor textextract.TextExtractor,
	recorder *metrics.Recorder,
) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewRecorder()
	}
	return &Assembler{
		logger:    logger,
		cfg:       cfg,
		extractor: extractor,
		parser:    billparse.NewParser(logger, recorder),
		recorder:  recorder,
	}
}

// ProcessFolder collects every document of folder and writes the summary and
// rate-period CSV reports. Only an unreadable folder or an unwritable report is
// an error; document failures are logged and folded into the report.
func (a *Assembler) ProcessFolder(ctx context.Context, folder, summaryCSV, ratesCSV string) (Report, error) {
	rep, err := a.Collect(ctx, folder)
	if err != nil {
		return rep, err
	}
	if err := export.WriteSummaryFile(summaryCSV, rep.Summaries, a.logger); err != nil {
		return rep, fmt.Errorf("summary report: %w", err)
	}
	if err := export.WriteRatesFile(ratesCSV, rep.Rates, a.logger); err != nil {
		return rep, fmt.Errorf("rates report: %w", err)
	}
	return rep, nil
}

// Collect processes the documents of folder sequentially, in listing order.
func (a *Assembler) Collect(ctx context.Context, folder string) (Report, error) {
	var rep Report

	docs, dirStats, err := ingest.ListDocuments(folder, a.cfg.Extension, a.cfg.Excluded)
	if err != nil {
		a.logger.ErrorContext(ctx, "report.folder.failed", "folder", folder, "error", err)
		return rep, err
	}
	rep.Stats.Scanned = dirStats.Scanned
	rep.Stats.Excluded = dirStats.Excluded
	a.logger.InfoContext(ctx, "report.folder.listed",
		"run_id", common.RunIDFromContext(ctx),
		"folder", folder,
		"scanned", dirStats.Scanned,
		"matched", dirStats.Matched,
		"excluded", dirStats.Excluded,
	)

	for _, doc := range docs {
		summary, rates, res := a.ProcessDocument(ctx, doc)
		rep.Summaries = append(rep.Summaries, summary)
		rep.Rates = append(rep.Rates, rates...)
		rep.Stats.Processed++
		rep.Stats.RateRows += uint32(len(rates))
		if res.Err != "" {
			rep.Stats.Failed++
		}
		rep.Stats.Documents = append(rep.Stats.Documents, res)
	}
	return rep, nil
}

// ProcessDocument extracts one document. The summary row is always returned, with
// every field absent when the text could not be extracted; rate rows are then empty.
func (a *Assembler) ProcessDocument(ctx context.Context, doc ingest.Document) (billparse.SummaryRow, []billparse.RatePeriodRow, DocumentResult) {
	start := time.Now()
	ctx = common.WithDocument(ctx, doc.Name)
	summary := billparse.SummaryRow{DocumentName: doc.Name}
	res := DocumentResult{Name: doc.Name, Path: doc.Path}

	if a.cfg.HashFiles {
		if h, err := ingest.HashFile(doc.Path); err == nil {
			res.HashHex = h
		} else {
			a.logger.WarnContext(ctx, "report.document.hash_failed", "file", doc.Name, "error", err)
		}
	}

	text, err := a.extractor.Extract(ctx, doc.Path)
	if err != nil {
		err = fmt.Errorf("%w: %v", common.ErrDocumentRead, err)
		a.logger.ErrorContext(ctx, "report.document.read_failed",
			"run_id", common.RunIDFromContext(ctx),
			"file", doc.Name,
			"error", err,
		)
		a.recorder.DocumentReadFailed()
		res.Err = err.Error()
		return summary, nil, res
	}
	res.Method = text.Method

	summary.BillingSummary = a.parser.Summary(ctx, text.Text())
	rates := a.parser.RatePeriods(ctx, text.Lines(), doc.Name)
	for _, r := range rates {
		a.recorder.RateRow(r.RateType)
	}
	a.recorder.DocumentProcessed()

	a.logger.InfoContext(ctx, "report.document.ok",
		"run_id", common.RunIDFromContext(ctx),
		"file", doc.Name,
		"method", text.Method,
		"pages", len(text.Pages),
		"status", string(summary.Status),
		"rate_rows", len(rates),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return summary, rates, res
}
