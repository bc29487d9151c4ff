package textextract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/joseph-ayodele/energy-bills/constants"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "fra"
	TessdataDir   string
	DPI           int // rasterization DPI for scanned PDFs, default 300
	MaxPages      int // 0 = no limit

	Layout       bool // pass -layout to pdftotext
	OCRFallback  bool // rasterize + tesseract when the text layer is (nearly) empty
	MinTextChars int  // non-space characters below which the text layer counts as empty

	CommandTimeout time.Duration // per external command; 0 = none
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return NewExtractorWithRunner(cfg, execRunner{logger: logger, timeout: cfg.CommandTimeout}, logger)
}

// NewExtractorWithRunner is NewExtractor with an explicit command runner.
func NewExtractorWithRunner(cfg Config, runner Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "fra"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, runner: runner, logger: logger}
}

// Extract reads the text layer of a PDF, falling back to OCR for scanned documents when enabled.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	if ext != constants.NormalizeExt(constants.DocumentExt) {
		e.logger.Error("unsupported document extension", "path", path, "extension", ext)
		return ExtractionResult{}, fmt.Errorf("unsupported extension: %q", ext)
	}
	e.logger.Debug("starting text extraction", "path", path)

	pages, warns, err := e.pdfToText(ctx, path)
	if err != nil {
		return ExtractionResult{Warnings: warns}, fmt.Errorf("pdftotext %s: %w", filepath.Base(path), err)
	}
	res := ExtractionResult{
		Pages:    normalizePages(pages),
		Method:   "pdf-text",
		Warnings: warns,
	}

	if e.cfg.OCRFallback && countNonSpace(res.Pages) < e.cfg.MinTextChars {
		e.logger.Info("text layer too small, falling back to ocr", "path", path, "chars", countNonSpace(res.Pages))
		ocrPages, ocrWarns, err := e.pdfToOCR(ctx, path)
		res.Warnings = append(res.Warnings, ocrWarns...)
		if err != nil {
			res.Duration = time.Since(start)
			return res, fmt.Errorf("ocr %s: %w", filepath.Base(path), err)
		}
		res.Pages = normalizePages(ocrPages)
		res.Method = "pdf-ocr"
		res.Language = e.cfg.TesseractLang
	}

	res.Duration = time.Since(start)
	return res, nil
}

func normalizePages(pages []string) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = Normalize(p)
	}
	return out
}

func countNonSpace(pages []string) int {
	n := 0
	for _, p := range pages {
		for _, r := range p {
			if !unicode.IsSpace(r) {
				n++
			}
		}
	}
	return n
}

// splitPages splits pdftotext output on form feeds; the trailing empty page is dropped.
func splitPages(text string) []string {
	pages := strings.Split(text, "\f")
	if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	return pages
}
