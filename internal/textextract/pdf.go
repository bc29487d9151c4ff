package textextract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

func (e *Extractor) pdfToText(ctx context.Context, path string) (pages []string, warnings []string, err error) {
	// pdftotext [-layout] -enc UTF-8 -eol unix <path> -
	args := []string{"-enc", "UTF-8", "-eol", "unix", path, "-"}
	if e.cfg.Layout {
		args = append([]string{"-layout"}, args...)
	}
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, args...)
	if err != nil {
		return nil, []string{string(errb)}, err
	}
	if len(errb) > 0 {
		warnings = append(warnings, string(errb))
	}
	return splitPages(string(out)), warnings, nil
}

func (e *Extractor) pdfToOCR(ctx context.Context, path string) (pages []string, warnings []string, err error) {
	tmpDir, err := os.MkdirTemp("", "bills-pp-*")
	if err != nil {
		return nil, nil, err
	}
	defer func(dir string) {
		if err := os.RemoveAll(dir); err != nil {
			e.logger.Warn("failed to remove temp dir", "dir", dir, "error", err)
		}
	}(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return nil, []string{string(errb)}, err
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, []string{"pdftoppm produced no images"}, fmt.Errorf("no pages rendered")
	}

	for _, img := range matches {
		txt, w, err := e.tesseract(ctx, img)
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		pages = append(pages, txt)
		warnings = append(warnings, w...)
	}
	if len(pages) == 0 {
		return nil, warnings, fmt.Errorf("tesseract failed on every page")
	}
	return pages, warnings, nil
}

func (e *Extractor) tesseract(ctx context.Context, img string) (string, []string, error) {
	args := []string{img, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}

	// minor cleanup of obvious line noise
	return reBoxNoise.ReplaceAllString(string(out), ""), nil, nil
}
