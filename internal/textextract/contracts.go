package textextract

import (
	"context"
	"strings"
	"time"
)

// TextExtractor turns a document on disk into page texts.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (ExtractionResult, error)
}

type ExtractionResult struct {
	Pages    []string
	Method   string // "pdf-text" | "pdf-ocr"
	Language string
	Duration time.Duration
	Warnings []string
}

// Text joins the pages into one blob, one page after the other.
func (r ExtractionResult) Text() string {
	return strings.Join(r.Pages, "\n")
}

// Lines returns every line of every page, in order.
func (r ExtractionResult) Lines() []string {
	var lines []string
	for _, p := range r.Pages {
		lines = append(lines, strings.Split(p, "\n")...)
	}
	return lines
}
