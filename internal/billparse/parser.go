package billparse

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/energy-bills/internal/common"
)

// Parser runs the extraction rules and reports conversion failures through
// the logger and an optional Observer.
type Parser struct {
	logger   *slog.Logger
	observer Observer
}

func NewParser(logger *slog.Logger, observer Observer) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger, observer: observer}
}

// Summary extracts the consumption and total block of a document's text.
func (p *Parser) Summary(ctx context.Context, text string) BillingSummary {
	out, errs := ExtractSummary(text)
	p.report(ctx, errs)
	return out
}

// RatePeriods extracts the off-peak/peak rows of a document's lines.
func (p *Parser) RatePeriods(ctx context.Context, lines []string, documentName string) []RatePeriodRow {
	rows, _, errs := ExtractRatePeriods(lines, documentName)
	p.report(ctx, errs)
	return rows
}

func (p *Parser) report(ctx context.Context, errs []*FieldError) {
	doc := common.DocumentFromContext(ctx)
	for _, fe := range errs {
		p.logger.WarnContext(ctx, "billparse.field.failed",
			"file", doc,
			"field", fe.Field,
			"raw", fe.Raw,
			"error", fe.Err,
		)
		if p.observer != nil {
			p.observer.FieldParseFailed(doc, fe)
		}
	}
}
