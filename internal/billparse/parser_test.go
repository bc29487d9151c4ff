package billparse

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/energy-bills/internal/common"
)

type recordingObserver struct {
	docs   []string
	fields []string
}

func (o *recordingObserver) FieldParseFailed(document string, err *FieldError) {
	o.docs = append(o.docs, document)
	o.fields = append(o.fields, err.Field)
}

func TestParser_ReportsFieldFailures(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	p := NewParser(slog.New(slog.NewTextHandler(io.Discard, nil)), obs)
	ctx := common.WithDocument(context.Background(), "bad.pdf")

	summary := p.Summary(ctx, "Consommations réelles du 01/13/2023 au 31/01/2023 : 350 kWh\nTotal TTC en votre faveur : 1.2.3 €")
	assert.Nil(t, summary.PeriodStart)
	assert.Nil(t, summary.TotalAmount)

	rows := p.RatePeriods(ctx, []string{"Heures pleines 01/01/2023  0,2068"}, "bad.pdf")
	require.Len(t, rows, 1)

	assert.Equal(t, []string{FieldPeriod, FieldTotal, FieldRateKWh}, obs.fields)
	assert.Equal(t, []string{"bad.pdf", "bad.pdf", "bad.pdf"}, obs.docs)
}

func TestParser_PatternNotFoundIsSilent(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	p := NewParser(nil, obs)

	_ = p.Summary(context.Background(), "nothing to see")
	_ = p.RatePeriods(context.Background(), []string{"nothing", "to see"}, "x.pdf")
	assert.Empty(t, obs.fields)
}
