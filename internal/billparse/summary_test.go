package billparse

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/energy-bills/constants"
	"github.com/joseph-ayodele/energy-bills/internal/common"
)

func TestExtractSummary_NoDeclaration(t *testing.T) {
	t.Parallel()

	got, errs := ExtractSummary("Votre facture d'électricité\nMerci de votre confiance")
	assert.Empty(t, errs)
	assert.Equal(t, BillingSummary{}, got)
	assert.Equal(t, constants.StatusUnknown, got.Status)
}

func TestExtractSummary_RealReadingAndTotal(t *testing.T) {
	t.Parallel()

	text := "Vos consommations\n" +
		"Consommations réelles du 01/01/2023 au 31/01/2023 : 350 kWh\n" +
		"Total à payer TTC : 45,67 €\n"

	got, errs := ExtractSummary(text)
	require.Empty(t, errs)

	assert.Equal(t, constants.StatusReal, got.Status)
	require.NotNil(t, got.PeriodStart)
	require.NotNil(t, got.PeriodEnd)
	assert.Equal(t, "01/01/2023", got.PeriodStart.Format(DateLayout))
	assert.Equal(t, "31/01/2023", got.PeriodEnd.Format(DateLayout))
	require.NotNil(t, got.ConsumptionKWh)
	assert.Equal(t, 350, *got.ConsumptionKWh)
	require.NotNil(t, got.PeriodDays)
	assert.Equal(t, 30, *got.PeriodDays)
	require.NotNil(t, got.TotalAmount)
	assert.Equal(t, "45.67", got.TotalAmount.String())
}

func TestExtractSummary_EstimatedGroupedQuantity(t *testing.T) {
	t.Parallel()

	got, errs := ExtractSummary("CONSOMMATIONS ESTIMÉES du 15/03/2023 au 14/05/2023: 1 234 kWh")
	require.Empty(t, errs)

	assert.Equal(t, constants.StatusEstimated, got.Status)
	require.NotNil(t, got.ConsumptionKWh)
	assert.Equal(t, 1234, *got.ConsumptionKWh)
	require.NotNil(t, got.PeriodDays)
	assert.Equal(t, 60, *got.PeriodDays)
	assert.Nil(t, got.TotalAmount)
}

func TestExtractSummary_ReversedPeriodIsNegative(t *testing.T) {
	t.Parallel()

	got, errs := ExtractSummary("Consommations réelles du 31/01/2023 au 01/01/2023 : 10 kWh")
	require.Empty(t, errs)
	require.NotNil(t, got.PeriodDays)
	assert.Equal(t, -30, *got.PeriodDays)
}

func TestDaysBetween(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to string
		want     int
	}{
		{"01/01/2023", "31/01/2023", 30},
		{"28/02/2024", "01/03/2024", 2},
		{"01/01/1700", "01/01/2023", 117972},
		{"01/01/2023", "01/01/1700", -117972},
		{"01/01/0001", "31/12/9999", 3652058},
	}
	for _, tt := range tests {
		text := "Consommations réelles du " + tt.from + " au " + tt.to + " : 10 kWh"
		got, errs := ExtractSummary(text)
		require.Empty(t, errs, text)
		require.NotNil(t, got.PeriodDays, text)
		assert.Equal(t, tt.want, *got.PeriodDays, text)
	}
}

func TestExtractSummary_BadDateDegradesPeriodOnly(t *testing.T) {
	t.Parallel()

	text := "Consommations réelles du 32/01/2023 au 28/02/2023 : 350 kWh\nTotal à payer TTC : 12,00 €"
	got, errs := ExtractSummary(text)

	require.Len(t, errs, 1)
	assert.Equal(t, FieldPeriod, errs[0].Field)
	assert.True(t, errors.Is(errs[0], common.ErrFieldParse))

	assert.Equal(t, constants.StatusReal, got.Status)
	assert.Nil(t, got.PeriodStart)
	assert.Nil(t, got.PeriodEnd)
	assert.Nil(t, got.ConsumptionKWh)
	assert.Nil(t, got.PeriodDays)
	require.NotNil(t, got.TotalAmount)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("12")))
}

func TestExtractSummary_Total(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		want    string // empty means absent
		wantErr bool
	}{
		{"owed", "Total à payer TTC : 45,67 €", "45.67", false},
		{"owed on next line", "Total à payer TTC\n: 1 045,10 €", "1045.1", false},
		{"credit", "Total TTC en votre faveur : 12,30 €", "-12.3", false},
		{"credit without colon", "TOTAL TTC EN VOTRE FAVEUR 8,00 €", "-8", false},
		{"dot grouped is malformed", "Total à payer TTC : 1.234,56 €", "", true},
		{"no currency", "Total à payer TTC : 45,67 EUR", "", false},
		{"absent", "Montant dû : 45,67 €", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errs := ExtractSummary(tt.text)
			if tt.wantErr {
				require.Len(t, errs, 1)
				assert.Equal(t, FieldTotal, errs[0].Field)
			} else {
				assert.Empty(t, errs)
			}
			if tt.want == "" {
				assert.Nil(t, got.TotalAmount)
				return
			}
			require.NotNil(t, got.TotalAmount)
			assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString(tt.want)), "got %s", got.TotalAmount)
		})
	}
}

func TestParseGroupedInt(t *testing.T) {
	t.Parallel()

	a, err := parseGroupedInt("1 234")
	require.NoError(t, err)
	b, err := parseGroupedInt("1234")
	require.NoError(t, err)
	assert.Equal(t, b, a)

	_, err = parseGroupedInt("   ")
	assert.Error(t, err)
}
