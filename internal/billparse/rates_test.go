package billparse

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/energy-bills/constants"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestExtractRatePeriods_BothRates(t *testing.T) {
	t.Parallel()

	// "Montant hors TVA" in mixed case still yields the pre-tax amount: the amount
	// rule is case-insensitive like its marker. A case-sensitive rule would leave it absent.
	lines := []string{
		"  Heures creuses 01/12/2022 350 0,1615 56,53 €  ",
		"HEURES PLEINES (estimé ) 1 1 204 0,2068 249,00 €",
		"TAXES ET CONTRIBUTIONS ... -3,21 €",
		"Montant hors TVA 1 234,56 €",
		"Abonnement 6 kVA 12,34 €",
	}

	rows, charges, errs := ExtractRatePeriods(lines, "facture_1.pdf")
	require.Empty(t, errs)
	require.Len(t, rows, 2)

	off, peak := rows[0], rows[1]
	assert.Equal(t, constants.OffPeak, off.RateType)
	assert.Equal(t, constants.Peak, peak.RateType)
	assert.Equal(t, "facture_1.pdf", off.DocumentName)

	require.NotNil(t, off.UnitPrice)
	assert.True(t, off.UnitPrice.Equal(dec("0.1615")))
	assert.Equal(t, "0,1615", off.UnitPriceText)
	require.NotNil(t, off.ConsumptionKWh)
	assert.Equal(t, 350, *off.ConsumptionKWh)

	require.NotNil(t, peak.UnitPrice)
	assert.True(t, peak.UnitPrice.Equal(dec("0.2068")))
	require.NotNil(t, peak.ConsumptionKWh)
	assert.Equal(t, 1204, *peak.ConsumptionKWh)

	for _, r := range rows {
		assert.Equal(t, "TAXES ET CONTRIBUTIONS ... -3,21 €", r.TaxesLine)
		require.NotNil(t, r.TaxAmount)
		assert.True(t, r.TaxAmount.Equal(dec("-3.21")))
		require.NotNil(t, r.AmountExclTax)
		assert.True(t, r.AmountExclTax.Equal(dec("1234.56")))
		require.NotNil(t, r.SubscriptionFee)
		assert.True(t, r.SubscriptionFee.Equal(dec("12.34")))
	}
	assert.Equal(t, off.TaxesLine, charges.TaxesLine)
}

func TestExtractRatePeriods_OffPeakOnly(t *testing.T) {
	t.Parallel()

	rows, _, errs := ExtractRatePeriods([]string{
		"Heures creuses (relevé ) 1 2 345 0,1412",
		"Total à payer TTC : 45,67 €",
	}, "a.pdf")
	require.Empty(t, errs)
	require.Len(t, rows, 1)
	assert.Equal(t, constants.OffPeak, rows[0].RateType)
	require.NotNil(t, rows[0].ConsumptionKWh)
	assert.Equal(t, 2345, *rows[0].ConsumptionKWh)
	assert.Empty(t, rows[0].TaxesLine)
	assert.Nil(t, rows[0].TaxAmount)
}

func TestExtractRatePeriods_NoDetailLines(t *testing.T) {
	t.Parallel()

	rows, charges, errs := ExtractRatePeriods([]string{
		"TAXES ET CONTRIBUTIONS 4,10 €",
		"Consommations réelles du 01/01/2023 au 31/01/2023 : 350 kWh",
	}, "a.pdf")
	assert.Empty(t, errs)
	assert.Empty(t, rows)
	require.NotNil(t, charges.TaxAmount)
	assert.True(t, charges.TaxAmount.Equal(dec("4.10")))
}

func TestExtractRatePeriods_MissingAnchors(t *testing.T) {
	t.Parallel()

	rows, _, errs := ExtractRatePeriods([]string{
		"Heures creuses 350 0,1615",
		"Heures pleines sans prix",
	}, "a.pdf")
	require.Empty(t, errs)
	require.Len(t, rows, 2)

	require.NotNil(t, rows[0].UnitPrice)
	assert.Nil(t, rows[0].ConsumptionKWh)
	assert.Nil(t, rows[1].UnitPrice)
	assert.Nil(t, rows[1].ConsumptionKWh)
}

func TestExtractRatePeriods_EmptyQuantityIsFieldError(t *testing.T) {
	t.Parallel()

	rows, _, errs := ExtractRatePeriods([]string{"Heures creuses 01/12/2022  0,1615"}, "a.pdf")
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].ConsumptionKWh)
	require.NotNil(t, rows[0].UnitPrice)
	require.Len(t, errs, 1)
	assert.Equal(t, FieldRateKWh, errs[0].Field)
}

func TestExtractRatePeriods_LastLineWins(t *testing.T) {
	t.Parallel()

	rows, charges, errs := ExtractRatePeriods([]string{
		"Heures creuses 01/12/2022 100 0,1000",
		"Heures creuses 01/01/2023 200 0,2000",
		"TAXES ET CONTRIBUTIONS 5,00 €",
		"TAXES ET CONTRIBUTIONS (détail en annexe)",
		"taxes et contributions 9,99 €",
	}, "a.pdf")
	require.Empty(t, errs)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].ConsumptionKWh)
	assert.Equal(t, 200, *rows[0].ConsumptionKWh)

	// the lower-case line is not a taxes line; the amount of the first line survives the second.
	assert.Equal(t, "TAXES ET CONTRIBUTIONS (détail en annexe)", charges.TaxesLine)
	require.NotNil(t, charges.TaxAmount)
	assert.True(t, charges.TaxAmount.Equal(dec("5")))
}

func TestExtractRatePeriods_SubscriptionTakesTrailingNumber(t *testing.T) {
	t.Parallel()

	_, charges, errs := ExtractRatePeriods([]string{"ABONNEMENT mensuel : 9,87"}, "a.pdf")
	require.Empty(t, errs)
	require.NotNil(t, charges.SubscriptionFee)
	assert.True(t, charges.SubscriptionFee.Equal(dec("9.87")))
}

func TestExtractRatePeriods_UnitPriceKeepsPrintedForm(t *testing.T) {
	t.Parallel()

	rows, _, errs := ExtractRatePeriods([]string{
		"Heures creuses 01/12/2022 150 0,1600 24,00 €",
		"Heures pleines 01/12/2022 200 0,210 42,00 €",
	}, "a.pdf")
	require.Empty(t, errs)
	require.Len(t, rows, 2)

	assert.Equal(t, "0,1600", rows[0].UnitPriceText)
	require.NotNil(t, rows[0].UnitPrice)
	assert.True(t, rows[0].UnitPrice.Equal(dec("0.16")))
	assert.Equal(t, "0,210", rows[1].UnitPriceText)
	assert.True(t, rows[1].UnitPrice.Equal(dec("0.21")))
}
