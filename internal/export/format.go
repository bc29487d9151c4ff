package export

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/energy-bills/internal/billparse"
)

// Column headers, in report order.
var (
	SummaryHeaders = []string{"filename", "status", "from date", "to date", "kWh", "days count", "total"}
	RatesHeaders   = []string{"name", "hours type", "€/kWh", "consumption (kWh)", "taxes (€)", "tax (€)", "without TVA", "subscription"}
)

// absent values are empty cells
func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatDecimal(v *decimal.Decimal) string {
	if v == nil {
		return ""
	}
	return v.String()
}

// the unit price keeps its printed form ("0,1600"); the decimal is the fallback
func formatUnitPrice(r billparse.RatePeriodRow) string {
	if r.UnitPriceText != "" {
		return r.UnitPriceText
	}
	return formatDecimal(r.UnitPrice)
}

func formatDate(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format(billparse.DateLayout)
}

// SummaryRecord renders one summary row in SummaryHeaders order.
func SummaryRecord(r billparse.SummaryRow) []string {
	return []string{
		r.DocumentName,
		string(r.Status),
		formatDate(r.PeriodStart),
		formatDate(r.PeriodEnd),
		formatInt(r.ConsumptionKWh),
		formatInt(r.PeriodDays),
		formatDecimal(r.TotalAmount),
	}
}

// RateRecord renders one rate-period row in RatesHeaders order.
func RateRecord(r billparse.RatePeriodRow) []string {
	return []string{
		r.DocumentName,
		r.RateType.Label(),
		formatUnitPrice(r),
		formatInt(r.ConsumptionKWh),
		r.TaxesLine,
		formatDecimal(r.TaxAmount),
		formatDecimal(r.AmountExclTax),
		formatDecimal(r.SubscriptionFee),
	}
}
