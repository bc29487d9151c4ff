package billparse

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/energy-bills/constants"
)

const secondsPerDay = 24 * 60 * 60

var (
	reConsumption = regexp.MustCompile(`(?i)Consommations (réelles|estimées) du (\d{2}/\d{2}/\d{4}) au (\d{2}/\d{2}/\d{4}) ?: ?([\d\s]+) kWh`)
	reTotal       = regexp.MustCompile(`(?i)(Total à payer TTC|Total TTC en votre faveur)\s*:?\s*([\d\s,.]+)\s*€`)
	reCreditLabel = regexp.MustCompile(`(?i)en votre faveur`)
)

// ExtractSummary applies the consumption-declaration and total rules to the whole text.
// The two rules are independent: either, neither or both may yield values.
func ExtractSummary(text string) (BillingSummary, []*FieldError) {
	var (
		out  BillingSummary
		errs []*FieldError
	)

	c, err := consumptionRule(text)
	if err != nil {
		errs = append(errs, err)
	}
	out.Status = c.status
	out.PeriodStart, out.PeriodEnd = c.from, c.to
	out.ConsumptionKWh, out.PeriodDays = c.kwh, c.days

	total, err := totalRule(text)
	if err != nil {
		errs = append(errs, err)
	}
	out.TotalAmount = total

	return out, errs
}

type consumption struct {
	status   constants.ConsumptionStatus
	from, to *time.Time
	kwh      *int
	days     *int
}

// consumptionRule reads "Consommations réelles|estimées du D au D : N kWh".
// The status survives a conversion failure; dates, quantity and day count do not.
func consumptionRule(text string) (consumption, *FieldError) {
	m := reConsumption.FindStringSubmatch(text)
	if m == nil {
		return consumption{}, nil
	}
	out := consumption{status: constants.StatusFromLabel(m[1])}

	from, err := time.Parse(DateLayout, m[2])
	if err != nil {
		return out, &FieldError{Field: FieldPeriod, Raw: m[2], Err: err}
	}
	to, err := time.Parse(DateLayout, m[3])
	if err != nil {
		return out, &FieldError{Field: FieldPeriod, Raw: m[3], Err: err}
	}
	kwh, err := parseGroupedInt(m[4])
	if err != nil {
		return out, &FieldError{Field: FieldPeriod, Raw: m[4], Err: err}
	}

	out.from, out.to = &from, &to
	out.kwh = intPtr(kwh)
	out.days = intPtr(DaysBetween(from, to))
	return out, nil
}

// totalRule reads "Total à payer TTC : X €" or "Total TTC en votre faveur : X €".
// A credit in the customer's favor is returned negative.
func totalRule(text string) (*decimal.Decimal, *FieldError) {
	m := reTotal.FindStringSubmatch(text)
	if m == nil {
		return nil, nil
	}
	v, err := parseCommaDecimal(m[2])
	if err != nil {
		return nil, &FieldError{Field: FieldTotal, Raw: m[2], Err: err}
	}
	if reCreditLabel.MatchString(m[1]) {
		v = v.Neg()
	}
	return decimalPtr(v), nil
}

// DaysBetween is the whole-day difference end - start; negative when end precedes start.
// Both dates are UTC midnights, so Unix seconds divide exactly; time.Duration would
// saturate past ~292 years.
func DaysBetween(start, end time.Time) int {
	return int((end.Unix() - start.Unix()) / secondsPerDay)
}
