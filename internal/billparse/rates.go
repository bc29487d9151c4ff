package billparse

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/energy-bills/constants"
)

// Line markers. The rate and amount markers are compared case-insensitively,
// the taxes marker is compared as printed.
const (
	markerOffPeak      = "heures creuses"
	markerPeak         = "heures pleines"
	markerTaxes        = "TAXES ET CONTRIBUTIONS"
	markerAmountExcl   = "MONTANT HORS TVA"
	markerSubscription = "ABONNEMENT"
)

var (
	reUnitPrice = regexp.MustCompile(`0,\d{3,4}`)
	// quantity between an index anchor (metered "(relevé ) 1", estimated "(estimé ) 1", or a
	// d/m/y date) and the unit price that follows it.
	reRateKWh      = regexp.MustCompile(`(?:\(relevé \) 1|\(estimé \) 1|\d{2}/\d{2}/\d{4})\s+([\d ]+)\s*0,`)
	reTaxAmount    = regexp.MustCompile(`(-?\d+,\d+)\s*€`)
	reAmountExcl   = regexp.MustCompile(`(?i)MONTANT HORS TVA.*?([\d\s,]+)\s*€?$`)
	reSubscription = regexp.MustCompile(`(?i)ABONNEMENT.*?([\d\s,]+)\s*€?$`)
)

// ExtractRatePeriods scans the lines of one document once and returns a row per
// rate type whose detail line was found (off-peak first), together with the
// document-wide charges copied into every row.
//
// Charges are last-line-wins. A marker line whose amount pattern does not match
// leaves the previous capture in place; one whose amount fails to convert clears it.
func ExtractRatePeriods(lines []string, documentName string) ([]RatePeriodRow, DocumentCharges, []*FieldError) {
	var (
		offPeakLine, peakLine string
		charges               DocumentCharges
		errs                  []*FieldError
	)

	for _, line := range lines {
		clean := strings.TrimSpace(line)
		lower := strings.ToLower(clean)
		upper := strings.ToUpper(clean)

		if strings.HasPrefix(lower, markerOffPeak) {
			offPeakLine = clean
		} else if strings.HasPrefix(lower, markerPeak) {
			peakLine = clean
		}

		if strings.HasPrefix(clean, markerTaxes) {
			charges.TaxesLine = clean
			if v, err := taxAmountRule(clean); err != nil {
				errs = append(errs, err)
				charges.TaxAmount = nil
			} else if v != nil {
				charges.TaxAmount = v
			}
		}

		if strings.Contains(upper, markerAmountExcl) {
			if v, err := trailingAmountRule(reAmountExcl, FieldAmountExcl, clean); err != nil {
				errs = append(errs, err)
				charges.AmountExclTax = nil
			} else if v != nil {
				charges.AmountExclTax = v
			}
		}

		if strings.Contains(upper, markerSubscription) {
			if v, err := trailingAmountRule(reSubscription, FieldSubscription, clean); err != nil {
				errs = append(errs, err)
				charges.SubscriptionFee = nil
			} else if v != nil {
				charges.SubscriptionFee = v
			}
		}
	}

	var rows []RatePeriodRow
	for _, rt := range constants.RateTypes() {
		line := offPeakLine
		if rt == constants.Peak {
			line = peakLine
		}
		if line == "" {
			continue
		}
		row := RatePeriodRow{
			DocumentName:    documentName,
			RateType:        rt,
			TaxesLine:       charges.TaxesLine,
			TaxAmount:       charges.TaxAmount,
			AmountExclTax:   charges.AmountExclTax,
			SubscriptionFee: charges.SubscriptionFee,
		}
		var err *FieldError
		if row.UnitPrice, row.UnitPriceText, err = unitPriceRule(line); err != nil {
			errs = append(errs, err)
		}
		if row.ConsumptionKWh, err = rateConsumptionRule(line); err != nil {
			errs = append(errs, err)
		}
		rows = append(rows, row)
	}
	return rows, charges, errs
}

// unitPriceRule returns the first "0,ddd" or "0,dddd" price of a detail line, parsed
// and as printed. The printed form is kept even when parsing fails.
func unitPriceRule(line string) (*decimal.Decimal, string, *FieldError) {
	raw := reUnitPrice.FindString(line)
	if raw == "" {
		return nil, "", nil
	}
	v, err := parseCommaDecimal(raw)
	if err != nil {
		return nil, raw, &FieldError{Field: FieldUnitPrice, Raw: raw, Err: err}
	}
	return decimalPtr(v), raw, nil
}

// rateConsumptionRule returns the quantity printed just before the unit price.
func rateConsumptionRule(line string) (*int, *FieldError) {
	m := reRateKWh.FindStringSubmatch(line)
	if m == nil {
		return nil, nil
	}
	v, err := parseGroupedInt(m[1])
	if err != nil {
		return nil, &FieldError{Field: FieldRateKWh, Raw: m[1], Err: err}
	}
	return intPtr(v), nil
}

// taxAmountRule reads the signed amount of the taxes line.
func taxAmountRule(line string) (*decimal.Decimal, *FieldError) {
	m := reTaxAmount.FindStringSubmatch(line)
	if m == nil {
		return nil, nil
	}
	v, err := parseCommaDecimal(m[1])
	if err != nil {
		return nil, &FieldError{Field: FieldTax, Raw: m[1], Err: err}
	}
	return decimalPtr(v), nil
}

// trailingAmountRule reads the amount ending a marker line, optional € included.
func trailingAmountRule(re *regexp.Regexp, field, line string) (*decimal.Decimal, *FieldError) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return nil, nil
	}
	v, err := parseCommaDecimal(m[1])
	if err != nil {
		return nil, &FieldError{Field: field, Raw: m[1], Err: err}
	}
	return decimalPtr(v), nil
}
