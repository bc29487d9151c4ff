// Package billparse recovers billing figures from the extracted text of a bill.
//
// Every rule is total: a missing marker yields an absent field, a malformed
// value yields an absent field plus a FieldError to the observer. Nothing here
// returns an error to the caller.
package billparse

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/energy-bills/constants"
	"github.com/joseph-ayodele/energy-bills/internal/common"
)

// DateLayout is the day/month/year form used on the bills and in the reports.
const DateLayout = "02/01/2006"

// BillingSummary is the per-document consumption and total block.
type BillingSummary struct {
	Status         constants.ConsumptionStatus
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
	ConsumptionKWh *int
	PeriodDays     *int
	TotalAmount    *decimal.Decimal // negative for a credit in the customer's favor
}

// SummaryRow is a BillingSummary attached to the document it came from.
type SummaryRow struct {
	DocumentName string
	BillingSummary
}

// RatePeriodRow is one tariff window of a document, with the document-wide
// tax and subscription figures duplicated into it.
type RatePeriodRow struct {
	DocumentName    string
	RateType        constants.RateType
	UnitPrice       *decimal.Decimal // currency per kWh
	UnitPriceText   string           // price as printed, e.g. "0,1600"
	ConsumptionKWh  *int
	TaxesLine       string
	TaxAmount       *decimal.Decimal
	AmountExclTax   *decimal.Decimal
	SubscriptionFee *decimal.Decimal
}

// DocumentCharges are the singletons captured while scanning lines.
type DocumentCharges struct {
	TaxesLine       string
	TaxAmount       *decimal.Decimal
	AmountExclTax   *decimal.Decimal
	SubscriptionFee *decimal.Decimal
}

// Field names reported in FieldError.
const (
	FieldPeriod       = "period"
	FieldTotal        = "total"
	FieldTax          = "tax"
	FieldAmountExcl   = "amount_excl_tax"
	FieldSubscription = "subscription"
	FieldUnitPrice    = "unit_price"
	FieldRateKWh      = "rate_consumption"
)

// FieldError is a value that matched its pattern but could not be converted.
type FieldError struct {
	Field string
	Raw   string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Field, e.Raw, e.Err)
}

func (e *FieldError) Unwrap() []error { return []error{common.ErrFieldParse, e.Err} }

// Observer is told about field conversion failures.
type Observer interface {
	FieldParseFailed(document string, err *FieldError)
}
