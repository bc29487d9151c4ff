package billparse

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var errEmptyNumber = errors.New("no digits")

// parseGroupedInt parses a quantity whose digit groups may be separated by spaces ("1 234").
func parseGroupedInt(raw string) (int, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, " ", ""))
	if s == "" {
		return 0, errEmptyNumber
	}
	return strconv.Atoi(s)
}

// parseCommaDecimal parses a French-formatted amount: spaces group digits, comma is the decimal separator.
func parseCommaDecimal(raw string) (decimal.Decimal, error) {
	s := strings.Join(strings.Fields(raw), "")
	if s == "" {
		return decimal.Zero, errEmptyNumber
	}
	return decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
}

func intPtr(v int) *int { return &v }

func decimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }
