package constants

// RateType is a tariff window with its own unit price.
type RateType string

const (
	OffPeak RateType = "Heures creuses"
	Peak    RateType = "Heures pleines"
)

var allRateTypes = []RateType{OffPeak, Peak}

// RateTypes returns the rate types in report order.
func RateTypes() []RateType {
	out := make([]RateType, len(allRateTypes))
	copy(out, allRateTypes)
	return out
}

// Label is the localized "hours type" cell of the rate report.
func (r RateType) Label() string { return string(r) }
