package constants

import "strings"

// ConsumptionStatus tells whether the declared consumption comes from a meter read or an estimate.
type ConsumptionStatus string

// Stable values (written as-is into the summary report).
const (
	StatusUnknown   ConsumptionStatus = ""           // no consumption declaration found
	StatusReal      ConsumptionStatus = "real"       // "Consommations réelles"
	StatusEstimated ConsumptionStatus = "estimation" // "Consommations estimées"
)

// StatusFromLabel maps the status word of a consumption declaration.
func StatusFromLabel(label string) ConsumptionStatus {
	if strings.ToLower(label) == "réelles" {
		return StatusReal
	}
	return StatusEstimated
}
