package report

import (
	"github.com/joseph-ayodele/energy-bills/internal/billparse"
)

// Report holds the two ordered outputs of one run. It is owned by the caller.
type Report struct {
	Summaries []billparse.SummaryRow
	Rates     []billparse.RatePeriodRow
	Stats     Stats
}

// Stats summarizes a run.
type Stats struct {
	Scanned   uint32 // folder entries seen
	Processed uint32 // documents selected, read or not
	Excluded  uint32
	Failed    uint32 // documents whose text could not be extracted
	RateRows  uint32
	Documents []DocumentResult
}

// DocumentResult is the per-document outcome, for logging and the archive.
type DocumentResult struct {
	Name    string
	Path    string
	HashHex string
	Method  string
	Err     string
}
