package constants

import "strings"

// DocumentExt is the extension a bill must carry to be picked up by a batch run.
const DocumentExt = ".pdf"

// ExcludedDocuments holds the default skip list: exact file names that are never processed.
var ExcludedDocuments = []string{
	"facture_26980081S.pdf",
}

// Default report locations, relative to the working directory.
const (
	DefaultSummaryCSV = "consumption_data.csv"
	DefaultRatesCSV   = "hours_data.csv"
	DefaultFolder     = "./bills"
)

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsExcluded reports whether name is in the exact-match skip list.
func IsExcluded(name string, excluded []string) bool {
	for _, e := range excluded {
		if name == e {
			return true
		}
	}
	return false
}
