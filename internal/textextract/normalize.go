package textextract

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reBoxNoise   = regexp.MustCompile(`(?m)^\s*[_\-]{3,}\s*$`)
)

// no-break and narrow no-break spaces are common digit-group separators in French amounts.
var spaceLike = strings.NewReplacer("\u00a0", " ", "\u202f", " ", "\u2007", " ")

// Normalize collapses noisy whitespace and recomposes accents (NFC) so that
// "réelles" matches whether the PDF stored it precomposed or decomposed.
// Line breaks are kept: the rate-period extractor is line oriented.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = norm.NFC.String(s)
	s = reCRLF.ReplaceAllString(s, "\n")
	s = spaceLike.Replace(s)
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.Join(lines, "\n")
}
