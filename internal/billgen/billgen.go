// Package billgen renders synthetic electricity bills in the layout the batch
// reads, for fixtures and manual end-to-end runs.
package billgen

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/energy-bills/constants"
)

// RateLine is one detail line (off-peak or peak).
type RateLine struct {
	IndexDate      time.Time
	ConsumptionKWh int
	UnitPrice      decimal.Decimal // e.g. 0.1615
	Amount         decimal.Decimal
}

type Bill struct {
	Number          string
	Status          constants.ConsumptionStatus
	PeriodStart     time.Time
	PeriodEnd       time.Time
	OffPeak         *RateLine
	Peak            *RateLine
	Taxes           decimal.Decimal
	AmountExclTax   decimal.Decimal
	SubscriptionKVA int
	Subscription    decimal.Decimal
	Total           decimal.Decimal // negative for a credit
}

// ConsumptionKWh is the sum of the detail lines.
func (b Bill) ConsumptionKWh() int {
	n := 0
	for _, l := range []*RateLine{b.OffPeak, b.Peak} {
		if l != nil {
			n += l.ConsumptionKWh
		}
	}
	return n
}

// Lines returns the text lines of the bill body in drawing order.
func Lines(b Bill) []string {
	label := "réelles"
	if b.Status == constants.StatusEstimated {
		label = "estimées"
	}
	lines := []string{
		"Facture d'électricité n° " + b.Number,
		fmt.Sprintf("Consommations %s du %s au %s : %s kWh",
			label, b.PeriodStart.Format("02/01/2006"), b.PeriodEnd.Format("02/01/2006"), groupThousands(b.ConsumptionKWh())),
	}
	if b.OffPeak != nil {
		lines = append(lines, rateLine(constants.OffPeak.Label(), *b.OffPeak))
	}
	if b.Peak != nil {
		lines = append(lines, rateLine(constants.Peak.Label(), *b.Peak))
	}
	lines = append(lines,
		"TAXES ET CONTRIBUTIONS "+euros(b.Taxes),
		"MONTANT HORS TVA "+euros(b.AmountExclTax),
		fmt.Sprintf("ABONNEMENT %d kVA %s", b.SubscriptionKVA, euros(b.Subscription)),
	)
	if b.Total.IsNegative() {
		lines = append(lines, "Total TTC en votre faveur : "+euros(b.Total.Neg()))
	} else {
		lines = append(lines, "Total à payer TTC : "+euros(b.Total))
	}
	return lines
}

func rateLine(label string, l RateLine) string {
	return fmt.Sprintf("%s %s %s %s %s",
		label,
		l.IndexDate.Format("02/01/2006"),
		groupThousands(l.ConsumptionKWh),
		strings.Replace(l.UnitPrice.StringFixed(4), ".", ",", 1),
		euros(l.Amount),
	)
}

// Render draws the bill on one A4 page.
func Render(b Bill) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	lines := Lines(b)
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, tr(lines[0]))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	for _, l := range lines[1:] {
		pdf.CellFormat(0, 6, tr(l), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render bill %s: %w", b.Number, err)
	}
	return buf.Bytes(), nil
}

// euros formats an amount the French way: "1 234,56 €".
func euros(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")
	n, _ := strconv.Atoi(whole)
	out := groupThousands(n) + "," + frac + " €"
	if neg {
		out = "-" + out
	}
	return out
}

func groupThousands(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
