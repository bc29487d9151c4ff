package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/energy-bills/constants"
	"github.com/joseph-ayodele/energy-bills/internal/billgen"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	out := os.Getenv("BILLGEN_OUT")
	if out == "" {
		out = constants.DefaultFolder
	}
	count := 3
	if v := os.Getenv("BILLGEN_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Error("billgen.invalid_count", "value", v)
			os.Exit(1)
		}
		count = n
	}

	if err := os.MkdirAll(out, 0o755); err != nil {
		logger.Error("billgen.mkdir.failed", "dir", out, "error", err)
		os.Exit(1)
	}

	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		bill := sampleBill(i, start.AddDate(0, i, 0))
		b, err := billgen.Render(bill)
		if err != nil {
			logger.Error("billgen.render.failed", "number", bill.Number, "error", err)
			os.Exit(1)
		}
		path := filepath.Join(out, fmt.Sprintf("facture_%s.pdf", bill.Number))
		if err := os.WriteFile(path, b, 0o644); err != nil {
			logger.Error("billgen.write.failed", "path", path, "error", err)
			os.Exit(1)
		}
		logger.Info("billgen.ok", "path", path, "bytes", len(b))
	}
}

// sampleBill varies consumption by month; every third bill is an estimate.
func sampleBill(i int, periodStart time.Time) billgen.Bill {
	offKWh := 120 + 15*i
	peakKWh := 180 + 20*i
	offPrice := decimal.RequireFromString("0.1615")
	peakPrice := decimal.RequireFromString("0.2068")
	offAmount := offPrice.Mul(decimal.NewFromInt(int64(offKWh))).Round(2)
	peakAmount := peakPrice.Mul(decimal.NewFromInt(int64(peakKWh))).Round(2)
	subscription := decimal.RequireFromString("12.34")
	taxes := decimal.RequireFromString("-3.21")
	excl := offAmount.Add(peakAmount).Add(subscription).Add(taxes)

	status := constants.StatusReal
	if i%3 == 2 {
		status = constants.StatusEstimated
	}
	return billgen.Bill{
		Number:          fmt.Sprintf("%04d%s", i+1, periodStart.Format("0106")),
		Status:          status,
		PeriodStart:     periodStart,
		PeriodEnd:       periodStart.AddDate(0, 1, -1),
		OffPeak:         &billgen.RateLine{IndexDate: periodStart, ConsumptionKWh: offKWh, UnitPrice: offPrice, Amount: offAmount},
		Peak:            &billgen.RateLine{IndexDate: periodStart, ConsumptionKWh: peakKWh, UnitPrice: peakPrice, Amount: peakAmount},
		Taxes:           taxes,
		AmountExclTax:   excl,
		SubscriptionKVA: 6,
		Subscription:    subscription,
		Total:           excl.Mul(decimal.RequireFromString("1.2")).Round(2),
	}
}
